package audioio

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// BellSink rings the terminal bell once per flushed tone.
// Samples are counted but never played.
type BellSink struct {
	cfg    Config
	logger *slog.Logger
	out    io.Writer

	mu      sync.Mutex
	running bool
	closed  bool
	pending bool

	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
	flushes        atomic.Int64
}

// NewBellSink creates a bell sink writing to out (stdout when nil).
func NewBellSink(cfg Config, out io.Writer, logger *slog.Logger) *BellSink {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &BellSink{cfg: cfg, out: out, logger: logger}
}

// Start begins accepting audio.
func (b *BellSink) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return io.ErrClosedPipe
	}
	b.running = true
	return nil
}

// Stop halts audio acceptance.
func (b *BellSink) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.running = false
	return nil
}

// Write records that a tone is pending.
func (b *BellSink) Write(ctx context.Context, chunk AudioChunk) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || !b.running {
		return io.ErrClosedPipe
	}
	b.pending = true
	b.chunksWritten.Add(1)
	b.samplesWritten.Add(int64(len(chunk.Samples)))
	return nil
}

// Flush rings the bell if anything was written since the last flush.
func (b *BellSink) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pending {
		return nil
	}
	b.pending = false
	b.flushes.Add(1)

	_, err := b.out.Write([]byte{'\a'})
	return err
}

// Config returns the audio configuration.
func (b *BellSink) Config() Config {
	return b.cfg
}

// Name returns "bell".
func (b *BellSink) Name() string {
	return "bell"
}

// Close releases resources.
func (b *BellSink) Close() error {
	b.mu.Lock()
	b.closed = true
	b.running = false
	b.mu.Unlock()
	return nil
}

// Stats returns sink statistics.
func (b *BellSink) Stats() SinkStats {
	b.mu.Lock()
	running := b.running
	b.mu.Unlock()

	return SinkStats{
		ChunksWritten:  b.chunksWritten.Load(),
		SamplesWritten: b.samplesWritten.Load(),
		Flushes:        b.flushes.Load(),
		Running:        running,
		Backend:        "bell",
	}
}

var _ SinkWithStats = (*BellSink)(nil)
