package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// flushTimeout bounds how long Flush waits for the player to exit.
const flushTimeout = 10 * time.Second

// ExecSink streams PCM16 into an external player's stdin.
// The player is started on the first Write and finishes on Flush.
type ExecSink struct {
	cfg    Config
	logger *slog.Logger
	argv   []string

	mu      sync.Mutex
	running bool
	closed  bool
	cmd     *exec.Cmd
	stdin   io.WriteCloser

	chunksWritten  atomic.Int64
	samplesWritten atomic.Int64
	flushes        atomic.Int64
}

// newExecSink creates a player-backed sink.
func newExecSink(cfg Config, logger *slog.Logger) (*ExecSink, error) {
	argv := cfg.Command
	if len(argv) == 0 {
		argv = defaultPlayerCommand(cfg, runtime.GOOS)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("audio player %q: %w", argv[0], err)
	}

	logger.Info("exec sink created",
		"player", argv[0],
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
	)

	return &ExecSink{cfg: cfg, logger: logger, argv: argv}, nil
}

// defaultPlayerCommand builds the raw-PCM player invocation for goos.
func defaultPlayerCommand(cfg Config, goos string) []string {
	rate := strconv.Itoa(cfg.SampleRate)
	channels := strconv.Itoa(cfg.Channels)

	if goos == "linux" {
		argv := []string{"aplay", "-q", "-t", "raw", "-f", "S16_LE", "-r", rate, "-c", channels}
		if cfg.Device != "" {
			argv = append(argv, "-D", cfg.Device)
		}
		return append(argv, "-")
	}
	// sox
	return []string{"play", "-q", "-t", "raw", "-b", "16", "-e", "signed-integer", "-L", "-r", rate, "-c", channels, "-"}
}

// playerAvailable reports whether the default player for this platform is
// installed.
func playerAvailable(cfg Config) bool {
	argv := defaultPlayerCommand(cfg, runtime.GOOS)
	_, err := exec.LookPath(argv[0])
	return err == nil
}

// Start begins accepting audio.
func (s *ExecSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	s.running = true
	return nil
}

// startPlayerLocked launches the player (must hold mu).
func (s *ExecSink) startPlayerLocked() error {
	cmd := exec.Command(s.argv[0], s.argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.argv[0], err)
	}
	s.cmd = cmd
	s.stdin = stdin
	return nil
}

// Write sends an audio chunk to the player, starting it if needed.
func (s *ExecSink) Write(ctx context.Context, chunk AudioChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.running {
		return io.ErrClosedPipe
	}
	if s.cmd == nil {
		if err := s.startPlayerLocked(); err != nil {
			return err
		}
	}

	if _, err := s.stdin.Write(chunk.Bytes()); err != nil {
		// Player died; drop it so the next Write restarts it.
		s.killLocked()
		return fmt.Errorf("write to player: %w", err)
	}

	s.chunksWritten.Add(1)
	s.samplesWritten.Add(int64(len(chunk.Samples)))
	return nil
}

// Flush closes the player's input and waits for playback to finish.
func (s *ExecSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return nil
	}

	s.stdin.Close()
	cmd := s.cmd

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		cmd.Process.Kill()
		<-done
		err = ctx.Err()
	case <-time.After(flushTimeout):
		cmd.Process.Kill()
		<-done
		err = fmt.Errorf("player did not finish within %v", flushTimeout)
	}

	s.cmd = nil
	s.stdin = nil
	s.flushes.Add(1)
	return err
}

// killLocked stops the player without waiting for buffered audio.
func (s *ExecSink) killLocked() {
	if s.stdin != nil {
		s.stdin.Close()
		s.stdin = nil
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	s.cmd = nil
}

// Stop halts playback immediately.
func (s *ExecSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.killLocked()
	s.running = false
	return nil
}

// Config returns the audio configuration.
func (s *ExecSink) Config() Config {
	return s.cfg
}

// Name returns "exec".
func (s *ExecSink) Name() string {
	return "exec"
}

// Close releases resources.
func (s *ExecSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.Stop()
}

// Stats returns sink statistics.
func (s *ExecSink) Stats() SinkStats {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	return SinkStats{
		ChunksWritten:  s.chunksWritten.Load(),
		SamplesWritten: s.samplesWritten.Load(),
		Flushes:        s.flushes.Load(),
		Running:        running,
		Backend:        "exec",
	}
}

var _ SinkWithStats = (*ExecSink)(nil)
