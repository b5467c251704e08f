package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/drowsy/pkg/hub"
)

// handleHealth reports liveness and connected dashboard clients
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"clients": fiber.Map{
			"status": s.statusHub.ClientCount(),
			"alerts": s.alertHub.ClientCount(),
			"camera": s.cameraHub.ClientCount(),
		},
		"frames_sent": s.FramesSent(),
	})
}

// handleStatus returns the latest loop status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st, ok := s.latestStatus()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no frames processed yet",
		})
	}
	return c.JSON(st)
}

// handleAlerts returns recent alerts, oldest first. ?limit=n keeps the last n.
func (s *Server) handleAlerts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not be negative",
		})
	}
	return c.JSON(s.recentAlerts(limit))
}

// handleStop asks the loop to exit as if Enter had been pressed
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.stopRequested.Store(true)
	s.logger.Info("stop requested from dashboard", "ip", c.IP())
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"stopping": true})
}

// handleStatusWS sends the current status, then live updates
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if st, ok := s.latestStatus(); ok {
		if err := c.WriteJSON(st); err != nil {
			return
		}
	}
	hub.NewClient(s.statusHub, c).Run()
}

// handleAlertsWS replays recent alerts, then streams new ones
func (s *Server) handleAlertsWS(c *websocket.Conn) {
	for _, ev := range s.recentAlerts(0) {
		if err := c.WriteJSON(ev); err != nil {
			return
		}
	}
	hub.NewClient(s.alertHub, c).Run()
}

// handleCameraWS streams JPEG frames as binary messages
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.cameraHub, c).Run()
}
