package providers

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/color-craze/client/src/hub"
)

// RegisterRoutes registers the read-only status routes and the input routes.
func (p *StatusProvider) RegisterRoutes(group fiber.Router) {
	group.Get("/status", p.handleStatus)
	group.Get("/status/:code", p.handleRoom)
	group.Get("/status/:code/frame", p.handleFrame)
	group.Post("/status/:code/move", p.handleMove)
	group.Post("/status/:code/input", p.handleInput)
}

type roomSummary struct {
	Code         string `json:"code"`
	Status       string `json:"status"`
	Connection   string `json:"connection"`
	Reconnecting bool   `json:"reconnecting"`
	Players      int    `json:"players"`
	JoinSeconds  int    `json:"joinSeconds"`
	MatchSeconds int    `json:"matchSeconds"`
}

func (p *StatusProvider) handleStatus(c fiber.Ctx) error {
	snaps := p.hub.Snapshots()
	rooms := make([]roomSummary, 0, len(snaps))
	for _, s := range snaps {
		rooms = append(rooms, roomSummary{
			Code:         s.Code,
			Status:       string(s.View.Status),
			Connection:   s.Connection,
			Reconnecting: s.Reconnecting,
			Players:      len(s.View.Players),
			JoinSeconds:  s.Clocks.Join,
			MatchSeconds: s.Clocks.Match,
		})
	}
	return c.JSON(fiber.Map{
		"active": p.active,
		"count":  len(rooms),
		"rooms":  rooms,
	})
}

func (p *StatusProvider) handleRoom(c fiber.Ctx) error {
	s, ok := p.session(c)
	if !ok {
		return notFound(c)
	}
	return c.JSON(s.Snapshot())
}

func (p *StatusProvider) handleFrame(c fiber.Ctx) error {
	s, ok := p.session(c)
	if !ok {
		return notFound(c)
	}
	return c.JSON(s.Snapshot().Frame)
}

func (p *StatusProvider) session(c fiber.Ctx) (hub.Session, bool) {
	return p.hub.Get(strings.ToUpper(c.Params("code")))
}

func notFound(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   "not_found",
		"message": "room not mounted",
	})
}
