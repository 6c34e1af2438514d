package providers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/color-craze/client/src/service"
	"github.com/color-craze/client/src/transport"
)

type moveRequest struct {
	Direction string `json:"direction"`
}

type inputRequest struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Jump  bool `json:"jump"`
}

func (p *StatusProvider) handleMove(c fiber.Ctx) error {
	s, ok := p.session(c)
	if !ok {
		return notFound(c)
	}
	var req moveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if err := s.Move(req.Direction); err != nil {
		return p.publishError(c, err)
	}
	return c.JSON(fiber.Map{"published": true, "direction": req.Direction})
}

func (p *StatusProvider) handleInput(c fiber.Ctx) error {
	s, ok := p.session(c)
	if !ok {
		return notFound(c)
	}
	var req inputRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if err := s.SetInput(req.Left, req.Right, req.Jump); err != nil {
		return p.publishError(c, err)
	}
	return c.JSON(fiber.Map{"published": true})
}

// publishError maps session errors to responses. Input is never queued, so a
// disconnected room answers 503 and the caller decides whether to resend.
func (p *StatusProvider) publishError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidDirection):
		return badRequest(c, err.Error())
	case errors.Is(err, transport.ErrNotConnected), errors.Is(err, service.ErrNotMounted):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "not_connected",
			"message": err.Error(),
		})
	default:
		p.logger.Error().Err(err).Msg("publish failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "publish_failed",
			"message": err.Error(),
		})
	}
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": msg,
	})
}
