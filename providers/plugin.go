package providers

import (
	"errors"

	"github.com/color-craze/client/src/hub"
	"github.com/rs/zerolog"
)

// StatusProvider exposes the mounted rooms of a hub over local HTTP routes.
type StatusProvider struct {
	active bool
	hub    *hub.Hub
	logger zerolog.Logger
}

// NewStatusProvider creates a provider serving h.
func NewStatusProvider(h *hub.Hub, logger zerolog.Logger) *StatusProvider {
	return &StatusProvider{
		hub:    h,
		logger: logger.With().Str("provider", "status").Logger(),
	}
}

func (p *StatusProvider) ID() string      { return "colorcraze/status" }
func (p *StatusProvider) Name() string    { return "Room status" }
func (p *StatusProvider) Version() string { return "0.1.0" }
func (p *StatusProvider) IsActive() bool  { return p.active }

// Activate marks the provider ready to serve.
func (p *StatusProvider) Activate() error {
	if p.hub == nil {
		return errors.New("status provider: no hub")
	}
	p.active = true
	p.logger.Info().Str("provider", p.ID()).Msg("status provider activated")
	return nil
}

// Deactivate unmounts every room of the hub.
func (p *StatusProvider) Deactivate() error {
	if p.hub != nil {
		p.hub.Close()
	}
	p.active = false
	return nil
}
