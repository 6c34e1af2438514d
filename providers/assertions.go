package providers

import "github.com/gofiber/fiber/v3"

// Provider is the lifecycle every provider implements.
type Provider interface {
	ID() string
	Name() string
	Version() string
	IsActive() bool
	Activate() error
	Deactivate() error
}

// HasRoutes is implemented by providers that contribute HTTP routes.
type HasRoutes interface {
	RegisterRoutes(group fiber.Router)
}

// Compile-time interface assertions.
var (
	_ Provider  = (*StatusProvider)(nil)
	_ HasRoutes = (*StatusProvider)(nil)
)
