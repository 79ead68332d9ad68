package http

import (
	"github.com/nats-io/nats.go"

	"github.com/safeyatra/geomark/internal/adapters/postgres"
	"github.com/safeyatra/geomark/internal/adapters/valkey"
	"github.com/safeyatra/geomark/internal/core/ports"
	"github.com/safeyatra/geomark/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Fences   *usecases.FenceService
	Admin    *usecases.AdminService
	Identity ports.IdentityResolver
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
