package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/planweave/planweave/internal/agent"
	v1 "github.com/planweave/planweave/internal/api/v1"
	"github.com/planweave/planweave/internal/api/ws"
	"github.com/planweave/planweave/internal/reflection"
	"github.com/planweave/planweave/internal/store/postgres"
)

func registerAPIRoutes(api huma.API, store *postgres.Store, planAgent *agent.Agent, engine *reflection.Engine) {
	v1.RegisterGoalRoutes(api, store)
	v1.RegisterTaskRoutes(api, store)
	v1.RegisterExecutionLogRoutes(api, store)
	v1.RegisterAgentRoutes(api, planAgent)
	v1.RegisterReflectionRoutes(api, store, engine)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/sessions/{sessionID}", hub.ServeSession)
	r.Get("/user", hub.ServeUser)
}
