// Package server assembles the public and admin Gin routers.
package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/viguzmanp/boda-consu-seba/internal/admin"
	"github.com/viguzmanp/boda-consu-seba/internal/api"
	"github.com/viguzmanp/boda-consu-seba/internal/config"
	"github.com/viguzmanp/boda-consu-seba/internal/middleware"
	"github.com/viguzmanp/boda-consu-seba/internal/store"
)

// NewPublicRouter serves guest traffic: rate limited and validated against
// the public OpenAPI document. The limiter's cleanup stops when ctx is done.
func NewPublicRouter(ctx context.Context, cfg *config.Config, invitations store.InvitationStore, views store.ViewStore) (*gin.Engine, error) {
	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := middleware.NewOpenAPIValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("public validator: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger("public"))
	r.Use(middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	r.Use(validator)

	api.RegisterHandlers(r, api.NewHandler(invitations, views))
	return r, nil
}

// NewAdminRouter serves the invitation generator.
func NewAdminRouter(cfg *config.Config, invitations store.InvitationStore, views store.ViewStore) (*gin.Engine, error) {
	doc, err := admin.GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := middleware.NewOpenAPIValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("admin validator: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger("admin"))
	r.Use(validator)

	admin.RegisterHandlers(r, admin.NewHandler(invitations, views, cfg.PublicBaseURL))
	return r, nil
}
