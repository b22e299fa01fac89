// Package http wires the HTTP interface: repositories, use cases, handlers,
// middleware, and the route table.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appauthz "fiscus/internal/application/authz"
	appbilling "fiscus/internal/application/billing"
	"fiscus/internal/application/provisioning"
	"fiscus/internal/domain/billing"
	"fiscus/internal/infrastructure/cache"
	"fiscus/internal/infrastructure/config"
	"fiscus/internal/infrastructure/email"
	"fiscus/internal/infrastructure/repository"
	"fiscus/internal/interfaces/http/handlers"
	"fiscus/internal/interfaces/http/middleware"
	"fiscus/internal/shared/logger"
	"fiscus/internal/shared/tenantlock"
)

const workflowMaxAge = 2 * time.Hour

// Router holds the wired HTTP stack and the background pruner for abandoned
// workflows.
type Router struct {
	engine   *gin.Engine
	server   *http.Server
	registry *provisioning.Registry
	log      logger.Interface

	pruneStop chan struct{}
}

// NewRouter wires all dependencies and builds the route table.
func NewRouter(db *gorm.DB, redisClient *redis.Client, planCatalog *billing.PlanCatalog, cfg *config.Config, log logger.Interface) *Router {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	// Repositories
	roleRepo := repository.NewRoleRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	usageRepo := repository.NewFeatureUsageRepository(db)

	// Entitlement service with Redis read-through cache
	cacheTTL := time.Duration(cfg.Billing.EntitlementCacheTTLMinutes) * time.Minute
	entitlementCache := cache.NewRedisEntitlementCache(redisClient, cacheTTL, log)
	entitlements := appbilling.NewEntitlementService(subscriptionRepo, usageRepo, planCatalog, entitlementCache, log)

	locks := tenantlock.NewRegistry()

	// Use cases and services
	createRole := appauthz.NewCreateRoleUseCase(roleRepo, entitlements, locks, log)
	updateRole := appauthz.NewUpdateRoleUseCase(roleRepo, locks, log)
	deleteRole := appauthz.NewDeleteRoleUseCase(roleRepo, entitlements, locks, log)
	listRoles := appauthz.NewListRolesUseCase(roleRepo, log)
	authzService := appauthz.NewService(roleRepo, memberRepo, entitlements, log)

	var notifier provisioning.InviteNotifier
	if cfg.Provisioning.SendInviteEmail {
		notifier = email.NewSMTPEmailService(email.SMTPConfig{
			Host:        cfg.Email.Host,
			Port:        cfg.Email.Port,
			Username:    cfg.Email.Username,
			Password:    cfg.Email.Password,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			BaseURL:     cfg.Email.BaseURL,
		})
	}
	commitTimeout := time.Duration(cfg.Provisioning.CommitTimeoutSeconds) * time.Second
	provisioningService := provisioning.NewService(roleRepo, memberRepo, entitlements, locks, notifier, commitTimeout, log)
	registry := provisioning.NewRegistry()

	// Handlers
	roleHandler := handlers.NewRoleHandler(createRole, updateRole, deleteRole, listRoles, log)
	permissionHandler := handlers.NewPermissionHandler(authzService, log)
	provisioningHandler := handlers.NewProvisioningHandler(provisioningService, registry, log)

	permissionMiddleware := middleware.NewPermissionMiddleware(authzService, log)

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger(log))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.Use(middleware.TenantContext())
	{
		roles := api.Group("/roles")
		{
			roles.GET("", permissionMiddleware.RequirePermission("roles", "view"), roleHandler.List)
			roles.POST("",
				permissionMiddleware.RequirePermission("roles", "create"),
				permissionMiddleware.RequireQuota(string(billing.QuotaCustomRoles)),
				roleHandler.Create)
			roles.PATCH("/:id", permissionMiddleware.RequirePermission("roles", "edit"), roleHandler.Update)
			roles.DELETE("/:id", permissionMiddleware.RequirePermission("roles", "delete"), roleHandler.Delete)
		}

		members := api.Group("/members")
		{
			members.GET("", permissionMiddleware.RequirePermission("members", "view"), permissionHandler.ListMembers)
			members.GET("/:id/permissions", permissionMiddleware.RequirePermission("members", "view"), permissionHandler.MemberSummary)
			members.POST("/:id/edit-workflow", permissionMiddleware.RequirePermission("members", "edit"), provisioningHandler.StartEdit)
		}

		permissions := api.Group("/permissions")
		{
			permissions.GET("/check", permissionHandler.Check)
			permissions.GET("/features/:flag", permissionHandler.CheckFeature)
		}

		workflows := api.Group("/provisioning")
		{
			overrideGate := permissionMiddleware.RequireFeature(string(billing.FeaturePermissionOverrides))

			workflows.POST("/invites",
				permissionMiddleware.RequirePermission("members", "create"),
				permissionMiddleware.RequireQuota(string(billing.QuotaMembers)),
				provisioningHandler.StartInvite)
			workflows.GET("/:workflow_id", provisioningHandler.Get)
			workflows.PUT("/:workflow_id/email", provisioningHandler.SetEmail)
			workflows.POST("/:workflow_id/roles", provisioningHandler.ToggleRole)
			workflows.POST("/:workflow_id/overrides", overrideGate, provisioningHandler.ToggleOverride)
			workflows.POST("/:workflow_id/permissions", overrideGate, provisioningHandler.TogglePermission)
			workflows.POST("/:workflow_id/next", provisioningHandler.Next)
			workflows.POST("/:workflow_id/cancel", provisioningHandler.Cancel)
			workflows.POST("/:workflow_id/confirm", provisioningHandler.Confirm)
		}
	}

	return &Router{
		engine:   engine,
		registry: registry,
		log:      log,
		server: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: engine,
		},
		pruneStop: make(chan struct{}),
	}
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server and the workflow pruner. It blocks until the
// server stops.
func (r *Router) Run() error {
	go r.pruneLoop()
	r.log.Infow("HTTP server starting", "addr", r.server.Addr)
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (r *Router) Shutdown(ctx context.Context) error {
	close(r.pruneStop)
	return r.server.Shutdown(ctx)
}

func (r *Router) pruneLoop() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if removed := r.registry.Prune(workflowMaxAge); removed > 0 {
				r.log.Infow("pruned abandoned workflows", "count", removed)
			}
		case <-r.pruneStop:
			return
		}
	}
}
