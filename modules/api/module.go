package api

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// HealthChecker is a module whose health is reported by the health endpoint.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// Config holds the HTTP listener settings.
type Config struct {
	Addr        string
	CORSOrigins []string
}

// APIModule is the HTTP API module.
type APIModule struct {
	cfg      Config
	verifier IdentityVerifier
	checks   []HealthChecker

	app      *fiber.App
	accounts auth.AccountPort
	tasks    task.TaskPort
	activity activity.ActivityPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. Tokens are verified in-process by
// verifier; checks are reported by the health endpoint.
func NewModule(cfg Config, verifier IdentityVerifier, checks ...HealthChecker) *APIModule {
	return &APIModule{
		cfg:      cfg,
		verifier: verifier,
		checks:   checks,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.accounts = auth.NewAccountAdapter(container)
	case "task":
		m.tasks = task.NewTaskAdapter(container)
	case "activity":
		m.activity = activity.NewActivityAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.accounts == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.tasks == nil {
		return fmt.Errorf("task dependency not set")
	}
	if m.activity == nil {
		return fmt.Errorf("activity dependency not set")
	}
	if m.verifier == nil {
		return fmt.Errorf("identity verifier not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", m.cfg.Addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Addr,
		},
	}
}

func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(m.cfg.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	handlers := NewHandlers(m.accounts, m.tasks, m.activity)

	app.Get("/", m.health)
	app.Get("/health", m.health)

	requireAuth := AuthMiddleware(m.verifier)

	authRoutes := app.Group("/api/auth")
	authRoutes.Post("/signup", handlers.Signup)
	authRoutes.Post("/signin", handlers.Signin)
	authRoutes.Get("/me", requireAuth, handlers.Me)

	taskRoutes := app.Group("/api/tasks", requireAuth)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Patch("/:id/complete", handlers.CompleteTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)

	app.Get("/api/activity", requireAuth, handlers.Activity)
}

// health reports every registered module. Any unhealthy module turns the
// response into a 503.
func (m *APIModule) health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "healthy",
		Message: "Task tracker API is running",
		Modules: make(map[string]ModuleHealth, len(m.checks)),
	}

	for _, check := range m.checks {
		status := check.Health(c.UserContext())
		resp.Modules[check.Name()] = ModuleHealth{
			Healthy: status.Healthy,
			Message: status.Message,
			Details: status.Details,
		}
		if !status.Healthy {
			resp.Status = "degraded"
		}
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

func corsOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
