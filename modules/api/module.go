package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Tsiatosika/Todo-project/modules/activity"
	"github.com/Tsiatosika/Todo-project/modules/task"
)

// HealthFunc reports the health of a dependency for GET /health.
type HealthFunc func(ctx context.Context) mono.HealthStatus

// Option customizes the API module.
type Option func(*APIModule)

// WithTaskPort sets the task port directly instead of resolving it from the task module.
func WithTaskPort(port task.TaskPort) Option {
	return func(m *APIModule) {
		m.taskPort = port
	}
}

// WithHealthCheck adds a dependency check to GET /health.
func WithHealthCheck(name string, check HealthFunc) Option {
	return func(m *APIModule) {
		m.healthChecks = append(m.healthChecks, namedCheck{name: name, check: check})
	}
}

// ActivityFunc returns the recorded task activity, oldest first.
type ActivityFunc func() []activity.Entry

// WithActivityFeed serves feed at GET /activity.
func WithActivityFeed(feed ActivityFunc) Option {
	return func(m *APIModule) {
		m.activityFeed = feed
	}
}

// WithAccessLog toggles the HTTP access log. It is on by default.
func WithAccessLog(enabled bool) Option {
	return func(m *APIModule) {
		m.accessLog = enabled
	}
}

type namedCheck struct {
	name  string
	check HealthFunc
}

// APIModule is the driving adapter that exposes REST endpoints.
// It calls into the core domain (task module) via the TaskPort interface.
type APIModule struct {
	port         int
	app          *fiber.App
	taskPort     task.TaskPort
	healthChecks []namedCheck
	activityFeed ActivityFunc
	accessLog    bool
	logger       types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*APIModule)(nil)
	_ mono.DependentModule       = (*APIModule)(nil)
	_ mono.HealthCheckableModule = (*APIModule)(nil)
)

// NewModule creates a new APIModule listening on port.
func NewModule(port int, logger types.Logger, opts ...Option) *APIModule {
	m := &APIModule{
		port:      port,
		accessLog: true,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
// The framework will call SetDependencyServiceContainer for each dependency.
func (m *APIModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		if m.taskPort == nil {
			m.taskPort = task.NewTaskAdapter(container)
		}
	}
}

// Start initializes the Fiber HTTP server.
// Returns an error if required dependencies are not set.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskPort == nil {
		return fmt.Errorf("task port dependency not set")
	}

	m.app = m.NewApp()

	// Server availability is verified via Health() method.
	go func() {
		addr := fmt.Sprintf(":%d", m.port)
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// NewApp builds the Fiber app with middleware and routes.
func (m *APIModule) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task API",
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	if m.accessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New())

	m.setupRoutes(app)
	return app
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	errCode := "server_error"
	if code == fiber.StatusNotFound {
		errCode = "route_not_found"
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
