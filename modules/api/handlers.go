package api

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/gofiber/fiber/v2"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/modules/activity"
	"github.com/Tsiatosika/Todo-project/modules/task"
)

const deletedMessage = "Task deleted successfully"

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/", m.index)
	app.Get("/health", m.healthHandler)
	if m.activityFeed != nil {
		app.Get("/activity", m.listActivity)
	}

	tasks := app.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
}

// index handles GET /.
func (m *APIModule) index(c *fiber.Ctx) error {
	return c.JSON(IndexResponse{
		Message: "Task API is running",
		Endpoints: map[string]string{
			"GET /tasks":        "list every task, newest first",
			"POST /tasks":       "create a task",
			"PUT /tasks/:id":    "update a task",
			"DELETE /tasks/:id": "delete a task",
			"GET /activity":     "recent task activity, newest first",
			"GET /health":       "health check",
		},
	})
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	details := map[string]any{"port": m.port}
	healthy := true

	for _, hc := range m.healthChecks {
		status := hc.check(c.UserContext())
		details[hc.name] = status.Message
		healthy = healthy && status.Healthy
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: details,
		})
	}
	return c.JSON(HealthResponse{Status: "healthy", Details: details})
}

// listActivity handles GET /activity. ?limit=N keeps the N newest entries.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return m.writeError(c, domain.Validation("limit must not be negative"))
	}

	entries := m.activityFeed()
	slices.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return c.JSON(ActivityResponse{Entries: entries, Total: len(entries)})
}

// listTasks handles GET /tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	tasks, err := m.taskPort.ListTasks(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(tasks)
}

// createTask handles POST /tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := decodeBody(c, &req); err != nil {
		return m.writeError(c, err)
	}

	created, err := m.taskPort.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return m.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(CreateTaskResponse{
		InsertedID: created.ID,
		Task:       created,
	})
}

// updateTask handles PUT /tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := decodeBody(c, &req); err != nil {
		return m.writeError(c, err)
	}

	updated, err := m.taskPort.UpdateTask(c.UserContext(), c.Params("id"), domain.Fields{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(updated)
}

// deleteTask handles DELETE /tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	removed, err := m.taskPort.DeleteTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(DeleteTaskResponse{
		Message:     deletedMessage,
		DeletedTask: removed,
	})
}

// errInvalidBody marks a body that is not valid JSON.
var errInvalidBody = errors.New("invalid request body")

// decodeBody unmarshals a JSON body. An empty body leaves dst untouched.
func decodeBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return errInvalidBody
	}
	return nil
}

// writeError maps a domain error to its HTTP status and error body.
func (m *APIModule) writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		m.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, domain.CodeValidation
	case errors.Is(err, domain.ErrInvalidID):
		return fiber.StatusBadRequest, domain.CodeInvalidID
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, domain.CodeNotFound
	default:
		return fiber.StatusInternalServerError, domain.CodeStore
	}
}
