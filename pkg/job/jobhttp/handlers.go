// Package jobhttp exposes the job service over HTTP.
package jobhttp

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/trainforge/pkg/iam/auth"
	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/job/jobsrv"
)

// Handlers wires the job service to fiber routes. Every route is behind the
// auth middleware; the authenticated user scopes all reads and writes.
type Handlers struct {
	svc *jobsrv.Service
}

// NewHandlers creates the handlers.
func NewHandlers(svc *jobsrv.Service) *Handlers {
	return &Handlers{svc: svc}
}

// RegisterRoutes mounts the job API under /api/v1/jobs.
func (h *Handlers) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	jobs := app.Group("/api/v1/jobs", authMiddleware)

	jobs.Post("/", h.submit)
	jobs.Get("/", h.list)
	jobs.Get("/message/:message_id", h.getByMessageID)
	jobs.Get("/:id", h.get)
	jobs.Get("/:id/error-log", h.errorLog)
	jobs.Get("/:id/retries", h.listRetries)
	jobs.Post("/:id/retry", h.retry)
}

type submitRequest struct {
	TargetName      string                 `json:"target_name"`
	ResourceLocator string                 `json:"resource_locator"`
	Parameters      map[string]interface{} `json:"parameters"`
}

func (h *Handlers) submit(c *fiber.Ctx) error {
	ac, err := auth.FromFiber(c)
	if err != nil {
		return err
	}

	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return job.ErrValidation("invalid request body").WithDetail("error", err.Error())
	}

	j, err := h.svc.Submit(c.Context(), ac.UserID, job.NewSpec{
		TargetName:      req.TargetName,
		ResourceLocator: req.ResourceLocator,
		Parameters:      req.Parameters,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(j)
}

func (h *Handlers) list(c *fiber.Ctx) error {
	ac, err := auth.FromFiber(c)
	if err != nil {
		return err
	}

	jobs, err := h.svc.List(c.Context(), ac.UserID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (h *Handlers) get(c *fiber.Ctx) error {
	ac, err := auth.FromFiber(c)
	if err != nil {
		return err
	}

	j, err := h.svc.Get(c.Context(), c.Params("id"), ac.UserID)
	if err != nil {
		return err
	}
	return c.JSON(j)
}

func (h *Handlers) getByMessageID(c *fiber.Ctx) error {
	if _, err := auth.FromFiber(c); err != nil {
		return err
	}

	j, err := h.svc.GetByMessageID(c.Context(), c.Params("message_id"))
	if err != nil {
		return err
	}
	return c.JSON(j)
}

func (h *Handlers) errorLog(c *fiber.Ctx) error {
	ac, err := auth.FromFiber(c)
	if err != nil {
		return err
	}

	j, err := h.svc.ErrorLog(c.Context(), c.Params("id"), ac.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"job_id":    j.ID,
		"error_log": j.ErrorLog,
		"failed_at": j.FailedAt,
	})
}

func (h *Handlers) listRetries(c *fiber.Ctx) error {
	ac, err := auth.FromFiber(c)
	if err != nil {
		return err
	}

	retries, err := h.svc.ListRetries(c.Context(), c.Params("id"), ac.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"job_id":  c.Params("id"),
		"retries": retries,
		"count":   len(retries),
	})
}

func (h *Handlers) retry(c *fiber.Ctx) error {
	ac, err := auth.FromFiber(c)
	if err != nil {
		return err
	}

	j, err := h.svc.Retry(c.Context(), c.Params("id"), ac.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(j)
}
