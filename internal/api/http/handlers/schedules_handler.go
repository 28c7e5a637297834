package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/barbershop-api/internal/api/dto"
	"github.com/spec-kit/barbershop-api/internal/service"
	apperrors "github.com/spec-kit/barbershop-api/pkg/util/errorutil"
)

// SchedulesHandler exposes appointment endpoints.
type SchedulesHandler struct {
	schedules *service.ScheduleService
}

// NewSchedulesHandler constructs handler.
func NewSchedulesHandler(schedules *service.ScheduleService) *SchedulesHandler {
	return &SchedulesHandler{schedules: schedules}
}

// Create handles POST /schedule.
func (h *SchedulesHandler) Create(c *fiber.Ctx) error {
	in, err := parseScheduleRequest(c)
	if err != nil {
		return err
	}
	schedule, err := h.schedules.Create(c.UserContext(), actorID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewScheduleResponse(*schedule))
}

// List handles GET /schedules.
func (h *SchedulesHandler) List(c *fiber.Ctx) error {
	schedules, err := h.schedules.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewScheduleListResponse(schedules))
}

// Get handles GET /schedule/:id.
func (h *SchedulesHandler) Get(c *fiber.Ctx) error {
	schedule, err := h.schedules.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewScheduleResponse(*schedule))
}

// Update handles PUT /schedule/:id.
func (h *SchedulesHandler) Update(c *fiber.Ctx) error {
	in, err := parseScheduleRequest(c)
	if err != nil {
		return err
	}
	if _, err := h.schedules.Update(c.UserContext(), actorID(c), c.Params("id"), in); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Delete handles DELETE /schedule/:id.
func (h *SchedulesHandler) Delete(c *fiber.Ctx) error {
	if err := h.schedules.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func parseScheduleRequest(c *fiber.Ctx) (service.ScheduleInput, error) {
	var req dto.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return service.ScheduleInput{}, apperrors.NewValidationError("Invalid body", nil)
	}
	return service.ScheduleInput{Date: req.Date, Hour: req.Hour, Title: req.Title, Body: req.Body}, nil
}
