package handler

import (
	"errors"

	"event_ticketing/constants"
	"event_ticketing/model"
	"event_ticketing/repository"
	"event_ticketing/service"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	Events    *service.EventService
	Bookings  *service.BookingService
	Locations *repository.Repository[model.Location, *model.Location]
	BatchSize int
	Log       *zap.Logger
}

func New(reg *repository.Registry, events *service.EventService, bookings *service.BookingService, batchSize int, log *zap.Logger) *Handler {
	return &Handler{
		Events:    events,
		Bookings:  bookings,
		Locations: repository.MustLookup[model.Location](reg),
		BatchSize: batchSize,
		Log:       log,
	}
}

// respondError maps service errors onto status codes.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, verr.Error(), err)
	case errors.Is(err, model.ErrInvalidTransition):
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.INVALID_TICKET_STATUS_CHANGE, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return utils.ErrorResponse(c, fiber.StatusConflict, err.Error(), err)
	}
	h.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
}

func inputID(c *fiber.Ctx) uint {
	return c.Locals("inputId").(uint)
}
