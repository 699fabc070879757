package handler

import (
	"errors"
	"time"

	"event_ticketing/constants"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

func (h *Handler) GetLocations(c *fiber.Ctx) error {
	locations, err := h.Locations.GetAll(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, locations)
}

func (h *Handler) GetLocationById(c *fiber.Ctx) error {
	location, found, err := h.Locations.Find(c.UserContext(), inputID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	if !found {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.LOCATION_NOT_FOUND, nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, location)
}

func (h *Handler) CreateLocation(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateLocationInput)

	location := model.NewLocation("", "", time.Now())
	if err := copier.Copy(location, &input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if err := h.Locations.Save(c.UserContext(), location); err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, location)
}

// LoadLocations stores every uploaded location or none of them.
func (h *Handler) LoadLocations(c *fiber.Ctx) error {
	input := c.Locals("input").(model.BulkLocationInput)

	now := time.Now()
	locations := make([]*model.Location, 0, len(input.Locations))
	for i := range input.Locations {
		location := model.NewLocation("", "", now)
		if err := copier.Copy(location, &input.Locations[i]); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		locations = append(locations, location)
	}

	if err := h.Locations.SaveBatch(c.UserContext(), locations, h.BatchSize); err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{"count": len(locations)})
}

func (h *Handler) DeleteLocation(c *fiber.Ctx) error {
	err := h.Locations.DeleteByID(c.UserContext(), inputID(c))
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return utils.ErrorResponse(c, fiber.StatusConflict, constants.CAN_NOT_DELETE_LOCATION, err)
	}
	if err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
