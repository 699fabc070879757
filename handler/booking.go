package handler

import (
	"event_ticketing/constants"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetBookings(c *fiber.Ctx) error {
	bookings, err := h.Bookings.GetBookings(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, bookings)
}

func (h *Handler) GetBookingById(c *fiber.Ctx) error {
	b, err := h.Bookings.GetBooking(c.UserContext(), inputID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	if b == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.BOOKING_NOT_FOUND, nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, b)
}

func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateBookingInput)

	b, err := h.Bookings.CreateBooking(c.UserContext(), input.EventID, input.NumberOfTickets)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, b)
}

func (h *Handler) SellBooking(c *fiber.Ctx) error {
	b, err := h.Bookings.SellBooking(c.UserContext(), inputID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	if b == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.BOOKING_NOT_FOUND, nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, b)
}

func (h *Handler) DeleteBooking(c *fiber.Ctx) error {
	if err := h.Bookings.DeleteBooking(c.UserContext(), inputID(c)); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
