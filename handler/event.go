package handler

import (
	"time"

	"event_ticketing/constants"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetEvents(c *fiber.Ctx) error {
	var (
		events []*model.Event
		err    error
	)
	if c.QueryBool("withTickets") {
		events, err = h.Events.GetEventsWithRelated(c.UserContext(), model.RelationTickets, model.RelationLocation)
	} else {
		events, err = h.Events.GetEvents(c.UserContext())
	}
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, events)
}

func (h *Handler) GetAvailableEvents(c *fiber.Ctx) error {
	events, err := h.Events.GetAvailableEvents(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, events)
}

func (h *Handler) GetEventsByDate(c *fiber.Ctx) error {
	date := c.Locals("date").(time.Time)
	onlyAvailable := c.Locals("onlyAvailable").(bool)

	events, err := h.Events.GetEventsByDate(c.UserContext(), date, onlyAvailable)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, events)
}

func (h *Handler) GetEventById(c *fiber.Ctx) error {
	ev, err := h.Events.GetEvent(c.UserContext(), inputID(c), model.RelationLocation, model.RelationTickets)
	if err != nil {
		return h.respondError(c, err)
	}
	if ev == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.EVENT_NOT_FOUND, nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, ev)
}

func (h *Handler) GetAvailableTicketCount(c *fiber.Ctx) error {
	id := inputID(c)
	n, err := h.Events.GetAvailableTicketCount(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"eventId": id, "availableTickets": n})
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateEventInput)

	ev, err := h.Events.CreateEvent(c.UserContext(), input.Name, input.Date, input.LocationID, input.NumberOfTickets)
	if err != nil {
		return h.respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{"id": ev.ID})
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.Events.DeleteEvent(c.UserContext(), inputID(c)); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ChangeTicketStatus(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ChangeTicketStatusInput)
	status, err := model.ParseBookingStatus(input.Status)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	tk, err := h.Events.ChangeTicketStatus(c.UserContext(), inputID(c), status)
	if err != nil {
		return h.respondError(c, err)
	}
	if tk == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, constants.TICKET_NOT_FOUND, nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, tk)
}
