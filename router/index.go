package router

import (
	"event_ticketing/handler"
	"event_ticketing/middleware"
	"event_ticketing/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, log *zap.Logger) {
	api := app.Group("/api", middleware.RequestLogger(log))

	event := api.Group("/events")
	event.Get("/", h.GetEvents)
	event.Get("/available", h.GetAvailableEvents)
	event.Get("/by-date", validate.EventsByDate(), h.GetEventsByDate)
	event.Get("/:eventId", validate.GetById("eventId"), h.GetEventById)
	event.Get("/:eventId/tickets/available", validate.GetById("eventId"), h.GetAvailableTicketCount)
	event.Post("/", validate.CreateEvent(), h.CreateEvent)
	event.Delete("/:eventId", validate.GetById("eventId"), h.DeleteEvent)

	ticket := api.Group("/tickets")
	ticket.Patch("/:ticketId/status", validate.GetById("ticketId"), validate.ChangeTicketStatus(), h.ChangeTicketStatus)

	location := api.Group("/locations")
	location.Get("/", h.GetLocations)
	location.Get("/:locationId", validate.GetById("locationId"), h.GetLocationById)
	location.Post("/", validate.CreateLocation(), h.CreateLocation)
	location.Post("/load/from_request", validate.BulkLocations(), h.LoadLocations)
	location.Delete("/:locationId", validate.GetById("locationId"), h.DeleteLocation)

	booking := api.Group("/bookings")
	booking.Get("/", h.GetBookings)
	booking.Get("/:bookingId", validate.GetById("bookingId"), h.GetBookingById)
	booking.Post("/", validate.CreateBooking(), h.CreateBooking)
	booking.Post("/:bookingId/sell", validate.GetById("bookingId"), h.SellBooking)
	booking.Delete("/:bookingId", validate.GetById("bookingId"), h.DeleteBooking)
}
