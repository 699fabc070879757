package validate

import (
	"event_ticketing/model"

	"github.com/gofiber/fiber/v2"
)

func CreateBooking() fiber.Handler {
	return body[model.CreateBookingInput]()
}
