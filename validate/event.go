package validate

import (
	"event_ticketing/constants"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateEvent only checks the shape of the body; business rules are reported together by the service.
func CreateEvent() fiber.Handler {
	return body[model.CreateEventInput]()
}

func EventsByDate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.EventsByDateInput
		if err := c.QueryParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}
		date, err := utils.ParseDate(input.Date)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		c.Locals("date", date)
		c.Locals("onlyAvailable", input.OnlyAvailable)
		return c.Next()
	}
}

func ChangeTicketStatus() fiber.Handler {
	return body[model.ChangeTicketStatusInput]()
}
