package validate

import (
	"event_ticketing/constants"
	"event_ticketing/model"
	"event_ticketing/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateLocation() fiber.Handler {
	return body[model.CreateLocationInput]()
}

// BulkLocations accepts a JSON array of locations.
func BulkLocations() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.BulkLocationInput
		if err := c.BodyParser(&input.Locations); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}
