package constants

const (
	ERROR_INTERNAL_ERROR     = "Internal server error"
	ERROR_INPUT              = "Invalid input"
	DATA_INPUT_IS_NOT_NUMBER = "Input is not a number"

	EVENT_NOT_FOUND    = "Event not found"
	TICKET_NOT_FOUND   = "Ticket not found"
	LOCATION_NOT_FOUND = "Location not found"
	BOOKING_NOT_FOUND  = "Booking not found"

	INVALID_TICKET_STATUS_CHANGE = "Ticket status change is not allowed"
	CAN_NOT_DELETE_LOCATION      = "Location is still used by an event"
)

// Message types carried in messaging envelopes.
const (
	MESSAGE_EVENT_CREATED      = "event.created"
	MESSAGE_AVAILABILITY_QUERY = "availability.query"
	MESSAGE_AVAILABILITY_REPLY = "availability.reply"
)
