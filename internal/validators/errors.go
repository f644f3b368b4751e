package validators

import "errors"

var (
	ErrUnsupportedType   = errors.New("unsupported type for validation")
	ErrUnknownField      = errors.New("unknown field for validation")
	ErrUnknownEntityType = errors.New("unknown entity type")
	ErrMalformedPayload  = errors.New("malformed payload")

	ErrEmptyID             = errors.New("id is required")
	ErrIDMismatch          = errors.New("payload id does not match record id")
	ErrEmptyName           = errors.New("name is required")
	ErrEmptyTeamID         = errors.New("team id is required")
	ErrEmptyPlayerID       = errors.New("player id is required")
	ErrEmptyEventID        = errors.New("event id is required")
	ErrInvalidJerseyNumber = errors.New("jersey number must be between 0 and 99")
	ErrInvalidEventKind    = errors.New("invalid event kind")
	ErrEmptyTitle          = errors.New("title is required")
	ErrEmptyStartTime      = errors.New("start time is required")
	ErrInvalidRSVPResponse = errors.New("invalid rsvp response")
	ErrInvalidDuration     = errors.New("duration cannot be negative")
	ErrEmptyMetric         = errors.New("metric is required")
	ErrInvalidValue        = errors.New("value must be a finite number")
)
