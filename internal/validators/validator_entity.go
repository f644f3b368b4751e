package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/MKhiriev/go-team-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldTeamID       = "team_id"
	FieldPlayerID     = "player_id"
	FieldEventID      = "event_id"
	FieldJerseyNumber = "jersey_number"
	FieldKind         = "kind"
	FieldTitle        = "title"
	FieldStartsAt     = "starts_at"
	FieldResponse     = "response"
	FieldDurationMin  = "duration_min"
	FieldMetric       = "metric"
	FieldValue        = "value"
)

const maxJerseyNumber = 99

var (
	allowedEventKinds    = []string{models.EventKindGame, models.EventKindTraining, models.EventKindOther}
	allowedRSVPResponses = []string{models.RSVPYes, models.RSVPNo, models.RSVPMaybe}
)

// EntityValidator validates the team management schemas.
type EntityValidator struct {
}

// NewEntityValidator returns a validator for every entity schema.
func NewEntityValidator() *EntityValidator {
	return &EntityValidator{}
}

// Validate implements [Validator]. With no fields every rule of the schema
// is checked.
func (v *EntityValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Team:
		return v.validateTeam(value, fields...)
	case *models.Team:
		return v.validateTeam(*value, fields...)

	case models.Player:
		return v.validatePlayer(value, fields...)
	case *models.Player:
		return v.validatePlayer(*value, fields...)

	case models.Event:
		return v.validateEvent(value, fields...)
	case *models.Event:
		return v.validateEvent(*value, fields...)

	case models.RSVP:
		return v.validateRSVP(value, fields...)
	case *models.RSVP:
		return v.validateRSVP(*value, fields...)

	case models.Drill:
		return v.validateDrill(value, fields...)
	case *models.Drill:
		return v.validateDrill(*value, fields...)

	case models.Stat:
		return v.validateStat(value, fields...)
	case *models.Stat:
		return v.validateStat(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// DecodePayload implements [PayloadDecoder].
func (v *EntityValidator) DecodePayload(ctx context.Context, entityType string, payload []byte) (models.Entity, error) {
	entity, ok := models.NewEntity(entityType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(entity); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", entityType, ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w: trailing data after object", entityType, ErrMalformedPayload)
	}

	if err := v.Validate(ctx, entity); err != nil {
		return nil, fmt.Errorf("%s: %w", entityType, err)
	}
	return entity, nil
}

func (v *EntityValidator) validateTeam(team models.Team, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldName}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if team.ID == "" {
				return ErrEmptyID
			}
		case FieldName:
			if team.Name == "" {
				return ErrEmptyName
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func (v *EntityValidator) validatePlayer(player models.Player, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldTeamID, FieldName, FieldJerseyNumber}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if player.ID == "" {
				return ErrEmptyID
			}
		case FieldTeamID:
			if player.TeamID == "" {
				return ErrEmptyTeamID
			}
		case FieldName:
			if player.Name == "" {
				return ErrEmptyName
			}
		case FieldJerseyNumber:
			if n := player.JerseyNumber; n != nil && (*n < 0 || *n > maxJerseyNumber) {
				return ErrInvalidJerseyNumber
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func (v *EntityValidator) validateEvent(event models.Event, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldTeamID, FieldKind, FieldTitle, FieldStartsAt}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if event.ID == "" {
				return ErrEmptyID
			}
		case FieldTeamID:
			if event.TeamID == "" {
				return ErrEmptyTeamID
			}
		case FieldKind:
			if !contains(allowedEventKinds, event.Kind) {
				return ErrInvalidEventKind
			}
		case FieldTitle:
			if event.Title == "" {
				return ErrEmptyTitle
			}
		case FieldStartsAt:
			if event.StartsAt.IsZero() {
				return ErrEmptyStartTime
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func (v *EntityValidator) validateRSVP(rsvp models.RSVP, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldEventID, FieldPlayerID, FieldResponse}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if rsvp.ID == "" {
				return ErrEmptyID
			}
		case FieldEventID:
			if rsvp.EventID == "" {
				return ErrEmptyEventID
			}
		case FieldPlayerID:
			if rsvp.PlayerID == "" {
				return ErrEmptyPlayerID
			}
		case FieldResponse:
			if !contains(allowedRSVPResponses, rsvp.Response) {
				return ErrInvalidRSVPResponse
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func (v *EntityValidator) validateDrill(drill models.Drill, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldTeamID, FieldName, FieldDurationMin}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if drill.ID == "" {
				return ErrEmptyID
			}
		case FieldTeamID:
			if drill.TeamID == "" {
				return ErrEmptyTeamID
			}
		case FieldName:
			if drill.Name == "" {
				return ErrEmptyName
			}
		case FieldDurationMin:
			if drill.DurationMin < 0 {
				return ErrInvalidDuration
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func (v *EntityValidator) validateStat(stat models.Stat, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldPlayerID, FieldEventID, FieldMetric, FieldValue}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if stat.ID == "" {
				return ErrEmptyID
			}
		case FieldPlayerID:
			if stat.PlayerID == "" {
				return ErrEmptyPlayerID
			}
		case FieldEventID:
			if stat.EventID == "" {
				return ErrEmptyEventID
			}
		case FieldMetric:
			if stat.Metric == "" {
				return ErrEmptyMetric
			}
		case FieldValue:
			if math.IsNaN(stat.Value) || math.IsInf(stat.Value, 0) {
				return ErrInvalidValue
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func contains(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
