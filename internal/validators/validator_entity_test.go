// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/MKhiriev/go-team-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewEntityValidator(t *testing.T) {
	var v Validator = NewEntityValidator()
	require.NotNil(t, v)

	var d PayloadDecoder = NewEntityValidator()
	require.NotNil(t, d)
}

func TestValidate_UnsupportedType(t *testing.T) {
	err := NewEntityValidator().Validate(context.Background(), "players")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestValidate_Schemas(t *testing.T) {
	startsAt := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		obj     any
		fields  []string
		wantErr error
	}{
		{"valid team", models.Team{ID: "t1", Name: "Hawks"}, nil, nil},
		{"team without name", &models.Team{ID: "t1"}, nil, ErrEmptyName},
		{"team id only", models.Team{ID: "t1"}, []string{FieldID}, nil},

		{"valid player", models.Player{ID: "p1", TeamID: "t1", Name: "Ana", JerseyNumber: intPtr(10)}, nil, nil},
		{"player without team", models.Player{ID: "p1", Name: "Ana"}, nil, ErrEmptyTeamID},
		{"player jersey too big", models.Player{ID: "p1", TeamID: "t1", Name: "Ana", JerseyNumber: intPtr(100)}, nil, ErrInvalidJerseyNumber},
		{"player jersey negative", &models.Player{ID: "p1", TeamID: "t1", Name: "Ana", JerseyNumber: intPtr(-1)}, nil, ErrInvalidJerseyNumber},
		{"player unknown field", models.Player{ID: "p1"}, []string{"nickname"}, ErrUnknownField},

		{"valid event", models.Event{ID: "e1", TeamID: "t1", Kind: models.EventKindGame, Title: "Derby", StartsAt: startsAt}, nil, nil},
		{"event bad kind", models.Event{ID: "e1", TeamID: "t1", Kind: "party", Title: "x", StartsAt: startsAt}, nil, ErrInvalidEventKind},
		{"event no start", models.Event{ID: "e1", TeamID: "t1", Kind: models.EventKindTraining, Title: "x"}, nil, ErrEmptyStartTime},
		{"event no title", &models.Event{ID: "e1", TeamID: "t1", Kind: models.EventKindOther, StartsAt: startsAt}, nil, ErrEmptyTitle},

		{"valid rsvp", models.RSVP{ID: "r1", EventID: "e1", PlayerID: "p1", Response: models.RSVPMaybe}, nil, nil},
		{"rsvp bad response", models.RSVP{ID: "r1", EventID: "e1", PlayerID: "p1", Response: "sure"}, nil, ErrInvalidRSVPResponse},
		{"rsvp no event", &models.RSVP{ID: "r1", PlayerID: "p1", Response: models.RSVPYes}, nil, ErrEmptyEventID},

		{"valid drill", models.Drill{ID: "d1", TeamID: "t1", Name: "rondo", DurationMin: 15}, nil, nil},
		{"drill negative duration", models.Drill{ID: "d1", TeamID: "t1", Name: "rondo", DurationMin: -5}, nil, ErrInvalidDuration},

		{"valid stat", models.Stat{ID: "s1", PlayerID: "p1", EventID: "e1", Metric: "goals", Value: 2}, nil, nil},
		{"stat NaN", models.Stat{ID: "s1", PlayerID: "p1", EventID: "e1", Metric: "goals", Value: math.NaN()}, nil, ErrInvalidValue},
		{"stat no metric", &models.Stat{ID: "s1", PlayerID: "p1", EventID: "e1"}, nil, ErrEmptyMetric},
		{"stat no id", models.Stat{PlayerID: "p1", EventID: "e1", Metric: "goals"}, nil, ErrEmptyID},
	}

	v := NewEntityValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.obj, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecodePayload(t *testing.T) {
	v := NewEntityValidator()

	entity, err := v.DecodePayload(context.Background(), models.EntityPlayers,
		[]byte(`{"id":"p1","team_id":"t1","name":"Ana","jersey_number":7,"active":true}`))
	require.NoError(t, err)

	player, ok := entity.(*models.Player)
	require.True(t, ok)
	assert.Equal(t, "p1", player.EntityID())
	assert.Equal(t, 7, *player.JerseyNumber)
}

func TestDecodePayload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		entityType string
		payload    string
		wantErr    error
	}{
		{"unknown type", "coaches", `{"id":"c1"}`, ErrUnknownEntityType},
		{"unknown field", models.EntityTeams, `{"id":"t1","name":"Hawks","mascot":"hawk"}`, ErrMalformedPayload},
		{"wrong field type", models.EntityTeams, `{"id":"t1","name":42}`, ErrMalformedPayload},
		{"not an object", models.EntityTeams, `"t1"`, ErrMalformedPayload},
		{"trailing data", models.EntityTeams, `{"id":"t1","name":"Hawks"} {}`, ErrMalformedPayload},
		{"empty", models.EntityTeams, ``, ErrMalformedPayload},
		{"schema violation", models.EntityRSVPs, `{"id":"r1","event_id":"e1","player_id":"p1","response":"perhaps"}`, ErrInvalidRSVPResponse},
	}

	v := NewEntityValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.DecodePayload(context.Background(), tt.entityType, []byte(tt.payload))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
