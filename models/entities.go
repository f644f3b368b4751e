package models

import "time"

// Entity types mirrored by the local cache. Each value is also the name of
// the remote table and of the REST collection.
const (
	EntityPlayers = "players"
	EntityTeams   = "teams"
	EntityEvents  = "events"
	EntityRSVPs   = "rsvps"
	EntityDrills  = "drills"
	EntityStats   = "stats"
)

// AllEntityTypes lists every entity type known to the sync layer in the
// order they are pulled by default.
var AllEntityTypes = []string{
	EntityTeams,
	EntityPlayers,
	EntityEvents,
	EntityRSVPs,
	EntityDrills,
	EntityStats,
}

// IsKnownEntityType reports whether entityType is one of [AllEntityTypes].
func IsKnownEntityType(entityType string) bool {
	for _, known := range AllEntityTypes {
		if known == entityType {
			return true
		}
	}
	return false
}

// Team is a squad managed in the dashboard.
type Team struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Season   string `json:"season,omitempty"`
	AgeGroup string `json:"age_group,omitempty"`
}

// Player is a roster member of a team.
type Player struct {
	ID           string `json:"id"`
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	JerseyNumber *int   `json:"jersey_number,omitempty"`
	Position     string `json:"position,omitempty"`
	Active       bool   `json:"active"`
}

// Event is a game or a training session on the team calendar.
type Event struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"team_id"`
	Kind     string    `json:"kind"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	Location string    `json:"location,omitempty"`
}

// Event kinds accepted by the schema validator.
const (
	EventKindGame     = "game"
	EventKindTraining = "training"
	EventKindOther    = "other"
)

// RSVP is a player's answer to an event invitation.
type RSVP struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	PlayerID string `json:"player_id"`
	Response string `json:"response"`
	Note     string `json:"note,omitempty"`
}

// RSVP responses accepted by the schema validator.
const (
	RSVPYes   = "yes"
	RSVPNo    = "no"
	RSVPMaybe = "maybe"
)

// Drill is a training exercise from the team library.
type Drill struct {
	ID          string   `json:"id"`
	TeamID      string   `json:"team_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DurationMin int      `json:"duration_min,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Stat is one recorded metric for a player at an event.
type Stat struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"player_id"`
	EventID  string  `json:"event_id"`
	Metric   string  `json:"metric"`
	Value    float64 `json:"value"`
}

// Entity is implemented by every schema struct; it lets the sync layer read
// and assign identifiers without knowing the concrete shape.
type Entity interface {
	EntityID() string
	SetEntityID(id string)
}

// NewEntity returns a pointer to a zero schema struct for entityType.
func NewEntity(entityType string) (Entity, bool) {
	switch entityType {
	case EntityTeams:
		return &Team{}, true
	case EntityPlayers:
		return &Player{}, true
	case EntityEvents:
		return &Event{}, true
	case EntityRSVPs:
		return &RSVP{}, true
	case EntityDrills:
		return &Drill{}, true
	case EntityStats:
		return &Stat{}, true
	default:
		return nil, false
	}
}

func (t *Team) EntityID() string        { return t.ID }
func (t *Team) SetEntityID(id string)   { t.ID = id }
func (p *Player) EntityID() string      { return p.ID }
func (p *Player) SetEntityID(id string) { p.ID = id }
func (e *Event) EntityID() string       { return e.ID }
func (e *Event) SetEntityID(id string)  { e.ID = id }
func (r *RSVP) EntityID() string        { return r.ID }
func (r *RSVP) SetEntityID(id string)   { r.ID = id }
func (d *Drill) EntityID() string       { return d.ID }
func (d *Drill) SetEntityID(id string)  { d.ID = id }
func (s *Stat) EntityID() string        { return s.ID }
func (s *Stat) SetEntityID(id string)   { s.ID = id }
