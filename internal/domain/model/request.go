package model

import (
	"errors"
	"fmt"
	"strings"
)

// Gender preference values accepted by a match request. MIXED means any
// gender qualifies and no gender filter is pushed into retrieval.
type GenderPreference string

// Gender preferences.
const (
	PreferMale   GenderPreference = "MALE"
	PreferFemale GenderPreference = "FEMALE"
	PreferMixed  GenderPreference = "MIXED"
)

// Valid reports whether g is a known preference.
func (g GenderPreference) Valid() bool {
	return g == PreferMale || g == PreferFemale || g == PreferMixed
}

// Bounds on request fields.
const (
	minRequiredPlayers = 1
	maxRequiredPlayers = 3
	minutesPerDay      = 24 * 60
)

// MatchRequest describes a proposed match for which candidates are ranked.
type MatchRequest struct {
	MatchID           string           `json:"match_id"`
	Categories        []Category       `json:"categories"`
	EloRange          [2]int           `json:"elo_range"`
	AgeRange          *[2]int          `json:"age_range,omitempty"`
	GenderPreference  GenderPreference `json:"gender_preference"`
	RequiredPlayers   int              `json:"required_players"`
	Location          Location         `json:"location"`
	MatchTime         string           `json:"match_time"`
	RequiredTime      int              `json:"required_time"`
	PreferredPosition *Position        `json:"preferred_position,omitempty"`
}

// EloMidpoint returns the center of the accepted ELO range.
func (r MatchRequest) EloMidpoint() float64 {
	return float64(r.EloRange[0]+r.EloRange[1]) / 2
}

// EloTolerance returns half the accepted ELO span.
func (r MatchRequest) EloTolerance() float64 {
	return float64(r.EloRange[1]-r.EloRange[0]) / 2
}

// Validate checks the request before the pipeline runs. Validation failures
// never surface from inside scoring.
func (r MatchRequest) Validate() error {
	var problems []string

	if strings.TrimSpace(r.MatchID) == "" {
		problems = append(problems, "missing match_id")
	}
	if len(r.Categories) == 0 {
		problems = append(problems, "categories must not be empty")
	}
	for _, c := range r.Categories {
		if !c.Valid() {
			problems = append(problems, fmt.Sprintf("unknown category %q", c))
		}
	}
	if r.EloRange[0] <= 0 {
		problems = append(problems, "elo_range minimum must be positive")
	}
	if r.EloRange[0] > r.EloRange[1] {
		problems = append(problems, "elo_range minimum exceeds maximum")
	}
	if r.AgeRange != nil && r.AgeRange[0] > r.AgeRange[1] {
		problems = append(problems, "age_range minimum exceeds maximum")
	}
	if !r.GenderPreference.Valid() {
		problems = append(problems, fmt.Sprintf("unknown gender_preference %q", r.GenderPreference))
	}
	if r.RequiredPlayers < minRequiredPlayers || r.RequiredPlayers > maxRequiredPlayers {
		problems = append(problems, fmt.Sprintf("required_players must be between %d and %d", minRequiredPlayers, maxRequiredPlayers))
	}
	if err := r.Location.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if r.RequiredTime <= 0 {
		problems = append(problems, "required_time must be positive")
	}
	start, err := ParseClock(r.MatchTime)
	if err != nil {
		problems = append(problems, fmt.Sprintf("invalid match_time: %v", err))
	} else if start+r.RequiredTime > minutesPerDay {
		// Day-wraparound matches are not supported.
		problems = append(problems, "match must end before midnight")
	}
	if r.PreferredPosition != nil && !r.PreferredPosition.Valid() {
		problems = append(problems, fmt.Sprintf("unknown preferred_position %q", *r.PreferredPosition))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}

// ErrInvalidRequest marks a malformed match request.
var ErrInvalidRequest = errors.New("invalid match request")

// ParseClock parses a 24-hour "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return h*60 + m, nil
}
