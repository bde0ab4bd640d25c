// Package model contains domain models passed between layers.
package model

import "fmt"

// Category is an ordinal skill tier, lowest (NINTH) to highest (FIRST).
type Category string

// Skill categories.
const (
	CategoryNinth   Category = "NINTH"
	CategoryEighth  Category = "EIGHTH"
	CategorySeventh Category = "SEVENTH"
	CategorySixth   Category = "SIXTH"
	CategoryFifth   Category = "FIFTH"
	CategoryFourth  Category = "FOURTH"
	CategoryThird   Category = "THIRD"
	CategorySecond  Category = "SECOND"
	CategoryFirst   Category = "FIRST"
)

// Categories lists all valid categories in ascending skill order.
func Categories() []Category {
	return []Category{
		CategoryNinth, CategoryEighth, CategorySeventh, CategorySixth,
		CategoryFifth, CategoryFourth, CategoryThird, CategorySecond,
		CategoryFirst,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Position is a court-side capability tag.
type Position string

// Court positions.
const (
	PositionForehand Position = "FOREHAND"
	PositionBackhand Position = "BACKHAND"
)

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	return p == PositionForehand || p == PositionBackhand
}

// Gender of a player.
type Gender string

// Genders.
const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Location is a geographic point with a human-readable zone label.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zone string  `json:"zone"`
}

// Validate checks coordinate bounds.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("lat out of range: %v", l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("lon out of range: %v", l.Lon)
	}
	return nil
}

// TimeSlot is a half-open availability window [Start, End) on a 24-hour
// clock, both ends formatted "HH:MM". JSON keys mirror the stored shape.
type TimeSlot struct {
	Start string `json:"min"`
	End   string `json:"max"`
}

// Player is a registered player profile.
type Player struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Elo            int        `json:"elo"`
	Age            int        `json:"age"`
	Gender         Gender     `json:"gender"`
	Category       Category   `json:"category"`
	Positions      []Position `json:"positions"`
	Location       Location   `json:"location"`
	Availability   []TimeSlot `json:"availability,omitempty"`
	AcceptanceRate float64    `json:"acceptance_rate"`
	LastActiveDays int        `json:"last_active_days"`
}

// HasPosition reports whether the player covers the given position.
func (p Player) HasPosition(pos Position) bool {
	for _, have := range p.Positions {
		if have == pos {
			return true
		}
	}
	return false
}

// PlayerMetrics is the relational row backing the scoring signals that do
// not live in the vector index: behavioral metrics plus the exact location
// and availability windows.
type PlayerMetrics struct {
	AcceptanceRate float64    `json:"acceptance_rate"`
	LastActiveDays int        `json:"last_active_days"`
	Location       Location   `json:"location"`
	Availability   []TimeSlot `json:"availability,omitempty"`
}

// DefaultPlayerMetrics is the neutral prior substituted for players missing
// from the metrics store. It neither rewards nor penalizes unknown players.
func DefaultPlayerMetrics() PlayerMetrics {
	return PlayerMetrics{
		AcceptanceRate: 0.5,
		LastActiveDays: 999,
	}
}
