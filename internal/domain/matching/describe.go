package matching

import (
	"fmt"
	"strings"

	"github.com/padelhq/matchrank/internal/domain/model"
)

// Behavioral description thresholds.
const (
	veryReliableAcceptance = 0.8
	reliableAcceptance     = 0.6
	occasionalAcceptance   = 0.4
	veryRecentDays         = 3
	recentDays             = 7
)

// Describe renders a match request as the canonical text encoded into the
// query embedding. The template is fixed, so identical requests produce
// identical text and, with a deterministic provider, identical vectors.
func Describe(req model.MatchRequest) string {
	parts := []string{
		fmt.Sprintf("Padel match for categories %s", joinCategories(req.Categories)),
		fmt.Sprintf("ELO between %d and %d", req.EloRange[0], req.EloRange[1]),
		fmt.Sprintf("Zone %s", req.Location.Zone),
		fmt.Sprintf("Start time %s", req.MatchTime),
		fmt.Sprintf("Duration %d minutes", req.RequiredTime),
		fmt.Sprintf("Gender preference %s", req.GenderPreference),
	}

	if req.AgeRange != nil {
		parts = append(parts, fmt.Sprintf("Age between %d and %d", req.AgeRange[0], req.AgeRange[1]))
	}
	if req.PreferredPosition != nil {
		parts = append(parts, fmt.Sprintf("Looking for a %s player", strings.ToLower(string(*req.PreferredPosition))))
	}
	parts = append(parts, fmt.Sprintf("%d players needed", req.RequiredPlayers))

	return strings.Join(parts, ". ") + "."
}

// DescribePlayer renders a player profile as the text encoded into that
// player's stored embedding. Behavioral context phrases are included so the
// embedding captures reliability and recency.
func DescribePlayer(p model.Player) string {
	parts := []string{
		fmt.Sprintf("Padel player, category %s", p.Category),
		fmt.Sprintf("ELO %d", p.Elo),
		fmt.Sprintf("Age %d", p.Age),
		fmt.Sprintf("Gender %s", p.Gender),
		fmt.Sprintf("Plays %s", joinPositions(p.Positions)),
		fmt.Sprintf("Zone %s", p.Location.Zone),
	}

	if len(p.Availability) > 0 {
		windows := make([]string, 0, len(p.Availability))
		for _, slot := range p.Availability {
			windows = append(windows, slot.Start+"-"+slot.End)
		}
		parts = append(parts, "Available "+strings.Join(windows, ", "))
	}

	switch {
	case p.AcceptanceRate > veryReliableAcceptance:
		parts = append(parts, "Very reliable and active player")
	case p.AcceptanceRate > reliableAcceptance:
		parts = append(parts, "Reliable player")
	case p.AcceptanceRate < occasionalAcceptance:
		parts = append(parts, "Occasional player")
	}

	switch {
	case p.LastActiveDays < veryRecentDays:
		parts = append(parts, "Very recently active")
	case p.LastActiveDays < recentDays:
		parts = append(parts, "Recently active")
	}

	return strings.Join(parts, ". ") + "."
}

func joinCategories(cats []model.Category) string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func joinPositions(ps []model.Position) string {
	if len(ps) == 0 {
		return "any side"
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, strings.ToLower(string(p)))
	}
	return strings.Join(names, " and ")
}
