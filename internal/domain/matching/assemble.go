package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/padelhq/matchrank/internal/domain/model"
	"github.com/padelhq/matchrank/internal/domain/scoring"
)

// DefaultResultLimit caps the ranked list returned to callers.
const DefaultResultLimit = 20

// Invitation message tiers.
const (
	inviteHighScore    = 0.85
	inviteMidScore     = 0.70
	inviteNearbyKM     = 3.0
	distanceKMDecimals = 2
)

// fallbackSummary is used when no factor cleared its reason threshold.
const fallbackSummary = "meets the match requirements"

// Assemble sorts the scored pool by composite score with acceptance rate as
// the tie-break, truncates it to limit, and materializes the public
// candidates. An empty pool yields ErrNoCandidates rather than an empty
// success list.
func Assemble(pool []ScoredPlayer, req model.MatchRequest, limit int) ([]model.Candidate, error) {
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	// Sort on the unrounded composite; rounding happens only on output.
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Result.Score != pool[j].Result.Score {
			return pool[i].Result.Score > pool[j].Result.Score
		}
		return pool[i].Player.AcceptanceRate > pool[j].Player.AcceptanceRate
	})

	if len(pool) > limit {
		pool = pool[:limit]
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: match %s", ErrNoCandidates, req.MatchID)
	}

	candidates := make([]model.Candidate, 0, len(pool))
	for _, sp := range pool {
		candidates = append(candidates, newCandidate(sp, req))
	}
	return candidates, nil
}

func newCandidate(sp ScoredPlayer, req model.MatchRequest) model.Candidate {
	eloDiff := int(math.Round(math.Abs(float64(sp.Player.Elo) - req.EloMidpoint())))
	return model.Candidate{
		PlayerID:             sp.Player.ID,
		PlayerName:           sp.Player.Name,
		Score:                sp.Result.Rounded(),
		DistanceKM:           scoring.Round(sp.Result.DistanceKM, distanceKMDecimals),
		Elo:                  sp.Player.Elo,
		EloDiff:              eloDiff,
		AcceptanceRate:       sp.Player.AcceptanceRate,
		Gender:               sp.Player.Gender,
		Reasons:              sp.Result.Reasons,
		InvitationMessage:    invitationMessage(sp.Result, req),
		CompatibilitySummary: summary(sp.Result.Reasons),
	}
}

// invitationMessage picks a message tier from the composite score and the
// distance to the match.
func invitationMessage(res scoring.Result, req model.MatchRequest) string {
	pct := int(math.Round(res.Score * 100))
	switch {
	case res.Score > inviteHighScore && res.DistanceKM < inviteNearbyKM:
		return fmt.Sprintf("Highly compatible match near you - %.1fkm away - %d%% match", res.DistanceKM, pct)
	case res.Score > inviteHighScore:
		return fmt.Sprintf("Highly compatible match in your zone - %d%% match", pct)
	case res.Score > inviteMidScore:
		return fmt.Sprintf("Match in %s - %.1fkm away - %d%% match", req.Location.Zone, res.DistanceKM, pct)
	default:
		return fmt.Sprintf("Players wanted in %s at %s - %d%% match", req.Location.Zone, req.MatchTime, pct)
	}
}

func summary(reasons []string) string {
	if len(reasons) == 0 {
		return fallbackSummary
	}
	return strings.Join(reasons, ", ")
}
