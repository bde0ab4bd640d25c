// Package matching holds the pure pieces of the candidate pipeline: the
// canonical request text, the hard numeric filter, and result assembly.
package matching

import (
	"errors"

	"github.com/padelhq/matchrank/internal/domain/model"
	"github.com/padelhq/matchrank/internal/domain/scoring"
)

// ErrNoCandidates signals an empty ranked pool after filtering. It is a
// business outcome, not a pipeline failure.
var ErrNoCandidates = errors.New("no compatible candidates found")

// ScoredPlayer is the per-request working record flowing through the
// pipeline. It is owned by a single invocation and discarded afterwards.
type ScoredPlayer struct {
	Player     model.Player
	Similarity float64
	Result     scoring.Result
}

// HardFilter drops candidates failing the mandatory numeric constraints:
// the ELO range, and the age range when one is requested. The filter is
// stable and has no side effects. An empty result is legitimate here; only
// assembly treats an empty pool as a signal.
func HardFilter(pool []ScoredPlayer, req model.MatchRequest) []ScoredPlayer {
	kept := make([]ScoredPlayer, 0, len(pool))
	for _, sp := range pool {
		if sp.Player.Elo < req.EloRange[0] || sp.Player.Elo > req.EloRange[1] {
			continue
		}
		if req.AgeRange != nil && (sp.Player.Age < req.AgeRange[0] || sp.Player.Age > req.AgeRange[1]) {
			continue
		}
		kept = append(kept, sp)
	}
	return kept
}
