// Package scoring computes the composite compatibility score for a
// candidate against a match request.
package scoring

import (
	"math"

	"github.com/padelhq/matchrank/internal/domain/geo"
	"github.com/padelhq/matchrank/internal/domain/model"
	"github.com/padelhq/matchrank/internal/domain/schedule"
)

// Default factor weights. Factors are pre-multiplied by their weight, so the
// composite is their direct sum, clamped to [0, 1].
const (
	defaultSimilarityWeight = 0.40
	defaultEloWeight        = 0.20
	defaultDistanceWeight   = 0.15
	defaultTimeWeight       = 0.10
	defaultAcceptanceWeight = 0.10
	defaultActivityWeight   = 0.05
)

// Bounded adjustments applied after the weighted factors.
const (
	positionAdjustment = 0.05
	ageAdjustment      = 0.02
)

// Reason thresholds.
const (
	similarityReasonThreshold = 0.85
	eloReasonThreshold        = 100.0 // ELO points off the range midpoint
	distanceReasonThresholdKM = 3.0
	timeReasonThreshold       = 0.8
	acceptanceReasonThreshold = 0.8
	activityReasonThreshold   = 3 // days since last activity
)

// Shape constants of individual factors.
const (
	distanceHalfWeightKM = 10.0 // distance at which the geo factor halves
	activityHorizonDays  = 30.0 // recency decays to zero over this window
	displayPrecision     = 3
)

// Reason strings attached when a factor clears its threshold.
const (
	ReasonCompatibleProfile = "highly compatible profile"
	ReasonSimilarLevel      = "very similar level"
	ReasonVeryClose         = "very close to match"
	ReasonScheduleFit       = "good schedule fit"
	ReasonHighAcceptance    = "high acceptance rate"
	ReasonVeryActive        = "very active user"
	ReasonPlaysForehand     = "plays forehand"
	ReasonPlaysBackhand     = "plays backhand"
)

// Weights bundles the six factor weights.
type Weights struct {
	Similarity float64
	Elo        float64
	Distance   float64
	Time       float64
	Acceptance float64
	Activity   float64
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		Similarity: defaultSimilarityWeight,
		Elo:        defaultEloWeight,
		Distance:   defaultDistanceWeight,
		Time:       defaultTimeWeight,
		Acceptance: defaultAcceptanceWeight,
		Activity:   defaultActivityWeight,
	}
}

// Breakdown records the weighted contribution of each factor.
type Breakdown struct {
	Similarity float64 `json:"similarity"`
	Elo        float64 `json:"elo"`
	Distance   float64 `json:"distance"`
	Time       float64 `json:"time"`
	Acceptance float64 `json:"acceptance"`
	Activity   float64 `json:"activity"`
	Position   float64 `json:"position,omitempty"`
	Age        float64 `json:"age,omitempty"`
}

// Result is the outcome of scoring one candidate.
type Result struct {
	// Score is the clamped composite, unrounded. Use Rounded for display.
	Score      float64
	Reasons    []string
	DistanceKM float64
	Breakdown  Breakdown
}

// Rounded returns the composite rounded to display precision.
func (r Result) Rounded() float64 {
	return Round(r.Score, displayPrecision)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	shift := math.Pow10(places)
	return math.Round(v*shift) / shift
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the factor weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// Engine scores candidates. It holds no per-request state, so a single
// instance may score candidates concurrently.
type Engine struct {
	weights Weights
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the composite score for one candidate. similarity is the
// [0, 1] vector closeness reported by the index. The returned DistanceKM is
// the raw great-circle distance, carried through for display.
func (e *Engine) Score(player model.Player, req model.MatchRequest, similarity float64) Result {
	var (
		b       Breakdown
		reasons []string
	)

	// Vector similarity.
	b.Similarity = similarity * e.weights.Similarity
	if similarity > similarityReasonThreshold {
		reasons = append(reasons, ReasonCompatibleProfile)
	}

	// ELO compatibility against the range midpoint.
	eloDiff := math.Abs(float64(player.Elo) - req.EloMidpoint())
	b.Elo = eloFactor(eloDiff, req.EloTolerance()) * e.weights.Elo
	if eloDiff < eloReasonThreshold {
		reasons = append(reasons, ReasonSimilarLevel)
	}

	// Geographic distance.
	distanceKM := geo.Distance(
		geo.Point{Lat: player.Location.Lat, Lon: player.Location.Lon},
		geo.Point{Lat: req.Location.Lat, Lon: req.Location.Lon},
	)
	b.Distance = (1 / (1 + distanceKM/distanceHalfWeightKM)) * e.weights.Distance
	if distanceKM < distanceReasonThresholdKM {
		reasons = append(reasons, ReasonVeryClose)
	}

	// Time-window overlap. Validation guarantees the match time parses.
	matchStart, _ := model.ParseClock(req.MatchTime)
	overlap := schedule.OverlapScore(player.Availability, matchStart, req.RequiredTime)
	b.Time = overlap * e.weights.Time
	if overlap >= timeReasonThreshold {
		reasons = append(reasons, ReasonScheduleFit)
	}

	// Acceptance rate.
	b.Acceptance = player.AcceptanceRate * e.weights.Acceptance
	if player.AcceptanceRate > acceptanceReasonThreshold {
		reasons = append(reasons, ReasonHighAcceptance)
	}

	// Recency.
	activity := math.Max(0, 1-float64(player.LastActiveDays)/activityHorizonDays)
	b.Activity = activity * e.weights.Activity
	if player.LastActiveDays < activityReasonThreshold {
		reasons = append(reasons, ReasonVeryActive)
	}

	// Position adjustment, only when a position was requested.
	if req.PreferredPosition != nil {
		if player.HasPosition(*req.PreferredPosition) {
			b.Position = positionAdjustment
			reasons = append(reasons, positionReason(*req.PreferredPosition))
		} else {
			b.Position = -positionAdjustment
		}
	}

	// Age adjustment, only when an age range was requested.
	if req.AgeRange != nil {
		if player.Age >= req.AgeRange[0] && player.Age <= req.AgeRange[1] {
			b.Age = ageAdjustment
		} else {
			b.Age = -ageAdjustment
		}
	}

	total := b.Similarity + b.Elo + b.Distance + b.Time + b.Acceptance + b.Activity + b.Position + b.Age
	total = math.Max(0, math.Min(1, total))

	return Result{
		Score:      total,
		Reasons:    reasons,
		DistanceKM: distanceKM,
		Breakdown:  b,
	}
}

// eloFactor maps the distance from the range midpoint into [0, 1]. A zero
// tolerance range only matches the midpoint itself.
func eloFactor(diff, tolerance float64) float64 {
	if tolerance <= 0 {
		if diff == 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, 1-diff/tolerance)
}

func positionReason(p model.Position) string {
	if p == model.PositionBackhand {
		return ReasonPlaysBackhand
	}
	return ReasonPlaysForehand
}
