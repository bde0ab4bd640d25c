package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/padelhq/matchrank/internal/domain/model"
)

// Constants for profile generation ranges.
const (
	minAge = 18
	maxAge = 60

	cityCenterLat = -31.4201
	cityCenterLon = -64.1888
	coordJitter   = 0.05

	noAvailabilityRatio = 0.3
	maxSlotsPerPlayer   = 3
	earliestSlotHour    = 8
	latestSlotHour      = 20
	minSlotHours        = 2
	maxSlotHours        = 4
	latestEndHour       = 23

	acceptanceAlpha = 8
	acceptanceBeta  = 2

	meanInactiveDays = 5.0
	maxInactiveDays  = 60
)

// categoryBand ties a skill category to its ELO band and how common it is
// in the player population.
type categoryBand struct {
	category model.Category
	minElo   int
	maxElo   int
	weight   float64
}

// Population distribution over skill tiers. Mid tiers dominate; elite
// tiers are rare. The bottom band floors at 1 because index metadata
// requires a positive rating.
var categoryBands = []categoryBand{
	{model.CategoryNinth, 1, 1199, 0.05},
	{model.CategoryEighth, 1200, 1499, 0.08},
	{model.CategorySeventh, 1500, 1799, 0.12},
	{model.CategorySixth, 1800, 2099, 0.20},
	{model.CategoryFifth, 2100, 2399, 0.25},
	{model.CategoryFourth, 2400, 2699, 0.15},
	{model.CategoryThird, 2700, 2999, 0.10},
	{model.CategorySecond, 3000, 3299, 0.03},
	{model.CategoryFirst, 3300, 3800, 0.02},
}

// Córdoba neighbourhoods used as player zones.
var zones = []string{
	"Nueva Córdoba", "Centro", "Cerro de las Rosas", "Güemes",
	"Alta Córdoba", "Alberdi", "General Paz",
}

var firstNames = []string{
	"Mateo", "Santiago", "Valentina", "Sofía", "Benjamín", "Martina",
	"Lucas", "Camila", "Joaquín", "Julieta", "Tomás", "Agustina",
	"Franco", "Lucía", "Nicolás", "Florencia", "Bruno", "Victoria",
	"Emiliano", "Catalina",
}

var lastNames = []string{
	"González", "Rodríguez", "Fernández", "López", "Martínez", "Pérez",
	"Gómez", "Sánchez", "Díaz", "Romero", "Álvarez", "Torres",
	"Ruiz", "Ramírez", "Flores", "Acosta", "Benítez", "Medina",
	"Herrera", "Aguirre",
}

// Generator produces synthetic player profiles with a realistic skill and
// activity distribution.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. A zero seed picks a time-based one.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Player generates one synthetic profile.
func (g *Generator) Player() model.Player {
	band := g.pickBand()

	return model.Player{
		ID:        uuid.New().String(),
		Name:      g.name(),
		Elo:       g.elo(band),
		Age:       minAge + g.rng.Intn(maxAge-minAge+1),
		Gender:    g.gender(),
		Category:  band.category,
		Positions: g.positions(),
		Location: model.Location{
			Lat:  cityCenterLat + (g.rng.Float64()*2-1)*coordJitter,
			Lon:  cityCenterLon + (g.rng.Float64()*2-1)*coordJitter,
			Zone: zones[g.rng.Intn(len(zones))],
		},
		Availability:   g.availability(),
		AcceptanceRate: g.acceptanceRate(),
		LastActiveDays: g.lastActiveDays(),
	}
}

// pickBand selects a category band according to its population weight.
func (g *Generator) pickBand() categoryBand {
	total := 0.0
	for _, b := range categoryBands {
		total += b.weight
	}
	r := g.rng.Float64() * total
	for _, b := range categoryBands {
		r -= b.weight
		if r <= 0 {
			return b
		}
	}
	return categoryBands[len(categoryBands)-1]
}

// elo samples a normally distributed rating centered on the band, clamped
// to the band's limits.
func (g *Generator) elo(band categoryBand) int {
	span := float64(band.maxElo - band.minElo)
	center := float64(band.minElo) + span/2
	elo := int(g.rng.NormFloat64()*(span/4) + center)
	if elo < band.minElo {
		elo = band.minElo
	}
	if elo > band.maxElo {
		elo = band.maxElo
	}
	return elo
}

func (g *Generator) name() string {
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

func (g *Generator) gender() model.Gender {
	if g.rng.Intn(2) == 0 {
		return model.GenderMale
	}
	return model.GenderFemale
}

func (g *Generator) positions() []model.Position {
	switch g.rng.Intn(3) {
	case 0:
		return []model.Position{model.PositionForehand}
	case 1:
		return []model.Position{model.PositionBackhand}
	default:
		return []model.Position{model.PositionForehand, model.PositionBackhand}
	}
}

// availability generates up to three evening-biased slots. A share of
// players has no declared availability at all.
func (g *Generator) availability() []model.TimeSlot {
	if g.rng.Float64() < noAvailabilityRatio {
		return nil
	}

	count := 1 + g.rng.Intn(maxSlotsPerPlayer)
	slots := make([]model.TimeSlot, 0, count)
	for i := 0; i < count; i++ {
		start := earliestSlotHour + g.rng.Intn(latestSlotHour-earliestSlotHour+1)
		end := start + minSlotHours + g.rng.Intn(maxSlotHours-minSlotHours+1)
		if end > latestEndHour {
			end = latestEndHour
		}
		slots = append(slots, model.TimeSlot{
			Start: fmt.Sprintf("%02d:00", start),
			End:   fmt.Sprintf("%02d:00", end),
		})
	}
	return slots
}

// acceptanceRate samples Beta(8, 2): most players accept most invites.
func (g *Generator) acceptanceRate() float64 {
	a := g.gammaInt(acceptanceAlpha)
	b := g.gammaInt(acceptanceBeta)
	return a / (a + b)
}

// gammaInt samples Gamma(shape, 1) for integer shapes as a sum of
// exponentials.
func (g *Generator) gammaInt(shape int) float64 {
	sum := 0.0
	for i := 0; i < shape; i++ {
		sum += -math.Log(1 - g.rng.Float64())
	}
	return sum
}

// lastActiveDays samples an exponential recency: most players played
// recently, a long tail has not.
func (g *Generator) lastActiveDays() int {
	days := int(-math.Log(1-g.rng.Float64()) * meanInactiveDays)
	if days > maxInactiveDays {
		days = maxInactiveDays
	}
	return days
}
