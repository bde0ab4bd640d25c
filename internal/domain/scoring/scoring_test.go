package scoring_test

import (
	"math"
	"testing"

	geo "github.com/padelhq/matchrank/internal/domain/geo"
	model "github.com/padelhq/matchrank/internal/domain/model"
	scoring "github.com/padelhq/matchrank/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func baseRequest() model.MatchRequest {
	return model.MatchRequest{
		MatchID:          "match-1",
		Categories:       []model.Category{model.CategorySixth},
		EloRange:         [2]int{1400, 1800},
		GenderPreference: model.PreferMixed,
		RequiredPlayers:  2,
		Location:         model.Location{Lat: -31.42647, Lon: -64.18722, Zone: "Centro"},
		MatchTime:        "19:00",
		RequiredTime:     90,
	}
}

func basePlayer() model.Player {
	return model.Player{
		ID:             "player-1",
		Name:           "Ana",
		Elo:            1600,
		Age:            30,
		Gender:         model.GenderFemale,
		Category:       model.CategorySixth,
		Positions:      []model.Position{model.PositionForehand},
		Location:       model.Location{Lat: -31.42647, Lon: -64.18722, Zone: "Centro"},
		Availability:   []model.TimeSlot{{Start: "18:00", End: "22:00"}},
		AcceptanceRate: 0.9,
		LastActiveDays: 1,
	}
}

func TestEngineScore(t *testing.T) {
	engine := scoring.NewEngine()

	Convey("Given a near-ideal candidate roughly one kilometer away", t, func() {
		req := baseRequest()
		player := basePlayer()
		player.Location = model.Location{Lat: -31.41859, Lon: -64.19250, Zone: "Centro"}

		res := engine.Score(player, req, 0.90)

		Convey("Then the composite matches the weighted factor sum", func() {
			distFactor := 0.15 * (1 / (1 + res.DistanceKM/10))
			expected := 0.40*0.90 + 0.20*1.0 + distFactor + 0.10*1.0 + 0.10*0.9 + 0.05*(29.0/30.0)
			So(res.Score, ShouldAlmostEqual, expected, 1e-9)
			So(res.Score, ShouldBeGreaterThan, 0.9)
			So(res.Score, ShouldBeLessThanOrEqualTo, 1.0)
		})

		Convey("Then the raw distance survives for display", func() {
			want := geo.Distance(
				geo.Point{Lat: player.Location.Lat, Lon: player.Location.Lon},
				geo.Point{Lat: req.Location.Lat, Lon: req.Location.Lon},
			)
			So(res.DistanceKM, ShouldEqual, want)
			So(res.DistanceKM, ShouldBeLessThan, 3.0)
		})

		Convey("Then every cleared threshold contributes a reason", func() {
			So(res.Reasons, ShouldResemble, []string{
				scoring.ReasonCompatibleProfile,
				scoring.ReasonSimilarLevel,
				scoring.ReasonVeryClose,
				scoring.ReasonScheduleFit,
				scoring.ReasonHighAcceptance,
				scoring.ReasonVeryActive,
			})
		})
	})

	Convey("Given a candidate at the exact ELO midpoint", t, func() {
		res := engine.Score(basePlayer(), baseRequest(), 0.5)

		Convey("Then the ELO factor carries its full weight", func() {
			So(res.Breakdown.Elo, ShouldAlmostEqual, 0.20, 1e-9)
		})
	})

	Convey("Given a candidate exactly at the ELO range boundary", t, func() {
		player := basePlayer()
		player.Elo = 1800

		res := engine.Score(player, baseRequest(), 0.5)

		Convey("Then the ELO factor is zero", func() {
			So(res.Breakdown.Elo, ShouldAlmostEqual, 0.0, 1e-9)
		})
	})

	Convey("Given a degenerate single-point ELO range", t, func() {
		req := baseRequest()
		req.EloRange = [2]int{1600, 1600}

		Convey("Then only the midpoint itself scores", func() {
			So(engine.Score(basePlayer(), req, 0.5).Breakdown.Elo, ShouldAlmostEqual, 0.20, 1e-9)

			off := basePlayer()
			off.Elo = 1601
			So(engine.Score(off, req, 0.5).Breakdown.Elo, ShouldAlmostEqual, 0.0, 1e-9)
		})
	})

	Convey("Given a player with no availability data", t, func() {
		player := basePlayer()
		player.Availability = nil

		res := engine.Score(player, baseRequest(), 0.5)

		Convey("Then the time factor uses the neutral overlap", func() {
			So(res.Breakdown.Time, ShouldAlmostEqual, 0.5*0.10, 1e-9)
			So(res.Reasons, ShouldNotContain, scoring.ReasonScheduleFit)
		})
	})

	Convey("Given position preferences", t, func() {
		req := baseRequest()
		forehand := model.PositionForehand
		backhand := model.PositionBackhand

		Convey("When no position is requested the adjustment is exactly zero", func() {
			res := engine.Score(basePlayer(), req, 0.5)
			So(res.Breakdown.Position, ShouldEqual, 0.0)
		})

		Convey("When the candidate covers the requested position", func() {
			req.PreferredPosition = &forehand
			res := engine.Score(basePlayer(), req, 0.5)
			So(res.Breakdown.Position, ShouldEqual, 0.05)
			So(res.Reasons, ShouldContain, scoring.ReasonPlaysForehand)
		})

		Convey("When the candidate lacks the requested position", func() {
			req.PreferredPosition = &backhand
			res := engine.Score(basePlayer(), req, 0.5)
			So(res.Breakdown.Position, ShouldEqual, -0.05)
			So(res.Reasons, ShouldNotContain, scoring.ReasonPlaysBackhand)
		})
	})

	Convey("Given age preferences", t, func() {
		req := baseRequest()

		Convey("When no age range is requested the adjustment is exactly zero", func() {
			res := engine.Score(basePlayer(), req, 0.5)
			So(res.Breakdown.Age, ShouldEqual, 0.0)
		})

		Convey("When the candidate falls inside the range", func() {
			req.AgeRange = &[2]int{25, 40}
			res := engine.Score(basePlayer(), req, 0.5)
			So(res.Breakdown.Age, ShouldEqual, 0.02)
		})

		Convey("When the candidate falls outside the range", func() {
			req.AgeRange = &[2]int{40, 50}
			res := engine.Score(basePlayer(), req, 0.5)
			So(res.Breakdown.Age, ShouldEqual, -0.02)
		})
	})

	Convey("Given extreme inputs the composite stays within bounds", t, func() {
		worst := model.Player{
			ID:             "worst",
			Elo:            100,
			Age:            99,
			Location:       model.Location{Lat: 60.0, Lon: 100.0},
			AcceptanceRate: 0,
			LastActiveDays: 999,
		}
		req := baseRequest()
		backhand := model.PositionBackhand
		req.PreferredPosition = &backhand
		req.AgeRange = &[2]int{20, 30}

		res := engine.Score(worst, req, 0)
		So(res.Score, ShouldBeGreaterThanOrEqualTo, 0.0)
		So(res.Score, ShouldBeLessThanOrEqualTo, 1.0)

		best := basePlayer()
		resBest := engine.Score(best, baseRequest(), 1.0)
		So(resBest.Score, ShouldBeLessThanOrEqualTo, 1.0)
	})
}

func TestRounding(t *testing.T) {
	Convey("Given a raw composite", t, func() {
		res := scoring.Result{Score: 0.93361}

		Convey("Then display rounding keeps three decimals", func() {
			So(res.Rounded(), ShouldEqual, 0.934)
		})

		Convey("Then the stored score stays unrounded", func() {
			So(res.Score, ShouldEqual, 0.93361)
		})
	})

	Convey("Given the Round helper", t, func() {
		So(scoring.Round(1.23456, 2), ShouldEqual, 1.23)
		So(scoring.Round(1.2351, 2), ShouldAlmostEqual, 1.24, 1e-9)
		So(math.IsNaN(scoring.Round(0, 3)), ShouldBeFalse)
	})
}
