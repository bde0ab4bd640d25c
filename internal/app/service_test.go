package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/padelhq/matchrank/internal/adapters/embedding"
	"github.com/padelhq/matchrank/internal/adapters/metricstore"
	"github.com/padelhq/matchrank/internal/adapters/vectorindex"
	service "github.com/padelhq/matchrank/internal/app"
	"github.com/padelhq/matchrank/internal/domain/matching"
	"github.com/padelhq/matchrank/internal/domain/model"
	"github.com/padelhq/matchrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fixture struct {
	svc      *service.Service
	provider *embedding.InMemory
	index    *vectorindex.Memory
	store    *metricstore.Memory
}

func newFixture(ctx context.Context, opts ...service.Option) *fixture {
	_ = logger.Init()
	f := &fixture{
		provider: embedding.NewInMemory(),
		index:    vectorindex.NewMemory(),
		store:    metricstore.NewMemory(),
	}
	all := append([]service.Option{
		service.WithEmbeddingProvider(f.provider),
		service.WithVectorIndex(f.index),
		service.WithMetricStore(f.store),
	}, opts...)
	f.svc = service.New(all...)
	_ = f.svc.Start(ctx)
	return f
}

// seed registers a player in both the index and the metrics store.
func (f *fixture) seed(ctx context.Context, p model.Player) {
	vec, err := f.provider.Embed(ctx, matching.DescribePlayer(p))
	So(err, ShouldBeNil)
	So(f.index.Upsert(ctx, p.ID, vec, vectorindex.Metadata{
		Name:      p.Name,
		Elo:       p.Elo,
		Age:       p.Age,
		Gender:    p.Gender,
		Category:  p.Category,
		Zone:      p.Location.Zone,
		Positions: p.Positions,
	}), ShouldBeNil)
	f.store.Put(p.ID, model.PlayerMetrics{
		AcceptanceRate: p.AcceptanceRate,
		LastActiveDays: p.LastActiveDays,
		Location:       p.Location,
		Availability:   p.Availability,
	})
}

// seedIndexOnly registers a player in the index without a metrics row.
func (f *fixture) seedIndexOnly(ctx context.Context, p model.Player) {
	vec, err := f.provider.Embed(ctx, matching.DescribePlayer(p))
	So(err, ShouldBeNil)
	So(f.index.Upsert(ctx, p.ID, vec, vectorindex.Metadata{
		Name:      p.Name,
		Elo:       p.Elo,
		Age:       p.Age,
		Gender:    p.Gender,
		Category:  p.Category,
		Zone:      p.Location.Zone,
		Positions: p.Positions,
	}), ShouldBeNil)
}

func player(id string, elo, age int, gender model.Gender) model.Player {
	return model.Player{
		ID:       id,
		Name:     "Player " + id,
		Elo:      elo,
		Age:      age,
		Gender:   gender,
		Category: model.CategorySixth,
		Positions: []model.Position{
			model.PositionForehand,
		},
		Location: model.Location{
			Lat:  -31.42647,
			Lon:  -64.18722,
			Zone: "Nueva Córdoba",
		},
		Availability: []model.TimeSlot{
			{Start: "18:00", End: "22:00"},
		},
		AcceptanceRate: 0.8,
		LastActiveDays: 2,
	}
}

func request() model.MatchRequest {
	return model.MatchRequest{
		MatchID:          "match-1",
		Categories:       []model.Category{model.CategorySixth},
		EloRange:         [2]int{1400, 1800},
		GenderPreference: model.PreferMale,
		RequiredPlayers:  2,
		Location: model.Location{
			Lat:  -31.42647,
			Lon:  -64.18722,
			Zone: "Nueva Córdoba",
		},
		MatchTime:    "19:00",
		RequiredTime: 90,
	}
}

func TestFindCandidates(t *testing.T) {
	Convey("Given a service seeded with compatible players", t, func() {
		ctx := context.Background()
		f := newFixture(ctx)

		f.seed(ctx, player("p1", 1600, 30, model.GenderMale))
		f.seed(ctx, player("p2", 1550, 28, model.GenderMale))
		f.seed(ctx, player("p3", 1700, 35, model.GenderMale))

		Convey("When searching for candidates", func() {
			candidates, err := f.svc.FindCandidates(ctx, request())

			Convey("Then it should return a ranked list", func() {
				So(err, ShouldBeNil)
				So(len(candidates), ShouldEqual, 3)
				for i := 1; i < len(candidates); i++ {
					So(candidates[i-1].Score, ShouldBeGreaterThanOrEqualTo, candidates[i].Score)
				}
			})

			Convey("Then every candidate carries a populated payload", func() {
				So(err, ShouldBeNil)
				for _, c := range candidates {
					So(c.PlayerID, ShouldNotBeEmpty)
					So(c.PlayerName, ShouldNotBeEmpty)
					So(c.Score, ShouldBeBetweenOrEqual, 0, 1)
					So(c.InvitationMessage, ShouldNotBeEmpty)
					So(c.CompatibilitySummary, ShouldNotBeEmpty)
				}
			})
		})

		Convey("When a player falls outside the ELO range", func() {
			f.seed(ctx, player("p4", 2100, 30, model.GenderMale))

			candidates, err := f.svc.FindCandidates(ctx, request())

			Convey("Then that player is excluded", func() {
				So(err, ShouldBeNil)
				for _, c := range candidates {
					So(c.PlayerID, ShouldNotEqual, "p4")
				}
			})
		})

		Convey("When an age range is requested", func() {
			req := request()
			req.AgeRange = &[2]int{25, 32}

			candidates, err := f.svc.FindCandidates(ctx, req)

			Convey("Then players outside the range are excluded", func() {
				So(err, ShouldBeNil)
				for _, c := range candidates {
					So(c.PlayerID, ShouldNotEqual, "p3")
				}
			})
		})

		Convey("When the request is invalid", func() {
			req := request()
			req.EloRange = [2]int{1800, 1400}

			candidates, err := f.svc.FindCandidates(ctx, req)

			Convey("Then it should fail validation", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, model.ErrInvalidRequest), ShouldBeTrue)
				So(candidates, ShouldBeNil)
			})
		})
	})

	Convey("Given a service with no compatible players", t, func() {
		ctx := context.Background()
		f := newFixture(ctx)

		f.seed(ctx, player("p1", 900, 30, model.GenderMale))

		Convey("When searching with a disjoint ELO range", func() {
			candidates, err := f.svc.FindCandidates(ctx, request())

			Convey("Then it should report no candidates", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, matching.ErrNoCandidates), ShouldBeTrue)
				So(candidates, ShouldBeNil)
			})
		})

		Convey("When the index is empty", func() {
			empty := newFixture(ctx)

			candidates, err := empty.svc.FindCandidates(ctx, request())

			Convey("Then it should report no candidates", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, matching.ErrNoCandidates), ShouldBeTrue)
				So(candidates, ShouldBeNil)
			})
		})
	})

	Convey("Given a player missing from the metrics store", t, func() {
		ctx := context.Background()
		f := newFixture(ctx)

		p := player("p1", 1600, 30, model.GenderMale)
		f.seedIndexOnly(ctx, p)

		Convey("When searching for candidates", func() {
			candidates, err := f.svc.FindCandidates(ctx, request())

			Convey("Then the neutral defaults are applied", func() {
				So(err, ShouldBeNil)
				So(len(candidates), ShouldEqual, 1)
				So(candidates[0].AcceptanceRate, ShouldEqual, 0.5)
			})
		})
	})

	Convey("Given a gender preference", t, func() {
		ctx := context.Background()
		f := newFixture(ctx)

		f.seed(ctx, player("m1", 1600, 30, model.GenderMale))
		f.seed(ctx, player("f1", 1600, 30, model.GenderFemale))

		Convey("When the request prefers female players", func() {
			req := request()
			req.GenderPreference = model.PreferFemale

			candidates, err := f.svc.FindCandidates(ctx, req)

			Convey("Then only female players are returned", func() {
				So(err, ShouldBeNil)
				So(len(candidates), ShouldEqual, 1)
				So(candidates[0].PlayerID, ShouldEqual, "f1")
			})
		})

		Convey("When the request prefers a mixed match", func() {
			req := request()
			req.GenderPreference = model.PreferMixed

			candidates, err := f.svc.FindCandidates(ctx, req)

			Convey("Then both genders are returned", func() {
				So(err, ShouldBeNil)
				So(len(candidates), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a configured result limit", t, func() {
		ctx := context.Background()
		f := newFixture(ctx, service.WithResultLimit(2))

		f.seed(ctx, player("p1", 1600, 30, model.GenderMale))
		f.seed(ctx, player("p2", 1550, 28, model.GenderMale))
		f.seed(ctx, player("p3", 1700, 35, model.GenderMale))

		Convey("When searching for candidates", func() {
			candidates, err := f.svc.FindCandidates(ctx, request())

			Convey("Then the list is truncated to the limit", func() {
				So(err, ShouldBeNil)
				So(len(candidates), ShouldEqual, 2)
			})
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		_ = logger.Init()

		Convey("When started without collaborators", func() {
			svc := service.New()
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it should fall back to in-memory collaborators", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["provider"], ShouldEqual, "inmemory")
				So(stats["index"], ShouldEqual, "memory")
				So(stats["store"], ShouldEqual, "memory")
			})
		})

		Convey("When started twice", func() {
			svc := service.New()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
		})

		Convey("When stats are read before start", func() {
			svc := service.New(service.WithTopK(75), service.WithScoreWorkers(4))
			stats := svc.GetStats()

			Convey("Then configuration is reported without collaborators", func() {
				So(stats["started"], ShouldBeFalse)
				So(stats["topK"], ShouldEqual, 75)
				So(stats["scoreWorkers"], ShouldEqual, 4)
			})
		})
	})
}

type failingStore struct{}

func (failingStore) BatchGet(context.Context, []string) (map[string]model.PlayerMetrics, error) {
	return nil, metricstore.ErrUnavailable
}

func (failingStore) Name() string { return "failing" }

func TestPipelineFailures(t *testing.T) {
	Convey("Given a metrics store outage", t, func() {
		ctx := context.Background()
		f := newFixture(ctx, service.WithMetricStore(failingStore{}))

		f.seedIndexOnly(ctx, player("p1", 1600, 30, model.GenderMale))

		Convey("When searching for candidates", func() {
			candidates, err := f.svc.FindCandidates(ctx, request())

			Convey("Then it should surface a database error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, service.ErrDatabase), ShouldBeTrue)
				So(candidates, ShouldBeNil)
			})
		})
	})
}
