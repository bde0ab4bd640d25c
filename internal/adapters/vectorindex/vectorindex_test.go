package vectorindex_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	vectorindex "github.com/padelhq/matchrank/internal/adapters/vectorindex"
	model "github.com/padelhq/matchrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func meta(name string, elo int, gender model.Gender, category model.Category) vectorindex.Metadata {
	return vectorindex.Metadata{
		Name:      name,
		Elo:       elo,
		Age:       30,
		Gender:    gender,
		Category:  category,
		Zone:      "Centro",
		Positions: []model.Position{model.PositionForehand},
	}
}

func TestMetadataValidate(t *testing.T) {
	Convey("Given index metadata", t, func() {
		Convey("Then a well-formed record validates", func() {
			So(meta("Ana", 1600, model.GenderFemale, model.CategorySixth).Validate(), ShouldBeNil)
		})

		Convey("Then non-positive ELO is rejected", func() {
			m := meta("Ana", 0, model.GenderFemale, model.CategorySixth)
			So(errors.Is(m.Validate(), vectorindex.ErrBadMetadata), ShouldBeTrue)
		})

		Convey("Then unknown enum values are rejected", func() {
			m := meta("Ana", 1600, "OTHER", model.CategorySixth)
			So(m.Validate(), ShouldNotBeNil)

			m = meta("Ana", 1600, model.GenderFemale, "TENTH")
			So(m.Validate(), ShouldNotBeNil)

			m = meta("Ana", 1600, model.GenderFemale, model.CategorySixth)
			m.Positions = []model.Position{"GOALIE"}
			So(m.Validate(), ShouldNotBeNil)
		})
	})
}

func TestMemoryIndex(t *testing.T) {
	Convey("Given an in-memory index with three players", t, func() {
		ctx := context.Background()
		idx := vectorindex.NewMemory()

		So(idx.Upsert(ctx, "a", []float64{1, 0, 0}, meta("A", 1500, model.GenderMale, model.CategorySixth)), ShouldBeNil)
		So(idx.Upsert(ctx, "b", []float64{0.9, 0.1, 0}, meta("B", 1600, model.GenderFemale, model.CategorySixth)), ShouldBeNil)
		So(idx.Upsert(ctx, "c", []float64{0, 1, 0}, meta("C", 1700, model.GenderMale, model.CategoryFifth)), ShouldBeNil)

		Convey("When querying without a filter", func() {
			matches, err := idx.Query(ctx, []float64{1, 0, 0}, vectorindex.Filter{}, 10)
			So(err, ShouldBeNil)

			Convey("Then matches come back ordered by similarity", func() {
				So(len(matches), ShouldEqual, 3)
				So(matches[0].ID, ShouldEqual, "a")
				So(matches[1].ID, ShouldEqual, "b")
				So(matches[0].Similarity, ShouldBeGreaterThanOrEqualTo, matches[1].Similarity)
			})

			Convey("Then similarities live in [0, 1]", func() {
				for _, m := range matches {
					So(m.Similarity, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When filtering by category", func() {
			matches, err := idx.Query(ctx, []float64{1, 0, 0}, vectorindex.Filter{
				Categories: []model.Category{model.CategoryFifth},
			}, 10)
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 1)
			So(matches[0].ID, ShouldEqual, "c")
		})

		Convey("When filtering by gender", func() {
			matches, err := idx.Query(ctx, []float64{1, 0, 0}, vectorindex.Filter{
				Gender: model.GenderFemale,
			}, 10)
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 1)
			So(matches[0].ID, ShouldEqual, "b")
		})

		Convey("When topK truncates", func() {
			matches, err := idx.Query(ctx, []float64{1, 0, 0}, vectorindex.Filter{}, 2)
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 2)
		})

		Convey("When a vector is deleted", func() {
			So(idx.Delete(ctx, "a"), ShouldBeNil)
			matches, err := idx.Query(ctx, []float64{1, 0, 0}, vectorindex.Filter{}, 10)
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 2)
			So(idx.Count(), ShouldEqual, 2)
		})

		Convey("When upserting invalid metadata", func() {
			err := idx.Upsert(ctx, "bad", []float64{1, 0, 0}, vectorindex.Metadata{})
			So(errors.Is(err, vectorindex.ErrBadMetadata), ShouldBeTrue)
		})
	})
}

func TestPineconeClient(t *testing.T) {
	Convey("Given a Pinecone-style server", t, func() {
		var gotPath string
		var gotAPIKey string
		var gotBody map[string]any
		status := http.StatusOK
		response := `{"matches":[{"id":"p1","score":0.91,"metadata":{"name":"Ana","elo":1600,"age":30,"gender":"FEMALE","category":"SIXTH","zone":"Centro","positions":["FOREHAND"]}}]}`

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAPIKey = r.Header.Get("Api-Key")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(status)
			fmt.Fprint(w, response)
		}))
		defer srv.Close()

		client := vectorindex.NewPinecone(srv.URL, "pc-key", vectorindex.WithNamespace("players"))

		Convey("When querying", func() {
			filter := vectorindex.Filter{
				Categories: []model.Category{model.CategorySixth, model.CategoryFifth},
				Gender:     model.GenderFemale,
			}
			matches, err := client.Query(context.Background(), []float64{0.1, 0.2}, filter, 50)
			So(err, ShouldBeNil)

			Convey("Then the hit is returned with typed metadata", func() {
				So(len(matches), ShouldEqual, 1)
				So(matches[0].ID, ShouldEqual, "p1")
				So(matches[0].Similarity, ShouldEqual, 0.91)
				So(matches[0].Metadata.Elo, ShouldEqual, 1600)
			})

			Convey("Then the request carries auth, namespace and the coarse filter", func() {
				So(gotPath, ShouldEqual, "/query")
				So(gotAPIKey, ShouldEqual, "pc-key")
				So(gotBody["namespace"], ShouldEqual, "players")
				So(gotBody["topK"], ShouldEqual, float64(50))

				f := gotBody["filter"].(map[string]any)
				So(f["category"].(map[string]any)["$in"], ShouldResemble, []any{"SIXTH", "FIFTH"})
				So(f["gender"].(map[string]any)["$eq"], ShouldEqual, "FEMALE")

				Convey("And no numeric range predicates are pushed down", func() {
					So(f, ShouldNotContainKey, "elo")
					So(f, ShouldNotContainKey, "age")
				})
			})
		})

		Convey("When the filter is empty no filter clause is sent", func() {
			_, err := client.Query(context.Background(), []float64{0.1}, vectorindex.Filter{}, 10)
			So(err, ShouldBeNil)
			So(gotBody, ShouldNotContainKey, "filter")
		})

		Convey("When a hit carries invalid metadata", func() {
			response = `{"matches":[{"id":"p2","score":0.5,"metadata":{"name":"X","elo":-5,"gender":"MALE","category":"SIXTH"}}]}`
			_, err := client.Query(context.Background(), []float64{0.1}, vectorindex.Filter{}, 10)
			So(errors.Is(err, vectorindex.ErrBadMetadata), ShouldBeTrue)
		})

		Convey("When upserting", func() {
			err := client.Upsert(context.Background(), "p9", []float64{0.3}, meta("New", 1500, model.GenderMale, model.CategorySixth))
			So(err, ShouldBeNil)
			So(gotPath, ShouldEqual, "/vectors/upsert")
		})

		Convey("When deleting", func() {
			err := client.Delete(context.Background(), "p9")
			So(err, ShouldBeNil)
			So(gotPath, ShouldEqual, "/vectors/delete")
			So(gotBody["ids"], ShouldResemble, []any{"p9"})
		})

		Convey("When the index is down", func() {
			status = http.StatusServiceUnavailable
			_, err := client.Query(context.Background(), []float64{0.1}, vectorindex.Filter{}, 10)
			So(errors.Is(err, vectorindex.ErrUnavailable), ShouldBeTrue)
		})
	})
}
