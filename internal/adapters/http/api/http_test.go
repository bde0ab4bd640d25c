package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/padelhq/matchrank/internal/adapters/http/api"
	service "github.com/padelhq/matchrank/internal/app"
	"github.com/padelhq/matchrank/internal/domain/matching"
	"github.com/padelhq/matchrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type stubDeps struct {
	candidates []model.Candidate
	err        error
}

func (s *stubDeps) FindCandidates(_ context.Context, _ model.MatchRequest) ([]model.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"started":  true,
		"provider": "inmemory",
		"index":    "memory",
		"store":    "memory",
	}
}

func newTestServer(deps *stubDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func requestBody() string {
	return `{
		"match_id": "match-1",
		"categories": ["SIXTH"],
		"elo_range": [1400, 1800],
		"gender_preference": "MALE",
		"required_players": 2,
		"location": {"lat": -31.42647, "lon": -64.18722, "zone": "Nueva Córdoba"},
		"match_time": "19:00",
		"required_time": 90
	}`
}

func TestHandleFindCandidates(t *testing.T) {
	Convey("Given the candidates endpoint", t, func() {
		Convey("When the pipeline finds candidates", func() {
			deps := &stubDeps{candidates: []model.Candidate{
				{PlayerID: "p1", PlayerName: "Player p1", Score: 0.934},
				{PlayerID: "p2", PlayerName: "Player p2", Score: 0.871},
			}}
			srv := newTestServer(deps)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/candidates", "application/json", strings.NewReader(requestBody()))
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should return the ranked list", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body struct {
					MatchID    string            `json:"match_id"`
					Candidates []model.Candidate `json:"candidates"`
					Total      int               `json:"total_candidates"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.MatchID, ShouldEqual, "match-1")
				So(body.Total, ShouldEqual, 2)
				So(body.Candidates[0].PlayerID, ShouldEqual, "p1")
			})
		})

		Convey("When the request body is not JSON", func() {
			srv := newTestServer(&stubDeps{})
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/candidates", "application/json", strings.NewReader("{not json"))
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(errorCode(resp), ShouldEqual, "bad_request")
			})
		})

		Convey("When pipeline errors map onto status codes", func() {
			cases := []struct {
				err    error
				status int
				code   string
			}{
				{fmt.Errorf("%w: elo_range min must be positive", model.ErrInvalidRequest), http.StatusBadRequest, "bad_request"},
				{fmt.Errorf("%w: match match-1", matching.ErrNoCandidates), http.StatusNotFound, "no_candidates"},
				{fmt.Errorf("%w: timeout", service.ErrEncoding), http.StatusServiceUnavailable, "encoding_unavailable"},
				{fmt.Errorf("%w: index down", service.ErrRetrieval), http.StatusServiceUnavailable, "retrieval_unavailable"},
				{fmt.Errorf("%w: connection refused", service.ErrDatabase), http.StatusServiceUnavailable, "database_unavailable"},
				{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
			}

			for _, tc := range cases {
				srv := newTestServer(&stubDeps{err: tc.err})

				resp, err := http.Post(srv.URL+"/candidates", "application/json", strings.NewReader(requestBody()))
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, tc.status)
				So(errorCode(resp), ShouldEqual, tc.code)
				_ = resp.Body.Close()
				srv.Close()
			}
		})

		Convey("When the method is not POST", func() {
			srv := newTestServer(&stubDeps{})
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/candidates")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should return 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleStats(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		srv := newTestServer(&stubDeps{})
		defer srv.Close()

		Convey("When requesting stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should return the provider snapshot", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body map[string]interface{}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["started"], ShouldBeTrue)
			})
		})
	})
}

func TestHandleHealth(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		srv := newTestServer(&stubDeps{})
		defer srv.Close()

		Convey("When requesting health", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should report ok and the active collaborators", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body struct {
					Status     string            `json:"status"`
					Components map[string]string `json:"components"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Status, ShouldEqual, "ok")
				So(body.Components["provider"], ShouldEqual, "inmemory")
				So(body.Components["index"], ShouldEqual, "memory")
			})
		})
	})
}

func TestMetricsEndpoint(t *testing.T) {
	Convey("Given the metrics endpoint", t, func() {
		srv := newTestServer(&stubDeps{})
		defer srv.Close()

		Convey("When scraping metrics", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then it should serve the registry", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func errorCode(resp *http.Response) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return body.Code
}
