package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/typerank/internal/adapters/http/api"
	"github.com/okian/typerank/internal/adapters/repository"
	service "github.com/okian/typerank/internal/app"
	"github.com/okian/typerank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func newTestServer(tiers ...string) *httptest.Server {
	svc := service.New(
		service.WithStore(repository.NewMemoryStore(), repository.BackendMemory),
		service.WithTiers(tiers...),
	)
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		Players:     8,
		Submissions: 200,
		Workers:     4,
		MaxScore:    100,
		Timeout:     5 * time.Second,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a tiered service", t, func() {
		srv := newTestServer("easy", "medium", "hard")
		Reset(srv.Close)
		cfg := testConfig(srv.URL)

		Convey("When a load run completes", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every submission should be accepted and verified", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, cfg.Submissions)
				So(stats.Accepted, ShouldEqual, cfg.Submissions)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.TiersChecked, ShouldEqual, 3)
				So(stats.PlayersVerified, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When an output file is requested", func() {
			cfg.OutputFile = filepath.Join(t.TempDir(), "out", "subs.json")
			_, err := Run(context.Background(), cfg)
			So(err, ShouldBeNil)

			Convey("Then the submissions should be written as JSON", func() {
				data, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var subs []Submission
				So(json.Unmarshal(data, &subs), ShouldBeNil)
				So(len(subs), ShouldEqual, cfg.Submissions)
			})
		})
	})

	Convey("Given an untiered service", t, func() {
		srv := newTestServer()
		Reset(srv.Close)

		Convey("When a load run completes", func() {
			stats, err := Run(context.Background(), testConfig(srv.URL))

			Convey("Then the single board should verify", func() {
				So(err, ShouldBeNil)
				So(stats.TiersChecked, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a service that reports unhealthy", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		Reset(srv.Close)

		Convey("Then Run should fail the health check", func() {
			_, err := Run(context.Background(), testConfig(srv.URL))
			So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
		})
	})

	Convey("Given invalid run parameters", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.Workers = 0

		Convey("Then Run should reject them", func() {
			_, err := Run(context.Background(), cfg)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestVerifyBoards(t *testing.T) {
	Convey("Given expected best scores", t, func() {
		expected := map[playerKey]float64{
			{"easy", "alice"}: 50,
			{"easy", "bob"}:   40,
		}

		Convey("When the board matches", func() {
			boards := map[string][]Entry{"easy": {{"alice", 50}, {"bob", 40}, {"carol", 10}}}
			n, err := verifyBoards(boards, expected)

			Convey("Then both players should verify", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When a score differs", func() {
			boards := map[string][]Entry{"easy": {{"alice", 50}, {"bob", 30}}}
			n, err := verifyBoards(boards, expected)

			Convey("Then verification should fail naming the player", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "bob has 30, want 40")
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When a player is missing", func() {
			boards := map[string][]Entry{"easy": {{"alice", 50}}}
			_, err := verifyBoards(boards, expected)
			So(err.Error(), ShouldContainSubstring, "bob missing")
		})

		Convey("When the board is out of order", func() {
			boards := map[string][]Entry{"easy": {{"bob", 40}, {"alice", 50}}}
			_, err := verifyBoards(boards, expected)
			So(strings.Contains(err.Error(), "not sorted"), ShouldBeTrue)
		})
	})
}

func TestGenerateSubmissions(t *testing.T) {
	Convey("Given generated players", t, func() {
		players := generatePlayers(5)
		seen := make(map[string]bool)
		for _, p := range players {
			seen[p] = true
		}
		So(len(seen), ShouldEqual, 5)

		Convey("When submissions are generated across tiers", func() {
			cfg := &Config{Submissions: 100, MaxScore: 10}
			subs := generateSubmissions(context.Background(), cfg, players, []string{"easy", "hard"})

			Convey("Then every submission should stay in range", func() {
				So(len(subs), ShouldEqual, 100)
				for _, s := range subs {
					So(seen[s.Name], ShouldBeTrue)
					So(s.Tier, ShouldBeIn, "easy", "hard")
					So(s.Score, ShouldBeBetweenOrEqual, 0.0, 10.0)
				}
			})
		})

		Convey("When no tiers are given", func() {
			subs := generateSubmissions(context.Background(), &Config{Submissions: 3}, players, nil)
			for _, s := range subs {
				So(s.Tier, ShouldBeEmpty)
				So(s.Score, ShouldEqual, 0)
			}
		})
	})
}
