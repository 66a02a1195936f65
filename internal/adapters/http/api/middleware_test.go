package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/typerank/internal/adapters/http/api"
	"github.com/okian/typerank/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

// counterValue sums a counter family on the service registry.
func counterValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestBasicAuth(t *testing.T) {
	Convey("Given a plaintext credential", t, func() {
		auth := api.NewBasicAuth("admin", api.WithPassword("secret"))

		So(auth.Check("admin", "secret"), ShouldBeTrue)
		So(auth.Check("admin", "Secret"), ShouldBeFalse)
		So(auth.Check("root", "secret"), ShouldBeFalse)
		So(auth.Check("", ""), ShouldBeFalse)
	})

	Convey("Given a bcrypt credential", t, func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		So(err, ShouldBeNil)
		auth := api.NewBasicAuth("admin", api.WithPasswordHash(string(hash)), api.WithPassword("ignored"))

		Convey("Then the hash should take precedence", func() {
			So(auth.Check("admin", "s3cret"), ShouldBeTrue)
			So(auth.Check("admin", "ignored"), ShouldBeFalse)
		})
	})

	Convey("Given no password at all", t, func() {
		auth := api.NewBasicAuth("admin")

		Convey("Then every attempt should fail", func() {
			So(auth.Check("admin", ""), ShouldBeFalse)
		})
	})

	Convey("Given a wrapped handler", t, func() {
		auth := api.NewBasicAuth("admin", api.WithPassword("secret"))
		h := auth.Wrap(okHandler)
		before := counterValue("typerank_leaderboard_auth_failures_total")

		Convey("When the request has no credentials", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			Convey("Then a challenge should be issued and counted", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(w.Header().Get("WWW-Authenticate"), ShouldStartWith, `Basic realm="admin"`)
				So(counterValue("typerank_leaderboard_auth_failures_total"), ShouldEqual, before+1)
			})
		})

		Convey("When the request has valid credentials", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.SetBasicAuth("admin", "secret")
			w := httptest.NewRecorder()
			h(w, req)

			Convey("Then the handler should run", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
			})
		})
	})
}

func TestRateLimiter(t *testing.T) {
	Convey("Given a limiter of 1 per second with burst 2", t, func() {
		now := time.Unix(1_700_000_000, 0)
		clock := func() time.Time { return now }
		rl := api.NewRateLimiter(1, 2, api.WithClock(clock), api.WithIdleTimeout(time.Minute))

		Convey("Then a client should get its burst and then be refused", func() {
			So(rl.Allow("1.2.3.4"), ShouldBeTrue)
			So(rl.Allow("1.2.3.4"), ShouldBeTrue)
			So(rl.Allow("1.2.3.4"), ShouldBeFalse)

			Convey("And other clients should be unaffected", func() {
				So(rl.Allow("5.6.7.8"), ShouldBeTrue)
			})

			Convey("And tokens should refill over time", func() {
				now = now.Add(time.Second)
				So(rl.Allow("1.2.3.4"), ShouldBeTrue)
			})
		})

		Convey("When clients go idle", func() {
			rl.Allow("a")
			now = now.Add(2 * time.Minute)
			rl.Allow("b")

			Convey("Then Sweep should drop only the idle ones", func() {
				So(rl.Len(), ShouldEqual, 2)
				So(rl.Sweep(), ShouldEqual, 1)
				So(rl.Len(), ShouldEqual, 1)
			})
		})

		Convey("When wrapping a handler", func() {
			h := rl.Wrap(okHandler)
			codes := make([]int, 0, 3)
			for i := 0; i < 3; i++ {
				req := httptest.NewRequest(http.MethodPost, "/score", nil)
				req.RemoteAddr = "9.9.9.9:1234"
				w := httptest.NewRecorder()
				h(w, req)
				codes = append(codes, w.Code)
			}

			Convey("Then the third request should be 429", func() {
				So(codes, ShouldResemble, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests})
			})
		})

		Convey("When Run is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				rl.Run(ctx, time.Millisecond)
				close(done)
			}()
			cancel()

			Convey("Then it should return", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					So("Run did not stop", ShouldBeEmpty)
				}
			})
		})
	})

	Convey("Given a limiter trusting X-Forwarded-For", t, func() {
		rl := api.NewRateLimiter(1, 1, api.WithTrustForwardedFor(true))
		h := rl.Wrap(okHandler)

		send := func(xff string) int {
			req := httptest.NewRequest(http.MethodPost, "/score", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			req.Header.Set("X-Forwarded-For", xff)
			w := httptest.NewRecorder()
			h(w, req)
			return w.Code
		}

		Convey("Then clients behind the same proxy should be limited separately", func() {
			So(send("1.1.1.1"), ShouldEqual, http.StatusNoContent)
			So(send("2.2.2.2, 10.0.0.1"), ShouldEqual, http.StatusNoContent)
			So(send("1.1.1.1"), ShouldEqual, http.StatusTooManyRequests)
		})
	})
}

func TestClientIP(t *testing.T) {
	Convey("Given a request remote address", t, func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "[::1]:8080"
		So(api.ClientIP(req), ShouldEqual, "::1")

		req.RemoteAddr = "no-port"
		So(api.ClientIP(req), ShouldEqual, "no-port")
	})
}
