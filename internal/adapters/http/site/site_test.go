package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		Convey("When registering the site handler", func() {
			Register(ctx, mux)

			Convey("Then it should serve the game page at /", func() {
				req := httptest.NewRequest("GET", "/", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "/static/game.js")
			})

			Convey("And it should serve assets under /static/", func() {
				req := httptest.NewRequest("GET", "/static/game.js", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "/score")
			})

			Convey("And it should serve the admin page", func() {
				req := httptest.NewRequest("GET", "/admin", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "/static/admin.js")
			})

			Convey("And it should not handle unknown paths", func() {
				req := httptest.NewRequest("GET", "/some-asset", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSiteAdminGuard(t *testing.T) {
	Convey("Given a guard that rejects everything", t, func() {
		mux := http.NewServeMux()
		deny := func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			})
		}
		Register(context.Background(), mux, WithAdminGuard(deny))

		Convey("Then the admin page should be guarded", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("And the game page should stay public", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("Then registering should panic", func() {
			So(func() { Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
