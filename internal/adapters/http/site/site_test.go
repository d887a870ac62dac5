package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		ctx := context.Background()
		router := chi.NewRouter()

		Convey("When registering the site handler", func() {
			Register(ctx, router)

			Convey("Then it should serve the landing page at /", func() {
				req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "/report")
			})

			Convey("Then /index.html should redirect to /", func() {
				req := httptest.NewRequest(http.MethodGet, "/index.html", http.NoBody)
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusMovedPermanently)
				So(w.Header().Get("Location"), ShouldEqual, "/")
			})
		})

		Convey("When registering with a nil router", func() {
			Convey("Then it should panic", func() {
				So(func() { Register(ctx, nil) }, ShouldPanic)
			})
		})
	})

	Convey("Given the embedded file system", t, func() {
		Convey("Then index.html should be present", func() {
			f, err := FS().Open("index.html")
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)
		})
	})
}
