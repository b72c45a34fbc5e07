package smoke_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mergington/activities/internal/adapters/http/api"
	repository "github.com/mergington/activities/internal/adapters/repository"
	service "github.com/mergington/activities/internal/app"
	"github.com/mergington/activities/internal/smoke"
	"github.com/mergington/activities/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newMux(t *testing.T, opts ...repository.Option) (*http.ServeMux, *repository.InMemoryStore) {
	store, err := repository.NewInMemoryStore(context.Background(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(store)
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return mux, store
}

func newService(t *testing.T, opts ...repository.Option) (*httptest.Server, *repository.InMemoryStore) {
	mux, store := newMux(t, opts...)
	return httptest.NewServer(mux), store
}

func rosterSize(store *repository.InMemoryStore, name string) int {
	a, err := store.Get(context.Background(), name)
	So(err, ShouldBeNil)
	return len(a.Participants)
}

func config(url string) *smoke.Config {
	return &smoke.Config{
		BaseURL:  url,
		Students: 20,
		Workers:  4,
		Timeout:  5 * time.Second,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running activities service", t, func() {
		srv, store := newService(t)
		defer srv.Close()

		Convey("When running the smoke test without a named activity", func() {
			stats, err := smoke.Run(context.Background(), config(srv.URL))

			Convey("Then it should pick the first activity with room and restore its roster", func() {
				So(err, ShouldBeNil)
				// Art Studio, Basketball Team, Chess Club and Debate Team have fewer than 20 spots.
				So(stats.Activity, ShouldEqual, "Drama Club")
				So(stats.SignupsSucceeded, ShouldEqual, 20)
				So(stats.SignupsFailed, ShouldEqual, 0)
				So(stats.UnregistersSucceed, ShouldEqual, 20)
				So(stats.ChecksPassed, ShouldEqual, 7)
				So(stats.CleanupRemoved, ShouldEqual, 0)
				So(rosterSize(store, "Drama Club"), ShouldEqual, stats.BaselineCount)
			})
		})

		Convey("When targeting a named activity", func() {
			cfg := config(srv.URL)
			cfg.Activity = "Chess Club"
			cfg.Students = 5
			stats, err := smoke.Run(context.Background(), cfg)

			Convey("Then it should exercise that activity", func() {
				So(err, ShouldBeNil)
				So(stats.Activity, ShouldEqual, "Chess Club")
				So(stats.BaselineCount, ShouldEqual, 2)
			})
		})

		Convey("When targeting an unknown activity", func() {
			cfg := config(srv.URL)
			cfg.Activity = "Underwater Basket Weaving"
			_, err := smoke.Run(context.Background(), cfg)

			Convey("Then it should fail the listing check", func() {
				So(errors.Is(err, smoke.ErrCheckFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "activity listing failed")
			})
		})

		Convey("When a named activity lacks room for every student", func() {
			cfg := config(srv.URL)
			cfg.Activity = "Chess Club"
			stats, err := smoke.Run(context.Background(), cfg)

			Convey("Then it should fail before signing anyone up", func() {
				So(errors.Is(err, smoke.ErrCheckFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "spots left")
				So(stats.SignupsSubmitted, ShouldEqual, 0)
				So(rosterSize(store, "Chess Club"), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a service with capacity enforcement", t, func() {
		srv, store := newService(t, repository.WithCapacityEnforcement(true))
		defer srv.Close()

		Convey("When running with the default student count", func() {
			cfg := config(srv.URL)
			cfg.Students = smoke.DefaultStudents
			stats, err := smoke.Run(context.Background(), cfg)

			Convey("Then it should pick an activity that fits and pass", func() {
				So(err, ShouldBeNil)
				So(stats.Activity, ShouldEqual, "Gym Class")
				So(stats.SignupsFailed, ShouldEqual, 0)
				So(rosterSize(store, "Gym Class"), ShouldEqual, stats.BaselineCount)
			})
		})
	})

	Convey("Given a service that accepts signups for unknown activities", t, func() {
		mux, store := newMux(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/activities/Unknown Activity") {
				_, _ = w.Write([]byte(`{"message":"ok"}`))
				return
			}
			mux.ServeHTTP(w, r)
		}))
		defer srv.Close()

		Convey("When the run fails after the signups went out", func() {
			stats, err := smoke.Run(context.Background(), config(srv.URL))

			Convey("Then the generated students should be removed again", func() {
				So(errors.Is(err, smoke.ErrCheckFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "unknown activity verification failed")
				So(stats.SignupsSucceeded, ShouldEqual, 20)
				So(stats.CleanupRemoved, ShouldEqual, 20)
				So(rosterSize(store, stats.Activity), ShouldEqual, stats.BaselineCount)
			})
		})
	})

	Convey("Given a service that drops every signup", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		mux.HandleFunc("GET /activities", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Chess Club":{"description":"","schedule":"","max_participants":50,"participants":[]}}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("Then the signup count check should fail", func() {
			_, err := smoke.Run(context.Background(), config(srv.URL))
			So(errors.Is(err, smoke.ErrCheckFailed), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "signup verification failed")
		})
	})

	Convey("Given no reachable service", t, func() {
		srv, _ := newService(t)
		url := srv.URL
		srv.Close()

		Convey("Then the health check should fail", func() {
			_, err := smoke.Run(context.Background(), config(url))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "service health check failed")
		})
	})

	Convey("Given a non-positive student count", t, func() {
		cfg := config("http://127.0.0.1:0")
		cfg.Students = 0

		Convey("Then Run should refuse to start", func() {
			_, err := smoke.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
