package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/hireloop/hireloop/internal/adapters/http/api"
	app "github.com/hireloop/hireloop/internal/app"
	"github.com/hireloop/hireloop/internal/config"
	"github.com/hireloop/hireloop/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("HIRELOOP_ADDR", ":8080")
			_ = os.Setenv("HIRELOOP_JOURNAL_SIZE", "1024")
			defer func() {
				_ = os.Unsetenv("HIRELOOP_ADDR")
				_ = os.Unsetenv("HIRELOOP_JOURNAL_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.JournalSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And HTTP server should be creatable over it", func() {
				svc := app.New()
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				convey.So(func() { server.Register(mux) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("HIRELOOP_ADDR", "")
			defer func() { _ = os.Unsetenv("HIRELOOP_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service startup without an authority", func() {
			convey.Convey("Then Start should refuse to run", func() {
				svc := app.New()
				err := svc.Start(context.Background())
				convey.So(err, convey.ShouldWrap, app.ErrNoAuthority)
			})
		})
	})
}
