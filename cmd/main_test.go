package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/talent-trends/internal/adapters/http/api"
	app "github.com/okian/talent-trends/internal/app"
	"github.com/okian/talent-trends/internal/config"
	"github.com/okian/talent-trends/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainComponents(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("TREND_ADDR", ":8080")
			_ = os.Setenv("TREND_QUEUE_SIZE", "1000")
			_ = os.Setenv("TREND_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("TREND_ADDR")
				_ = os.Unsetenv("TREND_QUEUE_SIZE")
				_ = os.Unsetenv("TREND_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithHalfLife(time.Hour),
					app.WithWindowWidth(10*time.Minute),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc, 100)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then the metrics registry should be available", func() {
				convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing the system metrics updater", func() {
			convey.Convey("Then a single update should not panic", func() {
				updateSystemMetrics()
			})
		})
	})
}
