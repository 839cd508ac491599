package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/healthwatch/inference/internal/config"
	"github.com/healthwatch/inference/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.ModelPath = t.TempDir()
	cfg.BatchWorkers = 2
	return cfg
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a fully wired application", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := testConfig(t)
		svc, err := newService(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(newHandler(ctx, cfg, svc))
		defer ts.Close()

		convey.Convey("When predicting through the HTTP surface", func() {
			resp, err := http.Post(ts.URL+"/api/v1/predict", "application/json",
				strings.NewReader(`{"age":70,"bmi":32,"blood_pressure":145}`))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			var body map[string]any
			convey.So(json.NewDecoder(resp.Body).Decode(&body), convey.ShouldBeNil)

			convey.Convey("Then the assessment should be critical", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(body["risk_level"], convey.ShouldEqual, "critical")
				convey.So(body["risk_score"], convey.ShouldEqual, 0.86)
				convey.So(body["confidence"], convey.ShouldEqual, 0.85)
				convey.So(resp.Header.Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the model artifact is absent", func() {
			resp, err := http.Get(ts.URL + "/api/v1/ready")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then the service should still be ready", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(svc.ModelLoaded(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When scraping metrics", func() {
			resp, err := http.Get(ts.URL + "/metrics")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then the endpoint should be served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When fetching the API documentation", func() {
			resp, err := http.Get(ts.URL + "/api-docs")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then ReDoc should be served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})
	})

	convey.Convey("Given metrics are disabled", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.EnableMetrics = false

		svc, err := newService(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(newHandler(ctx, cfg, svc))
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/metrics")
		convey.So(err, convey.ShouldBeNil)
		defer resp.Body.Close()

		convey.Convey("Then /metrics should not be mounted", func() {
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
		})
	})

	convey.Convey("Given a model artifact on disk", t, func() {
		cfg := testConfig(t)
		path := filepath.Join(cfg.ModelPath, cfg.ModelName)
		convey.So(os.WriteFile(path, []byte("weights"), 0o600), convey.ShouldBeNil)

		svc, err := newService(context.Background(), cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the service should report it loaded", func() {
			convey.So(svc.ModelLoaded(), convey.ShouldBeTrue)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})

	convey.Convey("Given a model path that is a directory", t, func() {
		cfg := testConfig(t)
		convey.So(os.Mkdir(filepath.Join(cfg.ModelPath, cfg.ModelName), 0o750), convey.ShouldBeNil)

		_, err := newService(context.Background(), cfg, logger.Nop())

		convey.Convey("Then startup should fail", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		convey.Convey("When the context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then the system updater should return", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating system metrics directly", func() {
			convey.Convey("Then it should not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})
	})
}
