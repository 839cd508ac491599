package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/healthwatch/inference/internal/adapters/http/api"
	service "github.com/healthwatch/inference/internal/app"
	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/healthwatch/inference/internal/domain/scoring"
	"github.com/healthwatch/inference/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		panic(err)
	}
	logger.SetLevel(slog.LevelWarn)
}

func newInferenceServer(svc *service.Service) *httptest.Server {
	server := api.NewServer(svc, svc, "/api/v1")
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return httptest.NewServer(server.Handler(mux))
}

func TestGenerateSample(t *testing.T) {
	Convey("Given generated samples", t, func() {
		samples, err := generateSamples(context.Background(), 500)

		Convey("Then every sample should be within bounds with a unique ID", func() {
			So(err, ShouldBeNil)
			So(len(samples), ShouldEqual, 500)
			seen := make(map[string]bool, len(samples))
			for _, s := range samples {
				_, merr := model.NewMetrics(s.Age, s.BMI, s.BloodPressure)
				So(merr, ShouldBeNil)
				So(seen[s.PatientID], ShouldBeFalse)
				seen[s.PatientID] = true
			}
		})
	})

	Convey("Given a canceled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := generateSamples(ctx, 10)

		Convey("Then generation should stop", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestChunk(t *testing.T) {
	Convey("Given seven samples", t, func() {
		samples := make([]Sample, 7)

		Convey("Then chunks should cover all samples in order", func() {
			groups := chunk(samples, 3)
			So(len(groups), ShouldEqual, 3)
			So(len(groups[0]), ShouldEqual, 3)
			So(len(groups[2]), ShouldEqual, 1)
			So(len(chunk(samples, 0)), ShouldEqual, 7)
		})
	})
}

func TestRunParity(t *testing.T) {
	Convey("Given a running inference service", t, func() {
		svc := service.New(service.WithMaxBatchSize(25), service.WithLogger(logger.Nop()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ts := newInferenceServer(svc)
		defer ts.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When sending single predictions", func() {
			out := filepath.Join(t.TempDir(), "results.json")
			stats, err := Run(ctx, &Config{
				BaseURL:     ts.URL,
				NumRequests: 60,
				Workers:     4,
				Timeout:     5 * time.Second,
				OutputFile:  out,
			}, nil)

			Convey("Then every response should match local scoring", func() {
				So(err, ShouldBeNil)
				So(stats.Successful, ShouldEqual, 60)
				So(stats.Verified, ShouldEqual, 60)
				So(stats.Mismatches, ShouldEqual, 0)
				So(stats.RequestsSent, ShouldEqual, 60)

				data, rerr := os.ReadFile(out)
				So(rerr, ShouldBeNil)
				var saved []Result
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(len(saved), ShouldEqual, 60)
			})
		})

		Convey("When sending batches", func() {
			stats, err := Run(ctx, &Config{
				BaseURL:     ts.URL,
				NumRequests: 60,
				BatchSize:   25,
				Workers:     2,
				Timeout:     5 * time.Second,
			}, nil)

			Convey("Then results should match and use three requests", func() {
				So(err, ShouldBeNil)
				So(stats.RequestsSent, ShouldEqual, 3)
				So(stats.Verified, ShouldEqual, 60)
			})
		})

		Convey("When the local reference disagrees with the server", func() {
			reference, rerr := scoring.NewEngine(scoring.WithConfidence(0.5))
			So(rerr, ShouldBeNil)

			stats, err := Run(ctx, &Config{
				BaseURL:     ts.URL,
				NumRequests: 10,
				Workers:     2,
				Timeout:     5 * time.Second,
			}, reference)

			Convey("Then the run should report parity mismatches", func() {
				So(errors.Is(err, ErrParityMismatch), ShouldBeTrue)
				So(stats.Mismatches, ShouldEqual, 10)
			})
		})
	})

	Convey("Given a service configured with a non-default confidence", t, func() {
		svc := service.New(service.WithConfidence(0.7), service.WithLogger(logger.Nop()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ts := newInferenceServer(svc)
		defer ts.Close()

		config := &Config{
			BaseURL:     ts.URL,
			NumRequests: 20,
			BatchSize:   5,
			Workers:     2,
			Timeout:     5 * time.Second,
		}

		Convey("When the run is told the same confidence", func() {
			config.Confidence = 0.7
			stats, err := Run(context.Background(), config, nil)

			Convey("Then every response should match", func() {
				So(err, ShouldBeNil)
				So(stats.Verified, ShouldEqual, 20)
				So(stats.Mismatches, ShouldEqual, 0)
			})
		})

		Convey("When the run assumes the default confidence", func() {
			stats, err := Run(context.Background(), config, nil)

			Convey("Then every response should be flagged", func() {
				So(errors.Is(err, ErrParityMismatch), ShouldBeTrue)
				So(stats.Mismatches, ShouldEqual, 20)
			})
		})
	})

	Convey("Given a service that is not ready", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))
		ts := newInferenceServer(svc)
		defer ts.Close()

		_, err := Run(context.Background(), &Config{
			BaseURL:     ts.URL,
			NumRequests: 1,
			Workers:     1,
			Timeout:     time.Second,
		}, nil)

		Convey("Then the run should fail the readiness check", func() {
			So(errors.Is(err, ErrServiceUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given an invalid config", t, func() {
		_, err := Run(context.Background(), &Config{BaseURL: "http://localhost", NumRequests: 0, Workers: 1}, nil)
		_, cerr := Run(context.Background(), &Config{BaseURL: "http://localhost", NumRequests: 1, Workers: 1, Confidence: 1.5}, nil)

		Convey("Then Run should reject it", func() {
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			So(errors.Is(cerr, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given an expected assessment", t, func() {
		expected := scoring.Score(model.MustMetrics(70, 32, 145))
		sample := Sample{PatientID: "p-1", Age: 70, BMI: 32, BloodPressure: 145}

		Convey("When the prediction matches", func() {
			actual := Prediction{
				RiskScore:           expected.RiskScore,
				RiskLevel:           expected.RiskLevel.String(),
				Confidence:          expected.Confidence,
				ContributingFactors: expected.ContributingFactors,
			}

			Convey("Then there should be no mismatches", func() {
				So(compare(sample, expected, actual), ShouldBeEmpty)
			})
		})

		Convey("When the prediction differs in level and factors", func() {
			actual := Prediction{
				RiskScore:           expected.RiskScore,
				RiskLevel:           "high",
				Confidence:          expected.Confidence,
				ContributingFactors: []string{"something else"},
			}
			mm := compare(sample, expected, actual)

			Convey("Then both fields should be reported", func() {
				So(len(mm), ShouldEqual, 2)
				So(mm[0].Field, ShouldEqual, "risk_level")
				So(mm[1].Field, ShouldEqual, "contributing_factors")
			})
		})
	})
}
