package api

import (
	"errors"
	"testing"

	"github.com/healthwatch/inference/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestPredictRequestValidation(t *testing.T) {
	convey.Convey("Given the predict request validator", t, func() {
		h := &PredictHandler{validate: newValidator()}

		convey.Convey("When values sit exactly on the domain bounds", func() {
			low := predictRequest{Age: intPtr(model.MinAge), BMI: floatPtr(model.MinBMI), BloodPressure: intPtr(model.MinSystolicBP)}
			high := predictRequest{Age: intPtr(model.MaxAge), BMI: floatPtr(model.MaxBMI), BloodPressure: intPtr(model.MaxSystolicBP)}

			convey.Convey("Then both should pass", func() {
				convey.So(h.check(low), convey.ShouldBeEmpty)
				convey.So(h.check(high), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When values sit just outside the domain bounds", func() {
			req := predictRequest{
				Age:           intPtr(model.MaxAge + 1),
				BMI:           floatPtr(model.MinBMI - 0.1),
				BloodPressure: intPtr(model.MaxSystolicBP + 1),
			}
			details := h.check(req)

			convey.Convey("Then every field should be reported by its JSON name", func() {
				convey.So(len(details), convey.ShouldEqual, 3)
				convey.So(details[0].Field, convey.ShouldEqual, "age")
				convey.So(details[0].Rule, convey.ShouldEqual, "lte")
				convey.So(details[1].Field, convey.ShouldEqual, "bmi")
				convey.So(details[1].Rule, convey.ShouldEqual, "gte")
				convey.So(details[2].Field, convey.ShouldEqual, "blood_pressure")
				convey.So(details[2].Message, convey.ShouldEqual, "blood_pressure must be less than or equal to 250")
			})
		})

		convey.Convey("When a zero value is explicitly supplied", func() {
			details := h.check(predictRequest{Age: intPtr(0), BMI: floatPtr(22), BloodPressure: intPtr(120)})

			convey.Convey("Then it should not count as missing", func() {
				convey.So(details, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestRoundBMI(t *testing.T) {
	convey.Convey("Given BMI values with extra precision", t, func() {
		cases := []struct {
			in, want float64
		}{
			{45.678, 45.7},
			{26.46, 26.5},
			{26.44, 26.4},
			{26.25, 26.2},
			{26.35, 26.4},
			{22, 22},
			{24.95, 24.9},
			{29.95, 29.9},
			{10.05, 10.1},
		}

		convey.Convey("Then they should round the stored value to one decimal", func() {
			for _, tc := range cases {
				convey.So(roundBMI(tc.in), convey.ShouldEqual, tc.want)
			}
		})
	})
}

func TestKindError(t *testing.T) {
	convey.Convey("Given kind errors", t, func() {
		cause := errors.New("unexpected EOF")
		wrapped := WrapKind("api.predict", ErrBadRequest, cause)
		bare := NewKind("api.ready", ErrNotReady)

		convey.Convey("Then errors.Is should match the kind and the cause", func() {
			convey.So(errors.Is(wrapped, ErrBadRequest), convey.ShouldBeTrue)
			convey.So(errors.Is(wrapped, cause), convey.ShouldBeTrue)
			convey.So(errors.Is(wrapped, ErrInternal), convey.ShouldBeFalse)
			convey.So(errors.Is(bare, ErrNotReady), convey.ShouldBeTrue)
		})

		convey.Convey("Then messages should carry the operation", func() {
			convey.So(wrapped.Error(), convey.ShouldEqual, "api.predict: bad request: unexpected EOF")
			convey.So(bare.Error(), convey.ShouldEqual, "api.ready: service not ready")
		})

		convey.Convey("Then errors.As should expose the operation", func() {
			var kerr *KindError
			convey.So(errors.As(wrapped, &kerr), convey.ShouldBeTrue)
			convey.So(kerr.Op, convey.ShouldEqual, "api.predict")
		})
	})
}
