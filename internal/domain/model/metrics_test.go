package model_test

import (
	"errors"
	"math"
	"testing"

	model "github.com/healthwatch/inference/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewMetrics(t *testing.T) {
	convey.Convey("Given patient metrics within bounds", t, func() {
		m, err := model.NewMetrics(45, 26.5, 130)

		convey.Convey("Then construction should succeed", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(m.Age(), convey.ShouldEqual, 45)
			convey.So(m.BMI(), convey.ShouldEqual, 26.5)
			convey.So(m.SystolicBP(), convey.ShouldEqual, 130)
		})
	})

	convey.Convey("Given metrics exactly on the inclusive bounds", t, func() {
		bounds := []struct {
			age int
			bmi float64
			bp  int
		}{
			{model.MinAge, model.MinBMI, model.MinSystolicBP},
			{model.MaxAge, model.MaxBMI, model.MaxSystolicBP},
		}

		convey.Convey("Then construction should succeed for each", func() {
			for _, b := range bounds {
				_, err := model.NewMetrics(b.age, b.bmi, b.bp)
				convey.So(err, convey.ShouldBeNil)
			}
		})
	})

	convey.Convey("Given a single field out of bounds", t, func() {
		cases := []struct {
			name  string
			age   int
			bmi   float64
			bp    int
			field string
		}{
			{"age below minimum", -1, 22, 110, model.FieldAge},
			{"age above maximum", 121, 22, 110, model.FieldAge},
			{"bmi below minimum", 25, 9.9, 110, model.FieldBMI},
			{"bmi above maximum", 25, 60.1, 110, model.FieldBMI},
			{"bp below minimum", 25, 22, 59, model.FieldSystolicBP},
			{"bp above maximum", 25, 22, 251, model.FieldSystolicBP},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				m, err := model.NewMetrics(tc.age, tc.bmi, tc.bp)

				convey.Convey("Then it should fail naming only that field", func() {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, model.ErrInvalidInput), convey.ShouldBeTrue)
					convey.So(m, convey.ShouldResemble, model.Metrics{})

					var invalid *model.InvalidInputError
					convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
					convey.So(invalid.Fields(), convey.ShouldResemble, []string{tc.field})
				})
			})
		}
	})

	convey.Convey("Given every field out of bounds", t, func() {
		_, err := model.NewMetrics(200, 5, 300)

		convey.Convey("Then all violations should be reported in field order", func() {
			var invalid *model.InvalidInputError
			convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
			convey.So(invalid.Fields(), convey.ShouldResemble,
				[]string{model.FieldAge, model.FieldBMI, model.FieldSystolicBP})
			convey.So(invalid.Violations[0].Value, convey.ShouldEqual, 200)
			convey.So(invalid.Violations[1].Min, convey.ShouldEqual, model.MinBMI)
			convey.So(invalid.Violations[2].Max, convey.ShouldEqual, model.MaxSystolicBP)
		})

		convey.Convey("And the message should name the offending values", func() {
			convey.So(err.Error(), convey.ShouldContainSubstring, "age=200 outside [0, 120]")
			convey.So(err.Error(), convey.ShouldContainSubstring, "bmi=5 outside [10, 60]")
			convey.So(err.Error(), convey.ShouldContainSubstring, "blood_pressure=300 outside [60, 250]")
		})
	})

	convey.Convey("Given non-finite BMI values", t, func() {
		convey.Convey("Then NaN and infinities should be rejected", func() {
			for _, bmi := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
				_, err := model.NewMetrics(30, bmi, 120)
				convey.So(errors.Is(err, model.ErrInvalidInput), convey.ShouldBeTrue)
			}
		})
	})

	convey.Convey("Given MustMetrics with invalid input", t, func() {
		convey.Convey("Then it should panic", func() {
			convey.So(func() { model.MustMetrics(-5, 22, 110) }, convey.ShouldPanic)
		})
	})
}
