package merit_test

import (
	"testing"

	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/merit"
	"github.com/okian/flps/internal/domain/score"
	. "github.com/smartystreets/goconvey/convey"
)

func components(a, m, e float64) (score.AttendanceCommitment, score.MechanicalAdherence, score.ExternalPreparation) {
	acs, _ := score.NewAttendanceCommitment(a)
	mas, _ := score.NewMechanicalAdherence(m)
	eps, _ := score.NewExternalPreparation(e)
	return acs, mas, eps
}

func TestCalculator(t *testing.T) {
	Convey("Given the default merit weights", t, func() {
		calc := merit.New(guild.Default().RMS)

		Convey("ACS=0.9, MAS=0.8, EPS=0.7 yields RMS=0.82", func() {
			So(calc.Calculate(components(0.9, 0.8, 0.7)).Value(), ShouldAlmostEqual, 0.82, 1e-9)
		})

		Convey("Perfect components yield a perfect score", func() {
			So(calc.Calculate(components(1, 1, 1)).Value(), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("Zero components yield zero", func() {
			So(calc.Calculate(components(0, 0, 0)).Value(), ShouldEqual, 0)
		})
	})

	Convey("Given weights summing above one", t, func() {
		calc := merit.New(guild.RMSWeights{Attendance: 1, Mechanical: 1, Preparation: 1})

		Convey("The sum is clamped to one", func() {
			So(calc.Calculate(components(0.9, 0.8, 0.7)).Value(), ShouldEqual, 1.0)
		})

		Convey("Sums still inside range are left alone", func() {
			So(calc.Calculate(components(0.1, 0.2, 0.3)).Value(), ShouldAlmostEqual, 0.6, 1e-9)
		})
	})
}
