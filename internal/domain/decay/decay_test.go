package decay_test

import (
	"math"
	"testing"
	"time"

	decay "github.com/okian/talent-trends/internal/domain/decay"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecay_Weight(t *testing.T) {
	Convey("Given a decay with a one-hour half-life", t, func() {
		d := decay.New(decay.WithHalfLife(time.Hour))

		Convey("When the observation is brand new", func() {
			Convey("Then it should contribute its full weight", func() {
				So(d.Weight(0), ShouldEqual, 1.0)
			})
		})

		Convey("When the age is negative due to clock skew", func() {
			Convey("Then it should be treated as brand new", func() {
				So(d.Weight(-time.Minute), ShouldEqual, 1.0)
			})
		})

		Convey("When the observation is exactly one half-life old", func() {
			Convey("Then it should contribute e^-1 of its weight", func() {
				So(d.Weight(time.Hour), ShouldAlmostEqual, math.Exp(-1), 1e-12)
			})
		})

		Convey("When the observation is two half-lives old", func() {
			Convey("Then it should contribute e^-2 of its weight", func() {
				So(d.Weight(2*time.Hour), ShouldAlmostEqual, math.Exp(-2), 1e-12)
			})
		})

		Convey("When ages grow", func() {
			Convey("Then weights should be strictly decreasing", func() {
				So(d.Weight(time.Minute), ShouldBeGreaterThan, d.Weight(time.Hour))
				So(d.Weight(time.Hour), ShouldBeGreaterThan, d.Weight(24*time.Hour))
			})
		})
	})

	Convey("Given two observations, one a half-life old and one fresh", t, func() {
		d := decay.New(decay.WithHalfLife(time.Hour))

		Convey("Then their combined contribution should be e^-1 + 1", func() {
			score := 1.0*d.Weight(time.Hour) + 1.0*d.Weight(0)
			So(score, ShouldAlmostEqual, 1.367879, 1e-6)
		})
	})
}

func TestDecay_Epsilon(t *testing.T) {
	Convey("Given a decay with a coarse epsilon", t, func() {
		d := decay.New(
			decay.WithHalfLife(time.Hour),
			decay.WithEpsilon(1e-3),
		)

		Convey("When the weight would fall below epsilon", func() {
			// exp(-8) ~ 3.4e-4 < 1e-3
			Convey("Then it should clamp to zero", func() {
				So(d.Weight(8*time.Hour), ShouldEqual, 0)
			})
		})

		Convey("When the weight stays above epsilon", func() {
			Convey("Then it should not be clamped", func() {
				So(d.Weight(2*time.Hour), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When computing the horizon", func() {
			Convey("Then a unit weight at the horizon should sit at epsilon", func() {
				h := d.Horizon()
				So(math.Exp(-float64(h)/float64(time.Hour)), ShouldAlmostEqual, 1e-3, 1e-9)
			})
		})
	})
}

func TestDecay_Factor(t *testing.T) {
	Convey("Given a decay with a one-hour half-life", t, func() {
		d := decay.New(decay.WithHalfLife(time.Hour))
		t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When re-aging across one half-life", func() {
			Convey("Then the factor should be e^-1", func() {
				So(d.Factor(t0, t0.Add(time.Hour)), ShouldAlmostEqual, math.Exp(-1), 1e-12)
			})
		})

		Convey("When the instants coincide or run backwards", func() {
			Convey("Then the factor should be one", func() {
				So(d.Factor(t0, t0), ShouldEqual, 1.0)
				So(d.Factor(t0, t0.Add(-time.Minute)), ShouldEqual, 1.0)
			})
		})

		Convey("When re-aging in two hops", func() {
			Convey("Then it should compose to the single-hop factor", func() {
				oneHop := d.Factor(t0, t0.Add(3*time.Hour))
				twoHops := d.Factor(t0, t0.Add(time.Hour)) * d.Factor(t0.Add(time.Hour), t0.Add(3*time.Hour))
				So(twoHops, ShouldAlmostEqual, oneHop, 1e-12)
			})
		})
	})
}

func TestDecay_Defaults(t *testing.T) {
	Convey("Given a decay with no options", t, func() {
		d := decay.New()

		Convey("Then it should use the default half-life", func() {
			So(d.HalfLife(), ShouldEqual, decay.DefaultHalfLife)
		})

		Convey("And invalid options should be ignored", func() {
			d2 := decay.New(
				decay.WithHalfLife(-time.Hour),
				decay.WithEpsilon(2.0),
			)
			So(d2.HalfLife(), ShouldEqual, decay.DefaultHalfLife)
			So(d2.Weight(time.Minute), ShouldAlmostEqual, d.Weight(time.Minute), 1e-12)
		})
	})
}
