package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// ErrTooFewPoints is returned when a trend has fewer than three dated points.
var ErrTooFewPoints = errors.New("too few points for a trend")

const secondsPerDay = 24 * 60 * 60

// DaysSinceEpoch converts t to fractional days since 1970-01-01 UTC, the
// regressor used for date trends.
func DaysSinceEpoch(t time.Time) float64 {
	return float64(t.Unix()) / secondsPerDay
}

// DateFromDays is the inverse of DaysSinceEpoch.
func DateFromDays(days float64) time.Time {
	return time.Unix(int64(math.Round(days*secondsPerDay)), 0).UTC()
}

// Coefficient is one fitted parameter with its inference statistics.
type Coefficient struct {
	Name   string
	Value  float64
	StdErr float64
	T      float64
	P      float64
	Lower  float64 // 95% confidence interval
	Upper  float64
}

// Regression is an ordinary least squares fit of y on one regressor.
type Regression struct {
	N          int
	DFResidual int
	Intercept  Coefficient
	Slope      Coefficient
	R2         float64
	AdjR2      float64
	F          float64
	FProb      float64
	RSS        float64
}

// Predict evaluates the fitted line at x.
func (r Regression) Predict(x float64) float64 {
	return r.Intercept.Value + r.Slope.Value*x
}

// Solve returns the x at which the fitted line reaches y.
func (r Regression) Solve(y float64) (float64, bool) {
	if r.Slope.Value == 0 {
		return 0, false
	}
	return (y - r.Intercept.Value) / r.Slope.Value, true
}

// OLS fits y = a + b·x by ordinary least squares.
func OLS(xs, ys []float64) (Regression, error) {
	if len(xs) != len(ys) {
		return Regression{}, fmt.Errorf("ols: %d x values, %d y values", len(xs), len(ys))
	}
	n := len(xs)
	if n < 3 {
		return Regression{}, fmt.Errorf("ols: %d points: %w", n, ErrTooFewPoints)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	xMean := stat.Mean(xs, nil)

	var sxx, rss float64
	for i := range xs {
		dx := xs[i] - xMean
		sxx += dx * dx
		res := ys[i] - (alpha + beta*xs[i])
		rss += res * res
	}
	if sxx == 0 {
		return Regression{}, fmt.Errorf("ols: constant regressor: %w", ErrTooFewPoints)
	}

	df := n - 2
	sigma2 := rss / float64(df)
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	tcrit := tdist.Quantile(0.975)

	coef := func(name string, value, se float64) Coefficient {
		c := Coefficient{Name: name, Value: value, StdErr: se}
		if se > 0 {
			c.T = value / se
			c.P = 2 * tdist.Survival(math.Abs(c.T))
		}
		c.Lower = value - tcrit*se
		c.Upper = value + tcrit*se
		return c
	}

	r := Regression{
		N:          n,
		DFResidual: df,
		Intercept:  coef("const", alpha, math.Sqrt(sigma2*(1/float64(n)+xMean*xMean/sxx))),
		Slope:      coef("x1", beta, math.Sqrt(sigma2/sxx)),
		R2:         stat.RSquared(xs, ys, nil, alpha, beta),
		RSS:        rss,
	}
	r.AdjR2 = 1 - (1-r.R2)*float64(n-1)/float64(df)
	r.F = r.Slope.T * r.Slope.T
	r.FProb = r.Slope.P
	return r, nil
}

// Trend is a fitted date trend for a series of performances.
type Trend struct {
	Regression
	Points    []domain.Performance // dated points, in date order
	Target    float64              // seconds
	Predicted time.Time            // when the trend reaches Target
	Reaches   bool
}

// FitTrend regresses performance seconds on date for the dated points and
// predicts when the trend reaches target seconds.
func FitTrend(perfs []domain.Performance, target float64) (Trend, error) {
	var points []domain.Performance
	for _, p := range perfs {
		if !p.Date.IsZero() {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = DaysSinceEpoch(p.Date)
		ys[i] = p.Seconds
	}
	reg, err := OLS(xs, ys)
	if err != nil {
		return Trend{}, err
	}

	t := Trend{Regression: reg, Points: points, Target: target}
	if x, ok := reg.Solve(target); ok {
		t.Predicted = DateFromDays(x)
		t.Reaches = true
	}
	return t, nil
}
