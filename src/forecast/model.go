package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"stock-forecaster/src/models"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Params controls the additive model. The prior scales become ridge
// penalties on the matching coefficients.
type Params struct {
	ChangepointCount      int
	ChangepointRange      float64
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	YearlyOrder           int
	WeeklyOrder           int
	IntervalWidth         float64
}

func ParamsFromConfig(c models.MForecastConfig) Params {
	return Params{
		ChangepointCount:      c.ChangepointCount,
		ChangepointRange:      c.ChangepointRange,
		ChangepointPriorScale: c.ChangepointPriorScale,
		SeasonalityPriorScale: c.SeasonalityPriorScale,
		YearlyOrder:           c.YearlyOrder,
		WeeklyOrder:           c.WeeklyOrder,
		IntervalWidth:         c.IntervalWidth,
	}
}

// DefaultParams mirrors the config defaults.
func DefaultParams() Params {
	return Params{
		ChangepointCount:      25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		YearlyOrder:           10,
		WeeklyOrder:           3,
		IntervalWidth:         0.8,
	}
}

const (
	yearPeriod    = 365.25
	weekPeriod    = 7.0
	trendPriorSD  = 5.0
	jitter        = 1e-9
	secondsPerDay = 86400.0
	minYearlySpan = 730.0
	minWeeklySpan = 14.0
)

var (
	ErrTooFewPoints = errors.New("need at least 2 observations")
	ErrZeroSpan     = errors.New("observations span zero time")
)

// Model is a fitted piecewise-linear trend plus Fourier seasonalities, all
// in scaled units: time in [0, 1] over the history and y divided by its
// absolute maximum.
type Model struct {
	params       Params
	t0           float64
	span         float64
	yScale       float64
	changepoints []float64
	yearly       bool
	weekly       bool
	beta         []float64
	sigma        float64
	deltaScale   float64
	z            float64
}

// Component is the model output for one date, in price units.
type Component struct {
	Date      time.Time
	Predicted float64
	Lower     float64
	Upper     float64
	Trend     float64
	Weekly    float64
	Yearly    float64
}

func dayNumber(t time.Time) float64 {
	return float64(t.Unix()) / secondsPerDay
}

// -----------------------------------------------------------------------------

// Fit estimates the model on dates sorted ascending and their values.
func Fit(dates []time.Time, y []float64, p Params) (*Model, error) {
	n := len(dates)
	if n != len(y) {
		return nil, fmt.Errorf("dates and values differ in length: %d vs %d", n, len(y))
	}
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	if p.IntervalWidth <= 0 || p.IntervalWidth >= 1 {
		return nil, fmt.Errorf("interval width %v outside (0, 1)", p.IntervalWidth)
	}

	yScale := 0.0
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite value at %s", dates[i].Format(time.DateOnly))
		}
		if i > 0 && dates[i].Before(dates[i-1]) {
			return nil, fmt.Errorf("dates are not sorted at %s", dates[i].Format(time.DateOnly))
		}
		yScale = math.Max(yScale, math.Abs(v))
	}
	if yScale == 0 {
		yScale = 1
	}

	m := &Model{
		params: p,
		t0:     dayNumber(dates[0]),
		yScale: yScale,
		z:      distuv.UnitNormal.Quantile(0.5 + p.IntervalWidth/2),
	}
	m.span = dayNumber(dates[n-1]) - m.t0
	if m.span <= 0 {
		return nil, ErrZeroSpan
	}

	m.yearly = p.YearlyOrder > 0 && m.span >= minYearlySpan
	m.weekly = p.WeeklyOrder > 0 && m.span >= minWeeklySpan && minSpacingDays(dates) < weekPeriod
	m.placeChangepoints(dates)

	X := mat.NewDense(n, m.width(), nil)
	ys := make([]float64, n)
	row := make([]float64, m.width())
	for i, d := range dates {
		m.features(d, row)
		X.SetRow(i, row)
		ys[i] = y[i] / yScale
	}
	yv := mat.NewVecDense(n, ys)

	// A short ridge pass estimates the noise level, which then weighs the
	// priors in the final pass.
	beta, err := m.solve(X, yv, 0.1)
	if err != nil {
		return nil, err
	}
	sigma := residualSD(X, yv, beta, m.width())
	if beta, err = m.solve(X, yv, math.Max(sigma, 1e-4)); err != nil {
		return nil, err
	}

	m.beta = beta
	m.sigma = residualSD(X, yv, beta, m.width())

	if k := len(m.changepoints); k > 0 {
		abs := make([]float64, k)
		for j := 0; j < k; j++ {
			abs[j] = math.Abs(beta[2+j])
		}
		m.deltaScale = stat.Mean(abs, nil)
	}
	return m, nil
}

// -----------------------------------------------------------------------------

func minSpacingDays(dates []time.Time) float64 {
	minGap := math.Inf(1)
	for i := 1; i < len(dates); i++ {
		if gap := dayNumber(dates[i]) - dayNumber(dates[i-1]); gap > 0 && gap < minGap {
			minGap = gap
		}
	}
	return minGap
}

// placeChangepoints spreads candidates evenly over the first
// ChangepointRange share of the observations.
func (m *Model) placeChangepoints(dates []time.Time) {
	histSize := int(math.Floor(float64(len(dates)) * m.params.ChangepointRange))
	k := m.params.ChangepointCount
	if histSize-1 < k {
		k = histSize - 1
	}
	if k <= 0 {
		return
	}

	m.changepoints = make([]float64, 0, k)
	for j := 1; j <= k; j++ {
		idx := int(math.Round(float64(j) * float64(histSize-1) / float64(k)))
		m.changepoints = append(m.changepoints, m.scaledTime(dates[idx]))
	}
}

func (m *Model) scaledTime(d time.Time) float64 {
	return (dayNumber(d) - m.t0) / m.span
}

func (m *Model) width() int {
	w := 2 + len(m.changepoints)
	if m.yearly {
		w += 2 * m.params.YearlyOrder
	}
	if m.weekly {
		w += 2 * m.params.WeeklyOrder
	}
	return w
}

// features fills one design matrix row for date d.
func (m *Model) features(d time.Time, row []float64) {
	s := m.scaledTime(d)
	row[0], row[1] = 1, s
	col := 2
	for _, c := range m.changepoints {
		row[col] = math.Max(0, s-c)
		col++
	}
	day := dayNumber(d)
	if m.yearly {
		col = fourier(day, yearPeriod, m.params.YearlyOrder, row, col)
	}
	if m.weekly {
		fourier(day, weekPeriod, m.params.WeeklyOrder, row, col)
	}
}

func fourier(day, period float64, order int, row []float64, col int) int {
	for k := 1; k <= order; k++ {
		x := 2 * math.Pi * float64(k) * day / period
		row[col] = math.Sin(x)
		row[col+1] = math.Cos(x)
		col += 2
	}
	return col
}

// priorSD returns the prior standard deviation of each coefficient.
func (m *Model) priorSD() []float64 {
	sd := make([]float64, m.width())
	sd[0], sd[1] = trendPriorSD, trendPriorSD
	col := 2
	for range m.changepoints {
		// Laplace(0, tau) has variance 2*tau^2
		sd[col] = math.Sqrt2 * m.params.ChangepointPriorScale
		col++
	}
	for ; col < len(sd); col++ {
		sd[col] = m.params.SeasonalityPriorScale
	}
	return sd
}

// solve computes the MAP coefficients (X'X + diag(sigma^2/prior^2)) b = X'y.
func (m *Model) solve(X *mat.Dense, y *mat.VecDense, sigma float64) ([]float64, error) {
	_, p := X.Dims()

	var a mat.SymDense
	a.SymOuterK(1, X.T())
	for j, sd := range m.priorSD() {
		a.SetSym(j, j, a.At(j, j)+sigma*sigma/(sd*sd)+jitter)
	}

	var b mat.VecDense
	b.MulVec(X.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(&a); !ok {
		return nil, errors.New("normal equations are not positive definite")
	}

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &b); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}

	out := make([]float64, p)
	for j := range out {
		out[j] = beta.AtVec(j)
		if math.IsNaN(out[j]) || math.IsInf(out[j], 0) {
			return nil, errors.New("fit produced non-finite coefficients")
		}
	}
	return out, nil
}

func residualSD(X *mat.Dense, y *mat.VecDense, beta []float64, p int) float64 {
	var fitted mat.VecDense
	fitted.MulVec(X, mat.NewVecDense(len(beta), beta))

	n := y.Len()
	res := make([]float64, n)
	for i := range res {
		res[i] = y.AtVec(i) - fitted.AtVec(i)
	}
	dof := n - p
	if dof < 1 {
		dof = n
	}
	ss := 0.0
	for _, r := range res {
		ss += r * r
	}
	return math.Sqrt(ss / float64(dof))
}

// -----------------------------------------------------------------------------

// Predict evaluates every component at the given dates. The interval widens
// past the last observation with the expected variance of future trend
// changes: rate * 2*b^2 * h^3 / 3, where rate is the number of changepoints
// per unit of scaled time and b their mean absolute size.
func (m *Model) Predict(dates []time.Time) []Component {
	out := make([]Component, len(dates))
	rate := float64(len(m.changepoints))

	for i, d := range dates {
		s := m.scaledTime(d)
		trend := m.beta[0] + m.beta[1]*s
		col := 2
		for _, c := range m.changepoints {
			trend += m.beta[col] * math.Max(0, s-c)
			col++
		}

		day := dayNumber(d)
		var yearly, weekly float64
		if m.yearly {
			yearly, col = m.seasonal(day, yearPeriod, m.params.YearlyOrder, col)
		}
		if m.weekly {
			weekly, _ = m.seasonal(day, weekPeriod, m.params.WeeklyOrder, col)
		}

		variance := m.sigma * m.sigma
		if h := s - 1; h > 0 {
			variance += rate * 2 * m.deltaScale * m.deltaScale * h * h * h / 3
		}
		half := m.z * math.Sqrt(variance)

		yhat := trend + yearly + weekly
		out[i] = Component{
			Date:      d,
			Predicted: yhat * m.yScale,
			Lower:     (yhat - half) * m.yScale,
			Upper:     (yhat + half) * m.yScale,
			Trend:     trend * m.yScale,
			Weekly:    weekly * m.yScale,
			Yearly:    yearly * m.yScale,
		}
	}
	return out
}

func (m *Model) seasonal(day, period float64, order, col int) (float64, int) {
	v := 0.0
	for k := 1; k <= order; k++ {
		x := 2 * math.Pi * float64(k) * day / period
		v += m.beta[col]*math.Sin(x) + m.beta[col+1]*math.Cos(x)
		col += 2
	}
	return v, col
}

// -----------------------------------------------------------------------------

// profileAnchor is a Sunday at the start of a non-leap year.
var profileAnchor = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

// WeeklyProfile returns the weekly component for Sunday..Saturday, or nil
// when the model has no weekly term.
func (m *Model) WeeklyProfile() []models.MSeasonalPoint {
	if !m.weekly {
		return nil
	}
	out := make([]models.MSeasonalPoint, 7)
	for i := range out {
		d := profileAnchor.AddDate(0, 0, i)
		v, _ := m.seasonal(dayNumber(d), weekPeriod, m.params.WeeklyOrder, m.weeklyColumn())
		out[i] = models.MSeasonalPoint{Label: d.Weekday().String(), Value: v * m.yScale}
	}
	return out
}

// YearlyProfile returns the yearly component for each day of a year, or nil
// when the model has no yearly term.
func (m *Model) YearlyProfile() []models.MSeasonalPoint {
	if !m.yearly {
		return nil
	}
	out := make([]models.MSeasonalPoint, 365)
	for i := range out {
		d := profileAnchor.AddDate(0, 0, i)
		v, _ := m.seasonal(dayNumber(d), yearPeriod, m.params.YearlyOrder, 2+len(m.changepoints))
		out[i] = models.MSeasonalPoint{Label: d.Format("Jan 02"), Value: v * m.yScale}
	}
	return out
}

func (m *Model) weeklyColumn() int {
	col := 2 + len(m.changepoints)
	if m.yearly {
		col += 2 * m.params.YearlyOrder
	}
	return col
}

// HasYearly and HasWeekly report which seasonalities were enabled.
func (m *Model) HasYearly() bool { return m.yearly }
func (m *Model) HasWeekly() bool { return m.weekly }
