package drought

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	"github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
)

// ErrInsufficientHistory is returned when a series yields too few aggregated
// periods to fit a distribution.
var ErrInsufficientHistory = errors.New("insufficient history to fit distribution")

// probability clamp keeps the normal quantile finite at the tails.
const probEpsilon = 1e-6

// Options configure the standardized index computation.
type Options struct {
	Frequency     repository.Frequency
	Scale         int
	MinFitPeriods int
	Fitter        Fitter
}

func (o Options) withDefaults() Options {
	if o.Frequency == "" {
		o.Frequency = repository.DefaultFrequency()
	}
	if o.Scale < 1 {
		o.Scale = 3
	}
	if o.MinFitPeriods < 1 {
		o.MinFitPeriods = 30
	}
	if o.Fitter == nil {
		o.Fitter = GammaFitter{}
	}
	return o
}

// Distribution maps an aggregate value to a cumulative probability.
type Distribution interface {
	CDF(x float64) float64
}

// Fitter fits a Distribution to the valid rolling aggregates of a series.
type Fitter interface {
	Name() string
	Fit(values []float64) (Distribution, error)
}

// ComputeIndex turns a cleaned observation series into a standardized index
// series. Observations are resampled to the configured frequency by period
// mean, summed over a rolling window of Scale periods, then mapped through a
// fitted distribution and the standard normal quantile. Periods with no
// observations and the first Scale-1 periods carry NaN.
func ComputeIndex(s models.Series, opts Options) (models.IndexSeries, error) {
	opts = opts.withDefaults()
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrInsufficientHistory)
	}

	periods, means := resample(s, opts.Frequency)
	aggs := rollingSum(means, opts.Scale)

	valid := make([]float64, 0, len(aggs))
	for _, a := range aggs {
		if !math.IsNaN(a) {
			valid = append(valid, a)
		}
	}
	if len(valid) < opts.MinFitPeriods {
		return nil, fmt.Errorf("%w: %d periods, need %d", ErrInsufficientHistory, len(valid), opts.MinFitPeriods)
	}

	dist, err := opts.Fitter.Fit(valid)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", opts.Fitter.Name(), err)
	}

	normal := distuv.UnitNormal
	out := make(models.IndexSeries, len(periods))
	for i, period := range periods {
		pt := models.IndexPoint{Period: period, Aggregate: aggs[i], Index: math.NaN()}
		if !math.IsNaN(aggs[i]) {
			p := clampProb(dist.CDF(aggs[i]))
			pt.Index = normal.Quantile(p)
		}
		out[i] = pt
	}
	return out, nil
}

// resample groups observations into a continuous run of periods from the
// first observed period to the last, averaging values within a period.
// Periods with no observations get NaN.
func resample(s models.Series, freq repository.Frequency) ([]time.Time, []float64) {
	sorted := s.Sorted()
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, o := range sorted {
		p := freq.PeriodStart(o.Date)
		sums[p] += o.Value
		counts[p]++
	}

	first := freq.PeriodStart(sorted[0].Date)
	last := freq.PeriodStart(sorted[len(sorted)-1].Date)

	var periods []time.Time
	var means []float64
	for p := first; !p.After(last); p = freq.NextPeriod(p) {
		periods = append(periods, p)
		if n := counts[p]; n > 0 {
			means = append(means, sums[p]/float64(n))
		} else {
			means = append(means, math.NaN())
		}
	}
	return periods, means
}

func clampProb(p float64) float64 {
	if p < probEpsilon {
		return probEpsilon
	}
	if p > 1-probEpsilon {
		return 1 - probEpsilon
	}
	return p
}

// rollingSum sums a trailing window of n values. The first n-1 positions and
// any window containing a NaN yield NaN.
func rollingSum(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < n-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - n + 1; j <= i; j++ {
			sum += vals[j]
		}
		out[i] = sum
	}
	return out
}

// GammaFitter fits a two-parameter gamma distribution by maximum likelihood,
// with a point mass at zero mixed in so series containing zeros (dry months
// in rainfall records) stay well defined.
type GammaFitter struct{}

func (GammaFitter) Name() string { return "gamma" }

func (GammaFitter) Fit(values []float64) (Distribution, error) {
	nonzero := make([]float64, 0, len(values))
	zeros := 0
	for _, v := range values {
		if v <= 0 {
			zeros++
			continue
		}
		nonzero = append(nonzero, v)
	}
	if len(nonzero) < 2 {
		return nil, errors.New("not enough positive values")
	}

	mean := 0.0
	logMean := 0.0
	for _, v := range nonzero {
		mean += v
		logMean += math.Log(v)
	}
	mean /= float64(len(nonzero))
	logMean /= float64(len(nonzero))

	// Thom's approximation for the shape, refined by Newton on
	// ln(alpha) - digamma(alpha) = s.
	s := math.Log(mean) - logMean
	if s <= 0 {
		return nil, errors.New("degenerate sample, cannot estimate shape")
	}
	alpha := (3 - s + math.Sqrt((s-3)*(s-3)+24*s)) / (12 * s)
	alpha = refineShape(alpha, s)
	if alpha <= 0 || math.IsNaN(alpha) {
		return nil, fmt.Errorf("invalid shape estimate %g", alpha)
	}

	g := distuv.Gamma{Alpha: alpha, Beta: alpha / mean}
	q := float64(zeros) / float64(len(values))
	return zeroMixture{q: q, cont: g}, nil
}

// refineShape runs a few Newton steps on f(a) = ln(a) - digamma(a) - s with
// a central-difference derivative of the digamma term.
func refineShape(alpha, s float64) float64 {
	const h = 1e-6
	for i := 0; i < 10; i++ {
		f := math.Log(alpha) - mathext.Digamma(alpha) - s
		dPsi := (mathext.Digamma(alpha+h) - mathext.Digamma(alpha-h)) / (2 * h)
		df := 1/alpha - dPsi
		if df == 0 {
			break
		}
		next := alpha - f/df
		if next <= 0 || math.IsNaN(next) {
			break
		}
		if math.Abs(next-alpha) < 1e-10 {
			return next
		}
		alpha = next
	}
	return alpha
}

// zeroMixture is q + (1-q) * G(x): a point mass at zero with probability q
// and a continuous distribution above it.
type zeroMixture struct {
	q    float64
	cont distuv.Gamma
}

func (m zeroMixture) CDF(x float64) float64 {
	if x <= 0 {
		return m.q
	}
	return m.q + (1-m.q)*m.cont.CDF(x)
}

// EmpiricalFitter ranks aggregates with the Weibull plotting position
// rank/(n+1). It is the fallback when the gamma fit fails to converge.
type EmpiricalFitter struct{}

func (EmpiricalFitter) Name() string { return "empirical" }

func (EmpiricalFitter) Fit(values []float64) (Distribution, error) {
	if len(values) == 0 {
		return nil, errors.New("empty sample")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return empiricalDist{sorted: sorted}, nil
}

type empiricalDist struct {
	sorted []float64
}

func (d empiricalDist) CDF(x float64) float64 {
	// Number of sample values <= x.
	rank := sort.Search(len(d.sorted), func(i int) bool { return d.sorted[i] > x })
	return float64(rank) / float64(len(d.sorted)+1)
}
