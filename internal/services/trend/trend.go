package trend

import (
	"math"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/services/classify"
	"github.com/wafa-bouzouita/water-tracker/pkg/util"
)

// Properties describes how much of a station's measuring window is usable as
// trend history. The most recent YearsNotInTrend years are held out as the
// present period that gets compared against the historical baseline.
type Properties struct {
	MeasureStart       time.Time
	MeasureEnd         time.Time
	YearsNotInTrend    int
	MinTrendLengthYear int
}

// NewProperties computes trend properties for a station window.
func NewProperties(measureStart, measureEnd time.Time, yearsNotInTrend, minTrendLengthYear int) Properties {
	return Properties{
		MeasureStart:       measureStart,
		MeasureEnd:         measureEnd,
		YearsNotInTrend:    yearsNotInTrend,
		MinTrendLengthYear: minTrendLengthYear,
	}
}

// HasEnoughData reports whether the window covers the held-out years plus the
// minimum trend length.
func (p Properties) HasEnoughData() bool {
	span := util.YearsBetween(p.MeasureStart, p.MeasureEnd)
	return span >= float64(p.YearsNotInTrend+p.MinTrendLengthYear)
}

// TrendDataStart returns the start of the usable history, false when the
// window is too short.
func (p Properties) TrendDataStart() (time.Time, bool) {
	if !p.HasEnoughData() {
		return time.Time{}, false
	}
	return p.MeasureStart, true
}

// TrendDataEnd returns the end of the usable history, the measuring end minus
// the held-out years. False when the window is too short.
func (p Properties) TrendDataEnd() (time.Time, bool) {
	if !p.HasEnoughData() {
		return time.Time{}, false
	}
	return p.MeasureEnd.AddDate(-p.YearsNotInTrend, 0, 0), true
}

// NbYearsHistory returns the usable history length in whole years, 0 when the
// window is too short.
func (p Properties) NbYearsHistory() int {
	end, ok := p.TrendDataEnd()
	if !ok {
		return 0
	}
	return int(math.Round(util.YearsBetween(p.MeasureStart, end)))
}

// ReliabilityScheme returns the buckets mapping history length in years to a
// reliability label.
func ReliabilityScheme() *classify.Scheme {
	return classify.NewScheme(
		classify.Threshold{Name: "Insuffisant", Min: nil, Max: classify.Bound(3)},
		classify.Threshold{Name: "Mauvais", Min: classify.Bound(3), Max: classify.Bound(5)},
		classify.Threshold{Name: "Correct", Min: classify.Bound(5), Max: classify.Bound(10)},
		classify.Threshold{Name: "Bon", Min: classify.Bound(10), Max: classify.Bound(15)},
		classify.Threshold{Name: "Très bon", Min: classify.Bound(15), Max: classify.Bound(25)},
		classify.Threshold{Name: "Excellent", Min: classify.Bound(25), Max: nil},
	)
}

// Evaluation is the reliability verdict attached to a chronicle response.
type Evaluation struct {
	HasEnoughData  bool      `json:"has_enough_data"`
	TrendDataStart time.Time `json:"trend_data_start,omitempty"`
	TrendDataEnd   time.Time `json:"trend_data_end,omitempty"`
	NbYearsHistory int       `json:"nb_years_history"`
	Reliability    string    `json:"reliability"`
}

// Evaluate derives the evaluation for a window using the given reliability
// scheme, or ReliabilityScheme when nil.
func Evaluate(p Properties, scheme *classify.Scheme) (Evaluation, error) {
	if scheme == nil {
		scheme = ReliabilityScheme()
	}
	ev := Evaluation{
		HasEnoughData:  p.HasEnoughData(),
		NbYearsHistory: p.NbYearsHistory(),
	}
	if start, ok := p.TrendDataStart(); ok {
		ev.TrendDataStart = start
	}
	if end, ok := p.TrendDataEnd(); ok {
		ev.TrendDataEnd = end
	}
	label, err := scheme.Classify(float64(ev.NbYearsHistory))
	if err != nil {
		return Evaluation{}, err
	}
	ev.Reliability = label
	return ev, nil
}
