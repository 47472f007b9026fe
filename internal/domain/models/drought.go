package models

import "time"

// Indicator identifies a tracked hydrological indicator.
type Indicator string

const (
	IndicatorRainfall        Indicator = "rainfall"
	IndicatorGroundwater     Indicator = "groundwater"
	IndicatorGroundwaterDeep Indicator = "groundwater-deep"
)

// StandardizedIndexName returns the name of the standardized index computed
// for this indicator: SPI for rainfall, SPLI for groundwater levels.
func (i Indicator) StandardizedIndexName() string {
	if i == IndicatorRainfall {
		return "spi"
	}
	return "spli"
}

// IsValidIndicator reports whether s names a known indicator.
func IsValidIndicator(s string) bool {
	switch Indicator(s) {
	case IndicatorRainfall, IndicatorGroundwater, IndicatorGroundwaterDeep:
		return true
	default:
		return false
	}
}

// IndexPoint is one row of a computed standardized-index series: the period
// date, the rolling aggregate over the configured scale, and the index value.
// Aggregate and Index are NaN for the first scale-1 periods.
type IndexPoint struct {
	Period    time.Time `json:"period"`
	Aggregate float64   `json:"aggregate"`
	Index     float64   `json:"index"`
}

// IndexSeries is one standardized-index row per period for one station.
type IndexSeries []IndexPoint

// LevelObservation attaches a classified severity level to a station at a
// point in time. Level is the position of the matched threshold in its
// classification scheme.
type LevelObservation struct {
	Station string    `json:"station"`
	Date    time.Time `json:"date"`
	Level   int       `json:"level"`
}

// LevelCounts maps a temporal bucket key to the number of stations holding
// each level in that bucket. Bucket keys depend on the grouping: "2023-04"
// for month+year, "04" for month-of-year, "123" for day-of-year.
type LevelCounts map[string]map[int]int

// Station describes a measuring station as returned by a station source.
type Station struct {
	ID           string      `json:"id"`
	BSSCode      string      `json:"bss_code,omitempty"`
	Name         string      `json:"name"`
	Department   string      `json:"department"`
	City         string      `json:"city,omitempty"`
	Indicators   []Indicator `json:"indicators,omitempty"`
	MeasureStart time.Time   `json:"measure_start"`
	MeasureEnd   time.Time   `json:"measure_end"`
}

// HasIndicator reports whether the station measures the given indicator.
func (s Station) HasIndicator(ind Indicator) bool {
	for _, i := range s.Indicators {
		if i == ind {
			return true
		}
	}
	return false
}
