// Package series generates the synthetic chart series shown on the user
// and operator dashboards.
package series

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
)

// ErrUnknownPeriod is returned for a period other than day, week, month or year.
var ErrUnknownPeriod = eris.New("series: unknown period")

// Period is a user consumption chart range.
type Period string

// Supported periods.
const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// Series is a labelled chart series.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Values) }

// Generator produces series from an injected random source and clock.
type Generator struct {
	Rand *rand.Rand
	Now  func() time.Time
}

// NewGenerator returns a Generator seeded from entropy using the wall clock.
func NewGenerator() *Generator {
	return &Generator{
		Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Now:  time.Now,
	}
}

var months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// User returns the household consumption series for a period.
func (g *Generator) User(p Period) (Series, error) {
	var s Series
	switch p {
	case Day:
		for h := 0; h < 24; h++ {
			base := 0.5
			if (h > 6 && h < 9) || (h > 17 && h < 22) {
				base = 1.5
			}
			s.Labels = append(s.Labels, fmt.Sprintf("%d:00", h))
			s.Values = append(s.Values, base+g.Rand.Float64()*0.5)
		}
	case Week:
		now := g.Now()
		for i := 0; i < 7; i++ {
			d := now.AddDate(0, 0, -(6 - i))
			wd := d.Weekday()
			v := 20 + g.Rand.Float64()*8
			if wd == time.Saturday || wd == time.Sunday {
				v = 30 + g.Rand.Float64()*10
			}
			s.Labels = append(s.Labels, wd.String()[:3])
			s.Values = append(s.Values, v)
		}
	case Month:
		s.Labels = DayLabels(30)
		for i := 0; i < 30; i++ {
			s.Values = append(s.Values, 25+(g.Rand.Float64()-0.5)*10)
		}
	case Year:
		for i, m := range months {
			v := 600 + g.Rand.Float64()*150
			if isPeakMonth(i) {
				v = 800 + g.Rand.Float64()*200
			}
			s.Labels = append(s.Labels, m)
			s.Values = append(s.Values, v)
		}
	default:
		return Series{}, eris.Wrapf(ErrUnknownPeriod, "%q", string(p))
	}
	return s, nil
}

// isPeakMonth reports winter and monsoon months: Jan, Feb, Jun, Jul, Nov, Dec.
func isPeakMonth(i int) bool {
	return i < 2 || i > 9 || (i > 4 && i < 7)
}

// Operator returns n uniform values in [lo, hi).
func (g *Generator) Operator(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + g.Rand.Float64()*(hi-lo)
	}
	return out
}

// Consumption is the operator's 30-day consumption chart.
func (g *Generator) Consumption() Series {
	return Series{Labels: DayLabels(30), Values: g.Operator(30, 135, 150)}
}

// Production is the operator's 30-day production chart.
func (g *Generator) Production() Series {
	return Series{Labels: DayLabels(30), Values: g.Operator(30, 20, 40)}
}

// SimulateForecast returns a household forecast string such as "42.7 kWh".
func (g *Generator) SimulateForecast() string {
	return fmt.Sprintf("%.1f kWh", 30+g.Rand.Float64()*20)
}

// DayLabels returns "Day 1" .. "Day n".
func DayLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Day %d", i+1)
	}
	return out
}
