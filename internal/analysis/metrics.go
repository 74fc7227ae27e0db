package analysis

import (
	"sort"
	"strconv"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// Metrics are the headline numbers for a view. Averages skip records with
// no value; an empty view yields zeros.
type Metrics struct {
	Passengers   int     `json:"passengers" yaml:"passengers"`
	Survivors    int     `json:"survivors" yaml:"survivors"`
	SurvivalRate float64 `json:"survival_rate" yaml:"survival_rate"`
	AverageAge   float64 `json:"average_age" yaml:"average_age"`
	AgeKnown     int     `json:"age_known" yaml:"age_known"`
	AverageFare  float64 `json:"average_fare" yaml:"average_fare"`
	FareKnown    int     `json:"fare_known" yaml:"fare_known"`
}

// Summarize computes Metrics over d.
func Summarize(d *manifest.Dataset) Metrics {
	var m Metrics
	var ageSum, fareSum float64
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		m.Passengers++
		if r.Survived {
			m.Survivors++
		}
		if r.Age != nil {
			ageSum += *r.Age
			m.AgeKnown++
		}
		if r.Fare != nil {
			fareSum += *r.Fare
			m.FareKnown++
		}
	}
	if m.Passengers > 0 {
		m.SurvivalRate = float64(m.Survivors) / float64(m.Passengers)
	}
	if m.AgeKnown > 0 {
		m.AverageAge = ageSum / float64(m.AgeKnown)
	}
	if m.FareKnown > 0 {
		m.AverageFare = fareSum / float64(m.FareKnown)
	}
	return m
}

// CategoryCount is one slice of a demographics breakdown.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Demographics counts passengers by sex and by class, largest first.
func Demographics(d *manifest.Dataset) (bySex, byClass []CategoryCount) {
	sex := map[string]int{}
	class := map[string]int{}
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		if r.Sex != "" {
			sex[r.Sex]++
		}
		if r.Class > 0 {
			class[classLabel(r.Class)]++
		}
	}
	return topValues(sex), topValues(class)
}

func topValues(m map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

func classLabel(c int) string {
	switch c {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	}
	return strconv.Itoa(c)
}
