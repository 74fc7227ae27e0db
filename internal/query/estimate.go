package query

import "github.com/KaramelBytes/survivorlens/internal/manifest"

// Query describes a hypothetical passenger.
type Query struct {
	Sex   string  `json:"sex" yaml:"sex"`
	Class int     `json:"class" yaml:"class"`
	Age   float64 `json:"age" yaml:"age"`
	Fare  float64 `json:"fare" yaml:"fare"`
}

// Window is the half-width of the age and fare match intervals.
type Window struct {
	Age  float64 `json:"age" yaml:"age"`
	Fare float64 `json:"fare" yaml:"fare"`
}

// DefaultWindow matches ages within 5 years and fares within 20.
var DefaultWindow = Window{Age: 5, Fare: 20}

// Estimate is the raw empirical survival frequency among comparable
// passengers. It is not a model: no smoothing, no confidence interval, and a
// Support of 1 yields a probability of exactly 0 or 1.
type Estimate struct {
	Probability float64 `json:"probability" yaml:"probability"`
	Support     int     `json:"support" yaml:"support"`
}

// EstimateSurvival uses DefaultWindow. See EstimateSurvivalWithin.
func EstimateSurvival(d *manifest.Dataset, q Query) (Estimate, bool) {
	return EstimateSurvivalWithin(d, q, DefaultWindow)
}

// EstimateSurvivalWithin matches records with the same sex and class whose age
// lies in [q.Age-w.Age, q.Age+w.Age] and fare in [q.Fare-w.Fare, q.Fare+w.Fare]
// (inclusive). Records missing age or fare never match. The second result is
// false when nothing matched (no data, not an error).
func EstimateSurvivalWithin(d *manifest.Dataset, q Query, w Window) (Estimate, bool) {
	ages := Range{Min: q.Age - w.Age, Max: q.Age + w.Age}
	fares := Range{Min: q.Fare - w.Fare, Max: q.Fare + w.Fare}
	var matched, survived int
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		if r.Sex != q.Sex || r.Class != q.Class {
			continue
		}
		if r.Age == nil || !ages.Contains(*r.Age) {
			continue
		}
		if r.Fare == nil || !fares.Contains(*r.Fare) {
			continue
		}
		matched++
		if r.Survived {
			survived++
		}
	}
	if matched == 0 {
		return Estimate{}, false
	}
	return Estimate{Probability: float64(survived) / float64(matched), Support: matched}, true
}
