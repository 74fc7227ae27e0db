package query

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether min <= v <= max. A malformed range contains nothing.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

func (r Range) validate(name string) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("%s range has a NaN bound", name)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s range min %g exceeds max %g", name, r.Min, r.Max)
	}
	return nil
}

// RangeFrom builds a range from optional bounds. A missing side is open
// (infinite); with neither bound given the result is nil.
func RangeFrom(lo, hi *float64) *Range {
	if lo == nil && hi == nil {
		return nil
	}
	r := &Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if lo != nil {
		r.Min = *lo
	}
	if hi != nil {
		r.Max = *hi
	}
	return r
}

// FilterSpec selects passengers. All predicates combine with AND.
//
// The three sets are always applied: a record passes only if its value is a
// member, so an empty set selects nothing. Age and Fare apply only when set;
// a set range excludes records with no value for that field.
type FilterSpec struct {
	Sexes     []string `json:"sexes" yaml:"sexes"`
	Classes   []int    `json:"classes" yaml:"classes"`
	Ports     []string `json:"ports" yaml:"ports"`
	Age       *Range   `json:"age,omitempty" yaml:"age,omitempty"`
	Fare      *Range   `json:"fare,omitempty" yaml:"fare,omitempty"`
	HasFamily bool     `json:"has_family" yaml:"has_family"`
}

// ErrMalformedSpec is returned by Validate for ranges with min > max.
var ErrMalformedSpec = errors.New("malformed filter")

// Validate rejects malformed ranges. Filter itself never fails; it treats a
// malformed range as matching nothing.
func (s FilterSpec) Validate() error {
	if s.Age != nil {
		if err := s.Age.validate("age"); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedSpec, err)
		}
	}
	if s.Fare != nil {
		if err := s.Fare.validate("fare"); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedSpec, err)
		}
	}
	return nil
}

// Filter returns the records of d matching spec, in d's order. d is not
// modified; the result shares its records.
func Filter(d *manifest.Dataset, spec FilterSpec) *manifest.Dataset {
	sexes := toSet(spec.Sexes)
	ports := toSet(spec.Ports)
	classes := make(map[int]bool, len(spec.Classes))
	for _, c := range spec.Classes {
		classes[c] = true
	}

	n := d.Len()
	out := make([]manifest.Record, 0, n)
	for i := 0; i < n; i++ {
		r := d.At(i)
		if !sexes[r.Sex] || !classes[r.Class] || !ports[r.Embarked] {
			continue
		}
		if spec.Age != nil && (r.Age == nil || !spec.Age.Contains(*r.Age)) {
			continue
		}
		if spec.Fare != nil && (r.Fare == nil || !spec.Fare.Contains(*r.Fare)) {
			continue
		}
		if spec.HasFamily && !r.HasFamily() {
			continue
		}
		out = append(out, r)
	}
	return d.Derive(out)
}

// DefaultSpec selects everything in d: every sex, class and port present
// (including the absent port ""), no ranges, no family requirement.
func DefaultSpec(d *manifest.Dataset) FilterSpec {
	var spec FilterSpec
	seenSex := map[string]bool{}
	seenPort := map[string]bool{}
	seenClass := map[int]bool{}
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		if !seenSex[r.Sex] {
			seenSex[r.Sex] = true
			spec.Sexes = append(spec.Sexes, r.Sex)
		}
		if !seenPort[r.Embarked] {
			seenPort[r.Embarked] = true
			spec.Ports = append(spec.Ports, r.Embarked)
		}
		if !seenClass[r.Class] {
			seenClass[r.Class] = true
			spec.Classes = append(spec.Classes, r.Class)
		}
	}
	sort.Ints(spec.Classes)
	return spec
}

// AgeBounds returns the observed age range; false when no record has an age.
func AgeBounds(d *manifest.Dataset) (Range, bool) {
	return bounds(d, func(r manifest.Record) *float64 { return r.Age })
}

// FareBounds returns the observed fare range; false when no record has a fare.
func FareBounds(d *manifest.Dataset) (Range, bool) {
	return bounds(d, func(r manifest.Record) *float64 { return r.Fare })
}

func bounds(d *manifest.Dataset, get func(manifest.Record) *float64) (Range, bool) {
	rg := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	for i := 0; i < d.Len(); i++ {
		v := get(d.At(i))
		if v == nil {
			continue
		}
		found = true
		rg.Min = math.Min(rg.Min, *v)
		rg.Max = math.Max(rg.Max, *v)
	}
	if !found {
		return Range{}, false
	}
	return rg, true
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
