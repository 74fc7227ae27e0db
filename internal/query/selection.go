package query

import "github.com/KaramelBytes/survivorlens/internal/manifest"

// Selection is a filter as a user states it: nil sets mean "every value
// present in the data", and each range bound is optional.
type Selection struct {
	Sexes   []string
	Classes []int
	Ports   []string

	AgeMin, AgeMax   *float64
	FareMin, FareMax *float64

	HasFamily bool
}

// Spec resolves s against d into a validated FilterSpec.
func (s Selection) Spec(d *manifest.Dataset) (FilterSpec, error) {
	spec := DefaultSpec(d)
	if s.Sexes != nil {
		spec.Sexes = s.Sexes
	}
	if s.Classes != nil {
		spec.Classes = s.Classes
	}
	if s.Ports != nil {
		spec.Ports = s.Ports
	}
	spec.Age = RangeFrom(s.AgeMin, s.AgeMax)
	spec.Fare = RangeFrom(s.FareMin, s.FareMax)
	spec.HasFamily = s.HasFamily
	if err := spec.Validate(); err != nil {
		return FilterSpec{}, err
	}
	return spec, nil
}
