package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// DefaultBins matches the dashboard's age distribution chart.
const DefaultBins = 20

// AgeHistogram is an equal-width age histogram faceted by sex, with counts
// split by outcome. Edges has len(bins)+1 entries; the last bin includes the
// upper edge.
type AgeHistogram struct {
	Edges  []float64  `json:"edges" yaml:"edges"`
	Facets []AgeFacet `json:"facets" yaml:"facets"`
}

// AgeFacet holds one sex's bin counts.
type AgeFacet struct {
	Sex      string `json:"sex" yaml:"sex"`
	Survived []int  `json:"survived" yaml:"survived"`
	Perished []int  `json:"perished" yaml:"perished"`
}

// AgeHistograms bins the ages in d. Records without an age or a sex are
// skipped. All facets share the same edges, spanning the view's age range.
func AgeHistograms(d *manifest.Dataset, bins int) AgeHistogram {
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		if r.Age == nil || r.Sex == "" {
			continue
		}
		lo = math.Min(lo, *r.Age)
		hi = math.Max(hi, *r.Age)
	}
	if math.IsInf(lo, 1) {
		return AgeHistogram{}
	}
	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	facets := map[string]*AgeFacet{}
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		if r.Age == nil || r.Sex == "" {
			continue
		}
		f := facets[r.Sex]
		if f == nil {
			f = &AgeFacet{Sex: r.Sex, Survived: make([]int, bins), Perished: make([]int, bins)}
			facets[r.Sex] = f
		}
		b := 0
		if width > 0 {
			b = int((*r.Age - lo) / width)
		}
		if b >= bins {
			b = bins - 1
		}
		if r.Survived {
			f.Survived[b]++
		} else {
			f.Perished[b]++
		}
	}

	out := AgeHistogram{Edges: edges, Facets: make([]AgeFacet, 0, len(facets))}
	for _, f := range facets {
		out.Facets = append(out.Facets, *f)
	}
	sort.Slice(out.Facets, func(i, j int) bool { return out.Facets[i].Sex < out.Facets[j].Sex })
	return out
}
