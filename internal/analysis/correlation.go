package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"` // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

type numericColumn struct {
	name string
	get  func(manifest.Record) (float64, bool)
}

var corrColumns = []numericColumn{
	{manifest.ColumnAge, func(r manifest.Record) (float64, bool) {
		if r.Age == nil {
			return 0, false
		}
		return *r.Age, true
	}},
	{manifest.ColumnFare, func(r manifest.Record) (float64, bool) {
		if r.Fare == nil {
			return 0, false
		}
		return *r.Fare, true
	}},
	{manifest.ColumnClass, func(r manifest.Record) (float64, bool) { return float64(r.Class), r.Class > 0 }},
	{manifest.ColumnSibSp, func(r manifest.Record) (float64, bool) { return float64(r.SibSp), true }},
	{manifest.ColumnParch, func(r manifest.Record) (float64, bool) { return float64(r.Parch), true }},
	{manifest.ColumnSurvived, func(r manifest.Record) (float64, bool) { return r.Outcome(), true }},
}

// Correlations computes pairwise-complete Pearson correlations among Age,
// Fare, Pclass, SibSp, Parch and Survived, restricted to columns present in
// the source header. Undefined correlations (zero variance, fewer than two
// shared observations) are reported as 0. Returns nil when fewer than two
// columns are available.
func Correlations(d *manifest.Dataset) *CorrMatrix {
	var cols []numericColumn
	for _, c := range corrColumns {
		if d.HasColumn(c.name) {
			cols = append(cols, c)
		}
	}
	n := len(cols)
	if n < 2 {
		return nil
	}

	// running means and centered co-moments, so a constant column keeps
	// an exact zero variance
	type pairAcc struct {
		n            float64
		meanX, meanY float64
		m2X, m2Y     float64
		cXY          float64
	}
	pair := make([]pairAcc, n*n) // key = i*n + j with i>j
	xs := make([]float64, n)
	ok := make([]bool, n)
	for row := 0; row < d.Len(); row++ {
		r := d.At(row)
		for j, c := range cols {
			xs[j], ok[j] = c.get(r)
		}
		for a := 1; a < n; a++ {
			if !ok[a] {
				continue
			}
			for b := 0; b < a; b++ {
				if !ok[b] {
					continue
				}
				x, y := xs[a], xs[b]
				pa := &pair[a*n+b]
				pa.n++
				dx := x - pa.meanX
				pa.meanX += dx / pa.n
				dy := y - pa.meanY
				pa.meanY += dy / pa.n
				pa.m2X += dx * (x - pa.meanX)
				pa.m2Y += dy * (y - pa.meanY)
				pa.cXY += dx * (y - pa.meanY)
			}
		}
	}

	names := make([]string, n)
	mat := make([][]float64, n)
	for i := range mat {
		names[i] = cols[i].name
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				mat[a][b] = 1
				continue
			}
			pa := pair[max(a, b)*n+min(a, b)]
			if pa.n < 2 || pa.m2X <= 0 || pa.m2Y <= 0 {
				continue
			}
			r := pa.cXY / math.Sqrt(pa.m2X*pa.m2Y)
			if r > 1 {
				r = 1
			} else if r < -1 {
				r = -1
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			mat[a][b] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

// TopPairs lists the strongest off-diagonal pairs by |r|, at most limit.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	if m == nil {
		return nil
	}
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
