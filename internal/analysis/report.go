package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
	"github.com/KaramelBytes/survivorlens/internal/query"
)

// ReportOptions controls optional report sections.
type ReportOptions struct {
	HistogramBins int
	// Estimate adds a survival estimate section when non-nil.
	Estimate *query.Query
	Window   query.Window
}

// DefaultReportOptions returns sensible defaults.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{HistogramBins: DefaultBins, Window: query.DefaultWindow}
}

// Report bundles every dashboard view of a filtered dataset.
type Report struct {
	Name        string             `json:"name" yaml:"name"`
	LoadID      string             `json:"load_id" yaml:"load_id"`
	Metrics     Metrics            `json:"metrics" yaml:"metrics"`
	FareBuckets []query.BucketRate `json:"fare_buckets" yaml:"fare_buckets"`
	ClassSex    query.Aggregation  `json:"class_sex" yaml:"class_sex"`
	BySex       []CategoryCount    `json:"by_sex" yaml:"by_sex"`
	ByClass     []CategoryCount    `json:"by_class" yaml:"by_class"`
	Ages        AgeHistogram       `json:"ages" yaml:"ages"`
	Corr        *CorrMatrix        `json:"correlations,omitempty" yaml:"correlations,omitempty"`
	Query       *query.Query       `json:"query,omitempty" yaml:"query,omitempty"`
	Estimate    *query.Estimate    `json:"estimate,omitempty" yaml:"estimate,omitempty"`
	Warnings    []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// BuildReport computes all report sections over d.
func BuildReport(d *manifest.Dataset, opt ReportOptions) *Report {
	if opt.HistogramBins <= 0 {
		opt.HistogramBins = DefaultBins
	}
	if opt.Window == (query.Window{}) {
		opt.Window = query.DefaultWindow
	}
	r := &Report{
		Name:        d.Source(),
		LoadID:      d.ID(),
		Metrics:     Summarize(d),
		FareBuckets: query.SurvivalByFareBucket(d),
		Ages:        AgeHistograms(d, opt.HistogramBins),
		Corr:        Correlations(d),
	}
	r.ClassSex, _ = query.AggregateMean(d, manifest.ColumnClass, manifest.ColumnSex)
	r.BySex, r.ByClass = Demographics(d)

	if d.Len() == 0 {
		r.Warnings = append(r.Warnings, "no passengers match the current filters")
	}
	if d.Len() > 0 && r.Metrics.AgeKnown < d.Len() {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d passengers have no recorded age", d.Len()-r.Metrics.AgeKnown))
	}
	if d.Len() > 0 && r.Metrics.FareKnown < d.Len() {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d passengers have no recorded fare and no fare bucket", d.Len()-r.Metrics.FareKnown))
	}
	if r.Corr == nil {
		r.Warnings = append(r.Warnings, "correlations skipped: fewer than two numeric columns")
	}

	if opt.Estimate != nil {
		q := *opt.Estimate
		r.Query = &q
		if est, ok := query.EstimateSurvivalWithin(d, q, opt.Window); ok {
			r.Estimate = &est
			if est.Support < 5 {
				r.Warnings = append(r.Warnings, fmt.Sprintf("survival estimate rests on only %d passengers", est.Support))
			}
		}
	}
	return r
}

// Markdown renders the report as plain sectioned text.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	if r.LoadID != "" {
		b.WriteString(fmt.Sprintf("Load ID: %s\n", r.LoadID))
	}
	m := r.Metrics
	b.WriteString(fmt.Sprintf("Passengers: %d\n", m.Passengers))
	b.WriteString(fmt.Sprintf("Survivors: %d (%.1f%%)\n", m.Survivors, m.SurvivalRate*100))
	b.WriteString(fmt.Sprintf("Average age: %.1f (known for %d)\n", m.AverageAge, m.AgeKnown))
	b.WriteString(fmt.Sprintf("Average fare: %.2f (known for %d)\n", m.AverageFare, m.FareKnown))

	b.WriteString("\n[SURVIVAL BY FARE]\n")
	for _, br := range r.FareBuckets {
		if !br.Present {
			b.WriteString(fmt.Sprintf("- %s: no passengers\n", br.Bucket))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %.1f%% (n=%d)\n", br.Bucket, br.Rate*100, br.Count))
	}

	if len(r.ClassSex.Groups) > 0 {
		b.WriteString("\n[SURVIVAL BY CLASS & SEX]\n")
		b.WriteString("| Class | Sex | Passengers | Survival |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, g := range r.ClassSex.Groups {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %.1f%% |\n", g.Keys[0], g.Keys[1], g.Count, g.Mean*100))
		}
	}

	if len(r.BySex) > 0 || len(r.ByClass) > 0 {
		b.WriteString("\n[DEMOGRAPHICS]\n")
		writeCounts(&b, "By sex", r.BySex)
		writeCounts(&b, "By class", r.ByClass)
	}

	if len(r.Ages.Facets) > 0 {
		b.WriteString("\n[AGE DISTRIBUTION]\n")
		e := r.Ages.Edges
		b.WriteString(fmt.Sprintf("%d bins from %.1f to %.1f\n", len(e)-1, e[0], e[len(e)-1]))
		for _, f := range r.Ages.Facets {
			b.WriteString(fmt.Sprintf("- %s:\n", f.Sex))
			for i := range f.Survived {
				if f.Survived[i] == 0 && f.Perished[i] == 0 {
					continue
				}
				b.WriteString(fmt.Sprintf("  • %.1f–%.1f: survived %d, perished %d\n", e[i], e[i+1], f.Survived[i], f.Perished[i]))
			}
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Corr.TopPairs(10) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	if r.Query != nil {
		q := r.Query
		b.WriteString("\n[SURVIVAL ESTIMATE]\n")
		b.WriteString(fmt.Sprintf("Passenger: %s, class %d, age %.1f, fare %.2f\n", q.Sex, q.Class, q.Age, q.Fare))
		if r.Estimate == nil {
			b.WriteString("No comparable passengers found\n")
		} else {
			b.WriteString(fmt.Sprintf("Estimated survival probability: %.1f%% (from %d passengers)\n", r.Estimate.Probability*100, r.Estimate.Support))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeCounts(b *strings.Builder, label string, counts []CategoryCount) {
	if len(counts) == 0 {
		return
	}
	b.WriteString(label + ": ")
	for i, kv := range counts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s(%d)", kv.Value, kv.Count))
	}
	b.WriteString("\n")
}
