package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
	"github.com/KaramelBytes/survivorlens/internal/query"
	"github.com/KaramelBytes/survivorlens/internal/utils"
)

// noPort selects passengers without a recorded embarkation port.
const noPort = "none"

// filterFlags are the dashboard's sidebar filters, shared by data commands.
type filterFlags struct {
	sexes     []string
	classes   []int
	ports     []string
	ageMin    float64
	ageMax    float64
	fareMin   float64
	fareMax   float64
	hasFamily bool
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.sexes, "sex", nil, "keep these sexes (repeatable or comma-separated; default all)")
	fs.IntSliceVar(&f.classes, "class", nil, "keep these passenger classes, e.g. 1,3 (default all)")
	fs.StringSliceVar(&f.ports, "port", nil, "keep these embarkation ports, e.g. S,C; \""+noPort+"\" for unknown (default all)")
	fs.Float64Var(&f.ageMin, "age-min", 0, "minimum age (inclusive)")
	fs.Float64Var(&f.ageMax, "age-max", 0, "maximum age (inclusive)")
	fs.Float64Var(&f.fareMin, "fare-min", 0, "minimum fare (inclusive)")
	fs.Float64Var(&f.fareMax, "fare-max", 0, "maximum fare (inclusive)")
	fs.BoolVar(&f.hasFamily, "family", false, "only passengers travelling with family")
}

// selection turns the flags that were actually set into a query.Selection.
func (f *filterFlags) selection(cmd *cobra.Command) (query.Selection, error) {
	fs := cmd.Flags()
	var sel query.Selection
	if fs.Changed("sex") {
		sel.Sexes = append([]string{}, f.sexes...)
	}
	if fs.Changed("class") {
		for _, c := range f.classes {
			if c <= 0 {
				return query.Selection{}, fmt.Errorf("invalid --class: %d", c)
			}
		}
		sel.Classes = append([]int{}, f.classes...)
	}
	if fs.Changed("port") {
		sel.Ports = make([]string, 0, len(f.ports))
		for _, p := range f.ports {
			if strings.EqualFold(p, noPort) {
				p = ""
			}
			sel.Ports = append(sel.Ports, p)
		}
	}
	optional := func(name string, v float64) *float64 {
		if !fs.Changed(name) {
			return nil
		}
		return manifest.Float(v)
	}
	sel.AgeMin = optional("age-min", f.ageMin)
	sel.AgeMax = optional("age-max", f.ageMax)
	sel.FareMin = optional("fare-min", f.fareMin)
	sel.FareMax = optional("fare-max", f.fareMax)
	sel.HasFamily = f.hasFamily
	return sel, nil
}

// filteredDataset loads the dataset and applies the command's filters.
func filteredDataset(cmd *cobra.Command, f *filterFlags) (*manifest.Dataset, error) {
	sel, err := f.selection(cmd)
	if err != nil {
		return nil, err
	}
	d, err := loadDataset(cmd)
	if err != nil {
		return nil, err
	}
	spec, err := sel.Spec(d)
	if err != nil {
		return nil, err
	}
	return query.Filter(d, spec), nil
}

// outputFormat resolves --format against the configured default.
func outputFormat(flag string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" && cfg != nil {
		format = cfg.OutputFormat
	}
	switch format {
	case "", "table":
		return "table", nil
	case "json", "yaml":
		return format, nil
	}
	return "", fmt.Errorf("unsupported --format: %s (use table, json or yaml)", flag)
}

// writeStructured renders v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	var b []byte
	var err error
	switch format {
	case "json":
		b, err = utils.PrettyJSON(v)
		if err == nil {
			b = append(b, '\n')
		}
	case "yaml":
		b, err = yaml.Marshal(v)
		if err != nil {
			err = fmt.Errorf("marshal yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
