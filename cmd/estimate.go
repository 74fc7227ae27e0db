package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/survivorlens/internal/query"
)

var (
	estFilters    filterFlags
	estSex        string
	estClass      int
	estAge        float64
	estFare       float64
	estAgeWindow  float64
	estFareWindow float64
	estFormat     string
)

type estimateOutput struct {
	Query       query.Query  `json:"query" yaml:"query"`
	Window      query.Window `json:"window" yaml:"window"`
	Match       bool         `json:"match" yaml:"match"`
	Probability float64      `json:"probability" yaml:"probability"`
	Support     int          `json:"support" yaml:"support"`
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate survival for a hypothetical passenger",
	Long: `Look up passengers of the same sex and class whose age and fare fall within
the match windows, and report the fraction who survived. This is the raw
frequency among comparable passengers, not a model prediction. Filter flags
narrow the passengers considered.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(estFormat)
		if err != nil {
			return err
		}
		if estClass <= 0 {
			return fmt.Errorf("invalid --q-class: %d", estClass)
		}
		win := query.DefaultWindow
		if cfg != nil && cfg.AgeWindow > 0 {
			win.Age = cfg.AgeWindow
		}
		if cfg != nil && cfg.FareWindow > 0 {
			win.Fare = cfg.FareWindow
		}
		if cmd.Flags().Changed("age-window") {
			win.Age = estAgeWindow
		}
		if cmd.Flags().Changed("fare-window") {
			win.Fare = estFareWindow
		}
		if win.Age < 0 || win.Fare < 0 {
			return fmt.Errorf("match windows must not be negative")
		}

		view, err := filteredDataset(cmd, &estFilters)
		if err != nil {
			return err
		}
		q := query.Query{Sex: strings.TrimSpace(estSex), Class: estClass, Age: estAge, Fare: estFare}
		out := estimateOutput{Query: q, Window: win}
		if est, ok := query.EstimateSurvivalWithin(view, q, win); ok {
			out.Match = true
			out.Probability = est.Probability
			out.Support = est.Support
		}

		w := cmd.OutOrStdout()
		if format != "table" {
			return writeStructured(w, format, out)
		}
		if !out.Match {
			fmt.Fprintln(w, "No comparable passengers found")
			return nil
		}
		fmt.Fprintf(w, "Estimated survival probability: %.1f%% (from %d passengers)\n", out.Probability*100, out.Support)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	addFilterFlags(estimateCmd, &estFilters)
	f := estimateCmd.Flags()
	f.StringVar(&estSex, "q-sex", "", "passenger sex, e.g. female")
	f.IntVar(&estClass, "q-class", 0, "passenger class (1, 2 or 3)")
	f.Float64Var(&estAge, "q-age", 0, "passenger age")
	f.Float64Var(&estFare, "q-fare", 0, "fare paid")
	f.Float64Var(&estAgeWindow, "age-window", 5, "match ages within this many years (default from config)")
	f.Float64Var(&estFareWindow, "fare-window", 20, "match fares within this amount (default from config)")
	f.StringVar(&estFormat, "format", "", "output format: table|json|yaml (default from config)")
	for _, name := range []string{"q-sex", "q-class", "q-age", "q-fare"} {
		_ = estimateCmd.MarkFlagRequired(name)
	}
}
