package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/survivorlens/internal/analysis"
	"github.com/KaramelBytes/survivorlens/internal/query"
	"github.com/KaramelBytes/survivorlens/internal/utils"
)

var (
	repFilters filterFlags
	repOutput  string
	repBins    int

	repQSex   string
	repQClass int
	repQAge   float64
	repQFare  float64
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a sectioned report of the filtered passengers",
	Long: `Summarize the filtered passengers: headline metrics, survival by fare bucket
and by class & sex, demographics, age distribution and correlations. With
--q-sex the report adds a survival estimate computed among the filtered
passengers only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := filteredDataset(cmd, &repFilters)
		if err != nil {
			return err
		}
		opt := analysis.DefaultReportOptions()
		if cfg != nil && cfg.HistogramBins > 0 {
			opt.HistogramBins = cfg.HistogramBins
		}
		if cmd.Flags().Changed("bins") {
			if repBins <= 0 {
				return fmt.Errorf("invalid --bins: %d", repBins)
			}
			opt.HistogramBins = repBins
		}
		if cfg != nil {
			if cfg.AgeWindow > 0 {
				opt.Window.Age = cfg.AgeWindow
			}
			if cfg.FareWindow > 0 {
				opt.Window.Fare = cfg.FareWindow
			}
		}
		if cmd.Flags().Changed("q-sex") {
			if repQClass <= 0 {
				return fmt.Errorf("--q-class is required with --q-sex")
			}
			opt.Estimate = &query.Query{Sex: strings.TrimSpace(repQSex), Class: repQClass, Age: repQAge, Fare: repQFare}
		}
		md := analysis.BuildReport(view, opt).Markdown()

		if repOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.SafeWriteFile(repOutput, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", repOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addFilterFlags(reportCmd, &repFilters)
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "", "optional path to write the report (Markdown)")
	reportCmd.Flags().IntVar(&repBins, "bins", 0, "age histogram bins (default from config)")
	reportCmd.Flags().StringVar(&repQSex, "q-sex", "", "add a survival estimate for a passenger of this sex")
	reportCmd.Flags().IntVar(&repQClass, "q-class", 0, "estimate: passenger class")
	reportCmd.Flags().Float64Var(&repQAge, "q-age", 0, "estimate: passenger age")
	reportCmd.Flags().Float64Var(&repQFare, "q-fare", 0, "estimate: fare paid")
}
