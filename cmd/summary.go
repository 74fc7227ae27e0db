package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/survivorlens/internal/analysis"
)

var (
	sumFilters filterFlags
	sumFormat  string
)

type summaryOutput struct {
	LoadID   string           `json:"load_id" yaml:"load_id"`
	Source   string           `json:"source" yaml:"source"`
	LoadedAt time.Time        `json:"loaded_at" yaml:"loaded_at"`
	Total    int              `json:"total" yaml:"total"`
	Metrics  analysis.Metrics `json:"metrics" yaml:"metrics"`
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show headline metrics for the filtered passengers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(sumFormat)
		if err != nil {
			return err
		}
		full, err := loadDataset(cmd)
		if err != nil {
			return err
		}
		view, err := filteredDataset(cmd, &sumFilters)
		if err != nil {
			return err
		}
		out := summaryOutput{
			LoadID:   full.ID(),
			Source:   full.Source(),
			LoadedAt: full.LoadedAt(),
			Total:    full.Len(),
			Metrics:  analysis.Summarize(view),
		}
		w := cmd.OutOrStdout()
		if format != "table" {
			return writeStructured(w, format, out)
		}
		m := out.Metrics
		fmt.Fprintf(w, "Source: %s (load %s)\n", out.Source, out.LoadID)
		fmt.Fprintf(w, "Passengers: %d of %d\n", m.Passengers, out.Total)
		fmt.Fprintf(w, "Survivors: %d\n", m.Survivors)
		fmt.Fprintf(w, "Survival rate: %.1f%%\n", m.SurvivalRate*100)
		fmt.Fprintf(w, "Average age: %.1f\n", m.AverageAge)
		fmt.Fprintf(w, "Average fare: %.2f\n", m.AverageFare)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addFilterFlags(summaryCmd, &sumFilters)
	summaryCmd.Flags().StringVar(&sumFormat, "format", "", "output format: table|json|yaml (default from config)")
}
