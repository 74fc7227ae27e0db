package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/survivorlens/internal/utils"
)

var (
	fltFilters filterFlags
	fltOutput  string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Export the filtered passengers as CSV",
	Long: `Write the passengers matching the filters as CSV, with the source's original
header and cell text. Without --output the CSV goes to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := filteredDataset(cmd, &fltFilters)
		if err != nil {
			return err
		}
		if fltOutput == "" {
			return view.WriteCSV(cmd.OutOrStdout())
		}
		var buf bytes.Buffer
		if err := view.WriteCSV(&buf); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(fltOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d passengers to %s\n", view.Len(), fltOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	addFilterFlags(filterCmd, &fltFilters)
	filterCmd.Flags().StringVarP(&fltOutput, "output", "o", "", "write CSV to this path (e.g. titanic_filtered.csv)")
}
