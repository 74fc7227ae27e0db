package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
	"github.com/KaramelBytes/survivorlens/internal/query"
)

var (
	aggFilters filterFlags
	aggBy      []string
	aggFormat  string
	aggFare    bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Survival rate grouped by one or two columns",
	Long: `Group the filtered passengers by one or two of ` + strings.Join(query.GroupableColumns(), ", ") + `
and report each group's size and survival rate. --fare-buckets prints all four
fare buckets, including empty ones.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(aggFormat)
		if err != nil {
			return err
		}
		view, err := filteredDataset(cmd, &aggFilters)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if aggFare {
			buckets := query.SurvivalByFareBucket(view)
			if format != "table" {
				return writeStructured(w, format, buckets)
			}
			rows := make([][]string, 0, len(buckets))
			for _, b := range buckets {
				rate := "-"
				if b.Present {
					rate = percent(b.Rate)
				}
				rows = append(rows, []string{b.Bucket, strconv.Itoa(b.Count), rate})
			}
			renderTable(w, []string{manifest.ColumnFareBucket, "Passengers", "Survival"}, rows)
			return nil
		}

		by := aggBy
		if len(by) == 0 {
			by = []string{manifest.ColumnClass}
		}
		agg, err := query.AggregateMean(view, by...)
		if err != nil {
			return err
		}
		if format != "table" {
			return writeStructured(w, format, agg)
		}
		if len(agg.Groups) == 0 {
			fmt.Fprintln(w, "(no passengers)")
			return nil
		}
		rows := make([][]string, 0, len(agg.Groups))
		for _, g := range agg.Groups {
			row := append([]string{}, g.Keys...)
			rows = append(rows, append(row, strconv.Itoa(g.Count), percent(g.Mean)))
		}
		renderTable(w, append(append([]string{}, agg.Columns...), "Passengers", "Survival"), rows)
		return nil
	},
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
}

func percent(v float64) string { return fmt.Sprintf("%.1f%%", v*100) }

func init() {
	rootCmd.AddCommand(aggregateCmd)
	addFilterFlags(aggregateCmd, &aggFilters)
	aggregateCmd.Flags().StringSliceVar(&aggBy, "by", nil, "one or two grouping columns, e.g. Pclass,Sex (default Pclass)")
	aggregateCmd.Flags().StringVar(&aggFormat, "format", "", "output format: table|json|yaml (default from config)")
	aggregateCmd.Flags().BoolVar(&aggFare, "fare-buckets", false, "survival by fare bucket in fixed bucket order")
}
