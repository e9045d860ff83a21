package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type statsOptions struct {
	NodeType string
	Param    string
}

var statsOpts = &statsOptions{}

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print parameter-usage aggregates for a node type",
	RunE:  runStats,
}

func init() {
	StatsCmd.Flags().StringVarP(&statsOpts.NodeType, "type", "t", "", "node type to aggregate (required)")
	StatsCmd.Flags().StringVarP(&statsOpts.Param, "param", "p", "", "restrict to a single parameter name")
	StatsCmd.MarkFlagRequired("type")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.Stats(ctx, statsOpts.NodeType, statsOpts.Param)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("no parameters with enough samples to summarize")
		return nil
	}

	for _, r := range rows {
		fmt.Printf("%s.%s\tsamples=%d\tmin=%g\tmax=%g\tmean=%g\tmodified=%d\tusage_range=[%g, %g]\n",
			r.NodeType, r.ParamName, r.SampleCount, r.Min, r.Max, r.Mean, r.ModifiedCount, r.UsageRangeLo, r.UsageRangeHi)
	}
	return nil
}
