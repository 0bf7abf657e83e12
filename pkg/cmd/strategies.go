package cmd

import (
	"context"
	"fmt"

	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/urfave/cli/v3"
)

// strategies lists the data strategies that may be set as data_strategy.
// Strategies only reachable through automatic selection are shown with --all.
func strategies() *cli.Command {
	return &cli.Command{
		Name:  "strategies",
		Usage: "List the available data strategies",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "include strategies selected automatically",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer

			for _, ds := range mirror.VisibleStrategies() {
				fmt.Fprintf(w, "%-38s %s\n", ds, ds.CLIName())
			}

			if !cmd.Bool("all") {
				return nil
			}

			for _, ds := range hiddenStrategies() {
				fmt.Fprintf(w, "%-38s %s (automatic)\n", ds, ds.CLIName())
			}
			return nil
		},
	}
}

func hiddenStrategies() []mirror.DataStrategy {
	var out []mirror.DataStrategy
	for _, ds := range []mirror.DataStrategy{
		mirror.ACID,
		mirror.Intermediate,
		mirror.SQLACIDDowngradeInPlace,
		mirror.ExportImportACIDDowngradeInPlace,
		mirror.HybridACIDDowngradeInPlace,
	} {
		if ds.Hidden() {
			out = append(out, ds)
		}
	}

	return out
}
