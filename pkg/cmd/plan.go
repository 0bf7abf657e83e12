package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/executor"
	"github.com/cloudera-labs/hms-mirror/pkg/metastore"
	"github.com/cloudera-labs/hms-mirror/pkg/migrator"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/translator"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

type planParams struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// plan creates the plan command.
//
// The command loads the table metadata, plans every table of the requested
// databases (all of them when none are named) and writes one plan file per
// database to the output directory. With distcp data movement the source
// lists and script for each database are written next to the plan.
//
// Example usage:
//
//	# Plan every database of the metadata document
//	hms-mirror plan
//
//	# Plan two databases and replay the SQL through the execute connections
//	hms-mirror plan --execute sales finance
func plan(p planParams) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Plan the migration of the configured databases",
		ArgsUsage: "[database...]",
		Description: `Plan the DDL and data movement for every table of the given databases.

Tables are read from the metadata document (metastore.metadata_file) and,
when a metastore driver is configured, partition locations are read from the
metastore's backing database. Each database gets a directory in the output
directory holding its plan and, for distcp data movement, its distcp files.

With a ledger_file, tables processed by an earlier run are skipped.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "the config file (yaml or toml)",
				Sources: cli.EnvVars("HMS_MIRROR_CONFIG"),
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "metadata",
				Aliases: []string{"m"},
				Usage:   "overrides metastore.metadata_file",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "overrides output_dir",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  "execute",
				Usage: "replay the planned SQL through the execute connections",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(p.Config, cmd.String("config"))
			if err != nil {
				return err
			}

			if metadata := cmd.String("metadata"); metadata != "" {
				cfg.Metastore.MetadataFile = metadata
			}
			if output := cmd.String("output"); output != "" {
				cfg.OutputDir = output
			}

			return runPlan(ctx, cmd, cfg)
		},
	}
}

func runPlan(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		log.Debug("Resolved configuration:\n" + spew.Sdump(cfg))
	}

	provider, closeProvider, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	var ledger *migrator.Ledger
	if cfg.LedgerFile != "" {
		if ledger, err = migrator.OpenLedger(cfg.LedgerFile); err != nil {
			return err
		}
		defer func() { _ = ledger.Close() }()
	}

	mc := migrator.Config{Settings: cfg, Provider: provider, Ledger: ledger}
	if cmd.Bool("execute") {
		exec, closeExec, err := openExecutor(cfg)
		if err != nil {
			return err
		}
		defer closeExec()
		mc.Executor = exec
	}

	log.WithFields(log.Fields{
		"strategy":   cfg.DataStrategy,
		"run_marker": cfg.RunMarker,
		"workers":    cfg.Workers,
	}).Info("Starting migration plan")

	m := migrator.New(mc)
	dbs, runErr := m.Run(ctx, cmd.Args().Slice()...)

	// Records planned before an interruption are still written.
	if len(dbs) > 0 {
		if err := writePlans(cfg, m.Translator(), dbs); err != nil {
			return err
		}
		printSummary(cmd.Root().Writer, dbs)
	}

	return runErr
}

// openProvider returns the metadata document provider, overlaid with the
// partitions of the metastore's backing database when a driver is set.
func openProvider(cfg *config.Config) (metastore.Provider, func(), error) {
	if cfg.Metastore.MetadataFile == "" {
		return nil, nil, errors.New("metastore.metadata_file is required")
	}

	file, err := metastore.LoadFile(cfg.Metastore.MetadataFile)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Metastore.Driver == "" {
		return file, func() {}, nil
	}

	direct, err := metastore.OpenDirect(cfg.Metastore.Driver, cfg.Metastore.DSN, file)
	if err != nil {
		return nil, nil, err
	}

	return direct, func() { _ = direct.Close() }, nil
}

// openExecutor connects to the LEFT and RIGHT clusters with the execute
// driver. Environments without a DSN are not replayed.
func openExecutor(cfg *config.Config) (*executor.Executor, func(), error) {
	if cfg.Execute.Driver == "" {
		return nil, nil, errors.New("--execute requires the execute section of the config")
	}

	dsns := map[mirror.Environment]string{
		mirror.LEFT:  cfg.Execute.LeftDSN,
		mirror.RIGHT: cfg.Execute.RightDSN,
	}

	var opened []*sql.DB
	closeAll := func() {
		for _, db := range opened {
			_ = db.Close()
		}
	}

	conns := make(map[mirror.Environment]executor.Conn, len(dsns))
	for env, dsn := range dsns {
		if dsn == "" {
			continue
		}

		db, err := sql.Open(cfg.Execute.Driver, dsn)
		if err != nil {
			closeAll()
			return nil, nil, errors.Wrapf(err, "failed to open %s connection", env)
		}
		opened = append(opened, db)
		conns[env] = db
	}

	return executor.New(executor.Config{Connections: conns}), closeAll, nil
}

// writePlans writes <output>/<db>/hms-mirror-plan.yaml for every database,
// plus the distcp files when data moves with distcp.
func writePlans(cfg *config.Config, tr *translator.Translator, dbs []*mirror.DBMirror) error {
	base := cfg.OutputDir
	if base == "" {
		base = "."
	}

	for _, dbm := range dbs {
		dir := filepath.Join(base, dbm.Name)
		if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create output directory: %s", dir)
		}

		if err := writeYAML(filepath.Join(dir, consts.DefaultPlanFile), dbm); err != nil {
			return err
		}

		if !cfg.IsDistcp() {
			continue
		}

		for _, env := range []mirror.Environment{mirror.LEFT, mirror.RIGHT} {
			dp := tr.DistcpScript(dbm.Name, env, cfg.Translator.ConsolidationLevelBase)
			if len(dp.SourceLists) == 0 {
				continue
			}

			for name, content := range dp.SourceLists {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), consts.ModeFile); err != nil {
					return errors.Wrapf(err, "failed to write distcp source list %s", name)
				}
			}

			script := filepath.Join(dir, fmt.Sprintf("%s_%s_distcp_script.sh", dbm.Name, env))
			if err := os.WriteFile(script, []byte(dp.Script), consts.ModeDir); err != nil {
				return errors.Wrapf(err, "failed to write distcp script %s", script)
			}
		}

		log.WithFields(log.Fields{
			"db":        dbm.Name,
			"directory": dir,
		}).Info("Wrote migration plan")
	}

	return nil
}

func writeYAML(path string, v any) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.ModeFile)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	return errors.Wrapf(enc.Close(), "failed to flush %s", path)
}

func printSummary(w io.Writer, dbs []*mirror.DBMirror) {
	for _, dbm := range dbs {
		counts := make(map[mirror.PhaseState]int)
		for _, tm := range dbm.Tables() {
			counts[tm.PhaseState()]++
		}

		phases := make([]string, 0, len(counts))
		for phase := range counts {
			phases = append(phases, string(phase))
		}
		sort.Strings(phases)

		fmt.Fprintf(w, "%s -> %s: %d tables, %d filtered\n", dbm.Name, dbm.TargetName, len(dbm.Tables()), len(dbm.FilteredOut()))
		for _, phase := range phases {
			fmt.Fprintf(w, "  %-26s %d\n", phase, counts[mirror.PhaseState(phase)])
		}
	}
}
