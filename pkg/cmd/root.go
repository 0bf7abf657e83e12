package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates the hms-mirror CLI application and runs it once fx starts.
//
// Global Flags:
//   - --dir, -d: Working directory holding hms-mirror.yaml (defaults to current directory)
//   - --log-level: One of trace, debug, info, warn or error
//
// Example usage:
//
//	hms-mirror --log-level debug plan sales finance
//	hms-mirror strategies
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "hms-mirror",
		Usage: "Plan the migration of Hive tables between metastores",
		Description: `hms-mirror reads the table definitions of a LEFT Hive metastore and plans
the DDL, data movement and location translation needed to recreate them on a
RIGHT cluster. The plan is written as YAML and can optionally be replayed.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the working directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			logLevelFlag,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := setLogLevel(cmd.String("log-level")); err != nil {
				return ctx, err
			}

			return ctx, os.Chdir(cmd.String("dir"))
		},
		Commands: p.Commands,
	}

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			log.WithError(err).Error("Error running command")
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

var logLevelFlag = &cli.StringFlag{
	Name:    "log-level",
	Usage:   "log level (trace, debug, info, warn, error)",
	Value:   "info",
	Sources: cli.EnvVars("HMS_MIRROR_LOG_LEVEL"),
	Config: cli.StringConfig{
		TrimSpace: true,
	},
}

func setLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid --log-level %q", level)
	}

	log.SetLevel(lvl)
	return nil
}

// resolveConfig prefers the file given with --config, then the config
// provided at startup, then hms-mirror.yaml in the (possibly changed) working
// directory.
func resolveConfig(cfg *config.Config, path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadConfigFile(path)
	case cfg != nil:
		return cfg, nil
	}

	if _, err := os.Stat(consts.DefaultConfigFile); err != nil {
		return nil, errors.Errorf("%s not found; pass --config or run from a directory holding one", consts.DefaultConfigFile)
	}

	return config.LoadConfigFile(consts.DefaultConfigFile)
}
