package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudera-labs/hms-mirror/pkg/cmd"
	"github.com/cloudera-labs/hms-mirror/pkg/config"
	log "github.com/sirupsen/logrus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		fx.Supply(
			os.Args,
			&cmd.Version{
				Version:   version,
				Commit:    commit,
				Timestamp: date,
			},
		),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
		config.Module,
		cmd.Module,
	)

	if err := app.Err(); err != nil {
		log.WithError(err).Fatal("Failed to start hms-mirror")
	}

	app.Run()
}
