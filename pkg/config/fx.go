package config

import (
	"os"

	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"go.uber.org/fx"
)

var Module = fx.Module("config", fx.Provide(
	// Loads hms-mirror.yaml from the working directory when present. A nil
	// config lets commands that don't need one (strategies, help) run anywhere.
	func() (*Config, error) {
		if _, err := os.Stat(consts.DefaultConfigFile); os.IsNotExist(err) {
			return nil, nil
		}

		return LoadConfigFile(consts.DefaultConfigFile)
	},
))
