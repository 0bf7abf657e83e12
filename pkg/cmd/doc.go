// Package cmd provides the CLI commands of hms-mirror.
//
// Commands are urfave/cli/v3 commands provided into the "commands" fx value
// group and assembled by Run.
//
// # Available Commands
//
//   - plan: plan the migration of the configured databases and write one
//     plan file (and optional distcp files) per database
//   - strategies: list the data strategies
//
// # Global Options
//
//   - --dir, -d: working directory (defaults to current directory)
//   - --log-level: logrus level, debug also dumps the resolved config
//   - --help, -h: display command help
//   - --version: display version information
//
// # Example Usage
//
//	hms-mirror plan                                   # plan every database
//	hms-mirror plan --config prod.toml sales          # plan one database
//	hms-mirror --log-level debug plan --execute sales # plan and replay
//	hms-mirror strategies --all
package cmd
