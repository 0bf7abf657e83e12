// Package migrator runs the planning of a migration.
//
// A run goes through these steps:
//  1. Load databases and tables from the metadata provider and build one
//     record per table, dropping tables the filters exclude
//  2. Feed the warehouse plan builder: ENVIRONMENT, GLOBAL and declared
//     plans, then every table and partition location
//  3. Rebuild the global location map of the translator once
//  4. Plan every table on a bounded pool of workers
//  5. Optionally replay the planned SQL and record each outcome in the ledger
//
// Planning is cooperative about cancellation: a cancelled context or a call
// to Cancel stops tables from being started, and tables that were not
// started keep their phase.
//
// The ledger is a SQLite database. Tables it records as PROCESSED are not
// planned again; they end the run as RETRY_SKIPPED_PAST_SUCCESS.
//
// Example usage:
//
//	ledger, err := migrator.OpenLedger(cfg.LedgerFile)
//	if err != nil {
//		return err
//	}
//	defer ledger.Close()
//
//	m := migrator.New(migrator.Config{
//		Settings: cfg,
//		Provider: provider,
//		Ledger:   ledger,
//	})
//
//	dbs, err := m.Run(ctx)
//	if err != nil {
//		return err
//	}
package migrator
