// Package strategy plans the migration of individual tables.
//
// Every data strategy is implemented by a variant of the Strategy interface.
// Plan is the entry point used by the migrator: it selects the variant for a
// table, runs it and settles the phase of the record.
//
//	ctx := strategy.NewContext(cfg, tr, db)
//	for _, tm := range db.Tables() {
//		strategy.Plan(ctx, tm)
//	}
//
// Selection happens once per table. A configured SQL, EXPORT_IMPORT or
// HYBRID strategy may be replaced by ACID, INTERMEDIATE or one of the
// in-place downgrade variants depending on the table and the configuration;
// the replacement is recorded as a step and, with its reason, as an issue.
//
// Variants never fail the run. Refusals are recorded as issues, unexpected
// failures as errors, and the record ends in the ERROR phase.
package strategy
