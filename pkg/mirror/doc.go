// Package mirror defines the per-run data model the migration engine mutates.
//
// A TableMirror is created for every source table discovered in a run. It
// holds one EnvironmentTable per Environment:
//
//   - LEFT: the source table as read from the source metastore
//   - RIGHT: the table the run will create on the target
//   - TRANSFER: a scratch table used to stage data on the source side
//   - SHADOW: a schema-only scratch table on the target pointing at staged data
//
// Strategies append the SQL they plan, the cleanup SQL that removes scratch
// tables, and any issues or errors to the relevant EnvironmentTable. Every
// appended statement also grows the record's phase count so progress reporting
// stays consistent with the planned work.
//
// Phase transitions only move forward:
//
//	INIT -> CALCULATING_SQL -> CALCULATED_SQL | CALCULATED_SQL_WARNING
//	     -> APPLYING_SQL -> PROCESSED | RETRY_SKIPPED_PAST_SUCCESS
//
// ERROR can be entered from any state and is never left.
//
// Errors raised while planning are classified with the sentinels in errors.go
// so the strategy boundary can convert them into issues without aborting the
// run.
package mirror
