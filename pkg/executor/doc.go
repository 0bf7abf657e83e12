// Package executor replays the SQL planned for a table.
//
// The executor sends each planned statement of an environment, in order,
// through a Conn. Comment-only statements such as distcp reminders are
// counted but not sent. Replay stops at the first failure and the failure
// is recorded as an error on the table.
//
// # Phases
//
// A replayed table moves from its planned phase to APPLYING_SQL and then to
// PROCESSED or ERROR. Tables that already carry errors are never replayed.
//
// # Usage Example
//
//	exec := executor.New(executor.Config{
//		Connections: map[mirror.Environment]executor.Conn{
//			mirror.LEFT:  leftDB,
//			mirror.RIGHT: rightDB,
//		},
//	})
//
//	for _, result := range exec.Replay(ctx, tm) {
//		switch result.Status {
//		case executor.StatusSuccess:
//			fmt.Printf("✓ %s.%s (%s) in %v\n", result.Database, result.Table, result.Environment, result.ExecutionTime)
//		case executor.StatusFailed:
//			fmt.Printf("✗ %s.%s (%s): %v\n", result.Database, result.Table, result.Environment, result.Error)
//		}
//	}
package executor
