// Package warehouse collects the warehouse plans and observed source locations
// that drive location translation.
//
// A Warehouse is a pair of base directories (external and managed). The
// database directory "<db>.db" is never part of a plan; it is appended when a
// location is resolved. Plans come from four places, tracked by Source:
//
//   - GLOBAL: the transfer.warehouse section of the run configuration
//   - ENVIRONMENT: the optional dotenv file named by warehouse_env_file
//   - PLAN: a per-database plan declared by the user
//   - TABLE: a per-database plan inferred from observed table locations
//
// Resolution prefers a per-database plan, then the environment, then the
// global setting.
//
// The Builder also records where the source tables live today, reduced by the
// consolidation level, so the translator can derive a global location map
// from it. All Builder methods are safe for concurrent use.
//
// Example:
//
//	b := warehouse.NewBuilder()
//	b.SetGlobal("/warehouse/external", "/warehouse/managed")
//	if err := b.AddWarehousePlan("sales", "/sales/ext", "/sales/managed"); err != nil {
//		return err
//	}
//
//	b.AddSourceLocation(warehouse.SourceLocation{
//		Database:      "sales",
//		Table:         "orders",
//		TableType:     mirror.ExternalTable,
//		TableLocation: "hdfs://left/data/sales.db/orders",
//		Level:         1,
//	})
//
//	wh, err := b.Resolve("sales") // PLAN: /sales/ext, /sales/managed
package warehouse
