// Package schema derives the table definition created in one environment from
// the definition found in another.
//
// A CopySpec names the source and target environments and the adjustments to
// apply. It is built with functional options:
//
//	spec := schema.NewCopySpec(mirror.LEFT, mirror.RIGHT,
//		schema.WithReplaceLocation(),
//		schema.If(cfg.ConvertManaged, schema.WithUpgrade()),
//		schema.WithTakeOwnership(cfg.OwnershipAllowed()),
//	)
//
//	tf := schema.New(cfg, tr)
//	if !tf.Build(tm, spec) {
//		// reasons are recorded as issues on tm
//	}
//
// Build never modifies the source definition. It strips the database
// qualifier, converts legacy managed tables or ACID tables when asked, removes
// artificial bucket definitions and statistics, translates LOCATION (and the
// serde 'path') through the location translator and tags scratch tables.
// Views and storage handler tables are carried over unchanged.
package schema
