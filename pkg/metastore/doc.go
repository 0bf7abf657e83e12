// Package metastore reads the source metadata a run is planned from.
//
// FileProvider serves a YAML document validated against an embedded JSON
// schema. DirectProvider wraps another provider and replaces partition
// locations with the ones recorded in the metastore's backing database
// (MySQL, Postgres or SQLite).
//
//	base, err := metastore.LoadFile("metadata.yaml")
//	if err != nil {
//		return err
//	}
//
//	p, err := metastore.OpenDirect("mysql", "hive:secret@tcp(db:3306)/metastore", base)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	tables, err := p.Tables(ctx, "sales")
package metastore
