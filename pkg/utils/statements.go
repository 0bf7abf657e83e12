package utils

import (
	"fmt"
	"sort"
	"strings"
)

// Use returns `USE <db>`.
func Use(db string) string {
	return NewSQLBuilder().Raw("USE").Name(db).String()
}

// DropTable returns `DROP TABLE IF EXISTS <table>`.
func DropTable(table string) string {
	return NewSQLBuilder().Drop("TABLE").IfExists().Name(table).String()
}

// DropView returns `DROP VIEW IF EXISTS <view>`.
func DropView(view string) string {
	return NewSQLBuilder().Drop("VIEW").IfExists().Name(view).String()
}

// RenameTable returns `ALTER TABLE <from> RENAME TO <to>`.
func RenameTable(from, to string) string {
	return NewSQLBuilder().Alter("TABLE").Name(from).Raw("RENAME").To(to).String()
}

// SetOwner returns `ALTER TABLE <table> SET OWNER USER <owner>`.
func SetOwner(table, owner string) string {
	return NewSQLBuilder().Alter("TABLE").Name(table).Raw("SET OWNER USER").Name(owner).String()
}

// AlterTableLocation returns `ALTER TABLE <table> SET LOCATION "<loc>"`.
func AlterTableLocation(table, location string) string {
	return NewSQLBuilder().Alter("TABLE").Name(table).Raw("SET LOCATION").Quoted(location).String()
}

// AlterPartitionLocation returns
// `ALTER TABLE <table> PARTITION (<spec>) SET LOCATION "<loc>"`.
func AlterPartitionLocation(table, spec, location string) string {
	return NewSQLBuilder().
		Alter("TABLE").
		Name(table).
		Partition(spec).
		Raw("SET LOCATION").
		Quoted(location).
		String()
}

// AddPartitions returns `ALTER TABLE <table> ADD IF NOT EXISTS\n<parts>` where
// parts is a block produced by the translator.
func AddPartitions(table, parts string) string {
	return NewSQLBuilder().Alter("TABLE").Name(table).Raw("ADD").IfNotExists().String() + "\n" + parts
}

// SetTableProperty returns `ALTER TABLE <table> SET TBLPROPERTIES ("k"="v")`.
func SetTableProperty(table, key, value string) string {
	return NewSQLBuilder().
		Alter("TABLE").
		Name(table).
		Raw(fmt.Sprintf(`SET TBLPROPERTIES ("%s"="%s")`, key, value)).
		String()
}

// UnsetTableProperty returns `ALTER TABLE <table> UNSET TBLPROPERTIES ("k")`.
func UnsetTableProperty(table, key string) string {
	return NewSQLBuilder().Alter("TABLE").Name(table).Raw(fmt.Sprintf(`UNSET TBLPROPERTIES ("%s")`, key)).String()
}

// ExportTable returns `EXPORT TABLE <table> TO "<loc>"`.
func ExportTable(table, location string) string {
	return NewSQLBuilder().Raw("EXPORT TABLE").Name(table).Raw("TO").Quoted(location).String()
}

// ImportTable returns `IMPORT TABLE <table> FROM "<loc>"`.
func ImportTable(table, from string) string {
	return NewSQLBuilder().Raw("IMPORT TABLE").Name(table).Raw("FROM").Quoted(from).String()
}

// ImportExternalTable returns `IMPORT EXTERNAL TABLE <table> FROM "<from>"`,
// appending `LOCATION "<loc>"` when location is set.
func ImportExternalTable(table, from, location string) string {
	b := NewSQLBuilder().Raw("IMPORT EXTERNAL TABLE").Name(table).Raw("FROM").Quoted(from)
	if location != "" {
		b.Raw("LOCATION").Quoted(location)
	}
	return b.String()
}

// MSCKRepair returns `MSCK REPAIR TABLE <table>`.
func MSCKRepair(table string) string {
	return NewSQLBuilder().Raw("MSCK REPAIR TABLE").Name(table).String()
}

// SetSession returns `SET <key>=<value>`.
func SetSession(key, value string) string {
	return fmt.Sprintf("SET %s=%s", key, value)
}

// SetSessionOverrides renders one SET statement per override, sorted by key.
func SetSessionOverrides(overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stmts := make([]string, 0, len(keys))
	for _, k := range keys {
		stmts = append(stmts, SetSession(k, overrides[k]))
	}
	return stmts
}

// InsertOverwrite returns `FROM <from> INSERT OVERWRITE TABLE <to> SELECT *`.
func InsertOverwrite(from, to string) string {
	return NewSQLBuilder().Raw("FROM").Name(from).Raw("INSERT OVERWRITE TABLE").Name(to).Raw("SELECT *").String()
}

// InsertInto returns `FROM <from> INSERT INTO TABLE <to> SELECT *`.
func InsertInto(from, to string) string {
	return NewSQLBuilder().Raw("FROM").Name(from).Raw("INSERT INTO TABLE").Name(to).Raw("SELECT *").String()
}

// InsertPartitions returns a dynamic partition insert. When distributeBy is
// empty the statement is declarative, otherwise rows are distributed by the
// given partition columns.
//
// Example:
//
//	InsertPartitions("a", "b", "dt", "")
//	// FROM `a` INSERT OVERWRITE TABLE `b` PARTITION (dt) SELECT *
func InsertPartitions(from, to, partitionColumns, distributeBy string) string {
	b := NewSQLBuilder().
		Raw("FROM").
		Name(from).
		Raw("INSERT OVERWRITE TABLE").
		Name(to).
		Raw(fmt.Sprintf("PARTITION (%s)", partitionColumns)).
		Raw("SELECT *")
	if distributeBy != "" {
		b.Raw("DISTRIBUTE BY").Raw(distributeBy)
	}
	return b.String()
}

// IsComment reports whether a statement only carries a `--` comment.
func IsComment(stmt string) bool {
	for _, line := range strings.Split(strings.TrimSpace(stmt), "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "--") {
			return false
		}
	}
	return true
}
