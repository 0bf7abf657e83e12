package utils

import (
	"fmt"
	"strings"
)

// SQLBuilder provides a fluent interface for building HiveQL statements.
// It handles identifier backticking and quoting of location literals so the
// strategies never concatenate raw statement text.
//
// Example usage:
//
//	sql := NewSQLBuilder().
//		Alter("TABLE").
//		Name("events").
//		Raw("SET LOCATION").
//		Quoted("hdfs://ns/warehouse/db.db/events").
//		String()
//	// Output: ALTER TABLE `events` SET LOCATION "hdfs://ns/warehouse/db.db/events"
type SQLBuilder struct {
	parts []string
}

// NewSQLBuilder creates a new SQLBuilder instance.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{
		parts: make([]string, 0, 8),
	}
}

// Create adds a CREATE clause with the specified object type.
//
// Example:
//
//	builder.Create("TABLE")           // CREATE TABLE
//	builder.Create("EXTERNAL TABLE")  // CREATE EXTERNAL TABLE
func (b *SQLBuilder) Create(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "CREATE", objectType)
	return b
}

// Drop adds a DROP clause with the specified object type.
//
// Example:
//
//	builder.Drop("TABLE")  // DROP TABLE
//	builder.Drop("VIEW")   // DROP VIEW
func (b *SQLBuilder) Drop(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "DROP", objectType)
	return b
}

// Alter adds an ALTER clause with the specified object type.
func (b *SQLBuilder) Alter(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "ALTER", objectType)
	return b
}

// IfExists adds an IF EXISTS clause. This should be called after DROP operations.
//
// Example:
//
//	builder.Drop("TABLE").IfExists()  // DROP TABLE IF EXISTS
func (b *SQLBuilder) IfExists() *SQLBuilder {
	b.parts = append(b.parts, "IF", "EXISTS")
	return b
}

// IfNotExists adds an IF NOT EXISTS clause.
func (b *SQLBuilder) IfNotExists() *SQLBuilder {
	b.parts = append(b.parts, "IF", "NOT", "EXISTS")
	return b
}

// Name adds a backticked object name.
//
// Example:
//
//	builder.Name("events")     // `events`
//	builder.Name("db.events")  // `db`.`events`
func (b *SQLBuilder) Name(name string) *SQLBuilder {
	if name != "" {
		b.parts = append(b.parts, BacktickIdentifier(name))
	}
	return b
}

// To adds a TO clause for rename operations.
//
// Example:
//
//	builder.To("events_archive")  // TO `events_archive`
func (b *SQLBuilder) To(name string) *SQLBuilder {
	if name != "" {
		b.parts = append(b.parts, "TO", BacktickIdentifier(name))
	}
	return b
}

// Partition adds a PARTITION clause built from a directory style partition
// spec.
//
// Example:
//
//	builder.Partition("dt=2024/hr=1")  // PARTITION (dt="2024",hr="1")
func (b *SQLBuilder) Partition(spec string) *SQLBuilder {
	if spec != "" {
		b.parts = append(b.parts, fmt.Sprintf("PARTITION (%s)", PartitionSpecToSQL(spec)))
	}
	return b
}

// Quoted adds a double quoted literal, the form Hive expects for locations.
// Embedded double quotes are removed.
//
// Example:
//
//	builder.Raw("FROM").Quoted("/tmp/export")  // FROM "/tmp/export"
func (b *SQLBuilder) Quoted(value string) *SQLBuilder {
	b.parts = append(b.parts, `"`+strings.ReplaceAll(value, `"`, "")+`"`)
	return b
}

// Escaped adds an escaped SQL string value with single quotes.
//
// Example:
//
//	builder.Raw("COMMENT").Escaped("User's table")  // COMMENT 'User\'s table'
func (b *SQLBuilder) Escaped(value string) *SQLBuilder {
	escapedValue := strings.ReplaceAll(value, "'", "\\'")
	b.parts = append(b.parts, fmt.Sprintf("'%s'", escapedValue))
	return b
}

// Raw adds raw SQL text to the builder. Use sparingly for complex constructs
// that don't fit the fluent pattern.
func (b *SQLBuilder) Raw(sql string) *SQLBuilder {
	if sql != "" {
		b.parts = append(b.parts, sql)
	}
	return b
}

// String builds and returns the final statement. Hive statements are replayed
// one at a time so no terminating semicolon is added.
func (b *SQLBuilder) String() string {
	return strings.Join(b.parts, " ")
}
