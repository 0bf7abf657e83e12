package mirror

import (
	"sort"
	"strings"

	"github.com/cloudera-labs/hms-mirror/pkg/table"
)

type (
	// Pair is one planned statement with a human readable description.
	Pair struct {
		Description string `yaml:"description"`
		Action      string `yaml:"action"`
	}

	// EnvironmentTable is the view of one table in one environment.
	EnvironmentTable struct {
		Name           string            `yaml:"name,omitempty"`
		Exists         bool              `yaml:"exists"`
		CreateStrategy CreateStrategy    `yaml:"createStrategy"`
		Definition     []string          `yaml:"definition,omitempty"`
		Owner          string            `yaml:"owner,omitempty"`
		Partitions     map[string]string `yaml:"partitions,omitempty"`
		SQL            []Pair            `yaml:"sql,omitempty"`
		CleanUpSQL     []Pair            `yaml:"cleanUpSql,omitempty"`
		Issues         []string          `yaml:"issues,omitempty"`
		Errors         []string          `yaml:"errors,omitempty"`
		AddProperties  map[string]string `yaml:"addProperties,omitempty"`

		parent *TableMirror
	}
)

func newEnvironmentTable(parent *TableMirror) *EnvironmentTable {
	return &EnvironmentTable{
		CreateStrategy: CreateNothing,
		Partitions:     make(map[string]string),
		AddProperties:  make(map[string]string),
		parent:         parent,
	}
}

// Parent returns the record this environment belongs to.
func (e *EnvironmentTable) Parent() *TableMirror {
	return e.parent
}

// AddSQL appends a planned statement and grows the parent's phase count.
func (e *EnvironmentTable) AddSQL(description, action string) {
	e.SQL = append(e.SQL, Pair{Description: description, Action: action})
	if e.parent != nil {
		e.parent.IncTotalPhases()
	}
}

// AddCleanUpSQL appends a statement to run once the migration is verified.
func (e *EnvironmentTable) AddCleanUpSQL(description, action string) {
	e.CleanUpSQL = append(e.CleanUpSQL, Pair{Description: description, Action: action})
}

// ClearSQL drops every planned and cleanup statement and takes the planned
// ones back out of the parent's phase count.
func (e *EnvironmentTable) ClearSQL() {
	if e.parent != nil && len(e.SQL) > 0 {
		e.parent.DecTotalPhases(len(e.SQL))
	}
	e.SQL = nil
	e.CleanUpSQL = nil
}

// AddIssue records a non-fatal finding.
func (e *EnvironmentTable) AddIssue(msg string) {
	e.Issues = append(e.Issues, strings.ReplaceAll(msg, "\n", "<br/>"))
}

// AddError records a failure that excludes the table from execution.
func (e *EnvironmentTable) AddError(msg string) {
	e.Errors = append(e.Errors, strings.ReplaceAll(msg, "\n", "<br/>"))
}

// AddProperty queues a table property to be upserted into the definition
// built for this environment.
func (e *EnvironmentTable) AddProperty(key, value string) {
	e.AddProperties[key] = value
}

// SortedProperties returns the queued properties ordered by key.
func (e *EnvironmentTable) SortedProperties() [][2]string {
	keys := make([]string, 0, len(e.AddProperties))
	for k := range e.AddProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, e.AddProperties[k]})
	}
	return out
}

// PartitionSpecs returns the partition specs in lexical order.
func (e *EnvironmentTable) PartitionSpecs() []string {
	specs := make([]string, 0, len(e.Partitions))
	for spec := range e.Partitions {
		specs = append(specs, spec)
	}
	sort.Strings(specs)
	return specs
}

// Partitioned reports whether the definition declares partitions or any
// partition locations are known.
func (e *EnvironmentTable) Partitioned() bool {
	return table.IsPartitioned(e.Definition) || len(e.Partitions) > 0
}

// Location returns the LOCATION of the definition, or "".
func (e *EnvironmentTable) Location() string {
	return table.GetLocation(e.Definition)
}
