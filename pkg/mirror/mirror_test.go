package mirror_test

import (
	"sync"
	"testing"

	. "github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewTableMirror(t *testing.T) {
	tm := NewTableMirror("sales", "orders")

	for _, env := range Environments {
		et := tm.Env(env)
		require.NotNil(t, et, env)
		require.Same(t, tm, et.Parent())
		require.Equal(t, CreateNothing, et.CreateStrategy)
	}

	require.Equal(t, PhaseInit, tm.PhaseState())
	require.Equal(t, 0, tm.Progress())
}

func TestSetPhaseState(t *testing.T) {
	tests := []struct {
		name     string
		from     []PhaseState
		to       PhaseState
		accepted bool
		final    PhaseState
	}{
		{name: "forward", from: nil, to: PhaseCalculatingSQL, accepted: true, final: PhaseCalculatingSQL},
		{name: "skip ahead", from: nil, to: PhaseProcessed, accepted: true, final: PhaseProcessed},
		{
			name:     "backward is ignored",
			from:     []PhaseState{PhaseCalculatedSQL},
			to:       PhaseCalculatingSQL,
			accepted: false,
			final:    PhaseCalculatedSQL,
		},
		{
			name:     "warning after calculated",
			from:     []PhaseState{PhaseCalculatedSQL},
			to:       PhaseCalculatedSQLWarning,
			accepted: true,
			final:    PhaseCalculatedSQLWarning,
		},
		{
			name:     "error is absorbing",
			from:     []PhaseState{PhaseError},
			to:       PhaseProcessed,
			accepted: false,
			final:    PhaseError,
		},
		{
			name:     "error from anywhere",
			from:     []PhaseState{PhaseApplyingSQL},
			to:       PhaseError,
			accepted: true,
			final:    PhaseError,
		},
		{
			name:     "processed cannot become skipped",
			from:     []PhaseState{PhaseProcessed},
			to:       PhaseRetrySkippedPastSuccess,
			accepted: false,
			final:    PhaseProcessed,
		},
		{name: "same state", from: []PhaseState{PhaseInit}, to: PhaseInit, accepted: true, final: PhaseInit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := NewTableMirror("db", "tbl")
			for _, s := range tt.from {
				tm.SetPhaseState(s)
			}

			require.Equal(t, tt.accepted, tm.SetPhaseState(tt.to))
			require.Equal(t, tt.final, tm.PhaseState())
		})
	}
}

func TestAddSQLTracksPhases(t *testing.T) {
	tm := NewTableMirror("db", "tbl")
	tm.Env(LEFT).AddSQL("Selecting DB", "USE `db`")
	tm.Env(RIGHT).AddSQL("Selecting DB", "USE `db`")
	tm.Env(RIGHT).AddSQL("Creating Table", "CREATE TABLE `tbl`(`id` int)")
	tm.Env(RIGHT).AddCleanUpSQL("Dropping Shadow Table", "DROP TABLE IF EXISTS `s`")

	current, total := tm.Phases()
	require.Equal(t, 0, current)
	require.Equal(t, 3, total)

	tm.IncPhase()
	require.Equal(t, 33, tm.Progress())

	for range 5 {
		tm.IncPhase()
	}
	current, total = tm.Phases()
	require.Equal(t, 6, current)
	require.Equal(t, 7, total)
}

func TestClearSQLTracksPhases(t *testing.T) {
	tm := NewTableMirror("db", "tbl")
	left, right := tm.Env(LEFT), tm.Env(RIGHT)
	left.AddSQL("Selecting DB", "USE `db`")
	right.AddSQL("Selecting DB", "USE `db`")
	right.AddSQL("Creating Table", "CREATE TABLE `tbl`(`id` int)")
	right.AddCleanUpSQL("Dropping Shadow Table", "DROP TABLE IF EXISTS `s`")

	right.ClearSQL()
	require.Empty(t, right.SQL)
	require.Empty(t, right.CleanUpSQL)

	current, total := tm.Phases()
	require.Equal(t, 0, current)
	require.Equal(t, 1, total)

	right.ClearSQL()
	_, total = tm.Phases()
	require.Equal(t, 1, total)

	tm.IncPhase()
	left.ClearSQL()
	current, total = tm.Phases()
	require.Equal(t, 1, current)
	require.Equal(t, 1, total)
	require.Equal(t, 100, tm.Progress())
}

func TestIssuesAndErrors(t *testing.T) {
	tm := NewTableMirror("db", "tbl")
	require.False(t, tm.HasIssues())
	require.False(t, tm.HasErrors())

	tm.AddIssue(LEFT, "line one\nline two")
	tm.AddError(RIGHT, "boom")

	require.Equal(t, []string{"line one<br/>line two"}, tm.Env(LEFT).Issues)
	require.True(t, tm.HasIssues())
	require.True(t, tm.HasErrors())
}

func TestSchemasEqual(t *testing.T) {
	tm := NewTableMirror("db", "tbl")
	tm.Env(LEFT).Definition = []string{"CREATE TABLE `db.tbl`(", "  `id` int,", "  `v` string)", "LOCATION", "  'hdfs://l/x'"}
	tm.Env(RIGHT).Definition = []string{"CREATE TABLE `db.tbl`(", "  `v` string,", "  `id` int)", "LOCATION", "  'hdfs://r/x'"}
	require.True(t, tm.SchemasEqual(LEFT, RIGHT))

	tm.Env(RIGHT).Definition = []string{"CREATE TABLE `db.tbl`(", "  `id` bigint)"}
	require.False(t, tm.SchemasEqual(LEFT, RIGHT))
	require.False(t, tm.SchemasEqual(LEFT, SHADOW))
}

func TestPartitioned(t *testing.T) {
	tm := NewTableMirror("db", "tbl")
	require.False(t, tm.IsPartitioned(LEFT))

	tm.Env(LEFT).Partitions["dt=2024-01-02"] = "hdfs://l/tbl/dt=2024-01-02"
	tm.Env(LEFT).Partitions["dt=2024-01-01"] = "hdfs://l/tbl/dt=2024-01-01"
	require.True(t, tm.IsPartitioned(LEFT))
	require.Equal(t, []string{"dt=2024-01-01", "dt=2024-01-02"}, tm.Env(LEFT).PartitionSpecs())

	tm.Env(RIGHT).Definition = []string{"CREATE TABLE `t`(", "  `id` int)", "PARTITIONED BY (", "  `dt` string)"}
	require.True(t, tm.IsPartitioned(RIGHT))
}

func TestSortedProperties(t *testing.T) {
	et := NewTableMirror("db", "tbl").Env(RIGHT)
	et.AddProperty("z", "1")
	et.AddProperty("a", "2")
	require.Equal(t, [][2]string{{"a", "2"}, {"z", "1"}}, et.SortedProperties())
}

func TestDataStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected DataStrategy
	}{
		{input: "SCHEMA_ONLY", expected: SchemaOnly},
		{input: "schema-only", expected: SchemaOnly},
		{input: "storage_migration", expected: StorageMigration},
		{input: "Export-Import", expected: ExportImport},
		{input: "intermediate", expected: Intermediate},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ds, err := ParseDataStrategy(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, ds)
		})
	}

	_, err := ParseDataStrategy("bogus")
	require.Error(t, err)

	visible := VisibleStrategies()
	require.Len(t, visible, 9)
	for _, ds := range visible {
		require.False(t, ds.Hidden(), ds)
	}
	require.True(t, Intermediate.Hidden())
	require.Equal(t, "hybrid-acid-downgrade-inplace", HybridACIDDowngradeInPlace.CLIName())
}

func TestParseTableType(t *testing.T) {
	tt, err := ParseTableType("external_table")
	require.NoError(t, err)
	require.Equal(t, ExternalTable, tt)

	_, err = ParseTableType("VIRTUAL_VIEW")
	require.Error(t, err)
}

func TestErrors(t *testing.T) {
	err := errors.Wrap(ConfigurationError("target namespace for %s not set", "db"), "translating")
	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsMismatchError(err))
	assert.Contains(t, err.Error(), "target namespace for db not set")

	assert.True(t, IsMismatchError(MismatchError("partition %s", "part=1")))
	assert.True(t, IsSchemaIncompatibilityError(SchemaIncompatibilityError("legacy")))
	assert.False(t, IsConfigurationError(errors.New("other")))
}

func TestDBMirror(t *testing.T) {
	db := NewDBMirror("sales")
	require.Equal(t, "sales", db.TargetName)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db.AddTable("orders")
		}()
	}
	wg.Wait()

	db.AddTable("customers")
	tables := db.Tables()
	require.Len(t, tables, 2)
	require.Equal(t, "customers", tables[0].Name)
	require.Same(t, db.Table("orders"), db.AddTable("orders"))

	db.SetProperty(LEFT, DBLocation, "hdfs://left/warehouse/sales.db")
	v, ok := db.Property(LEFT, DBLocation)
	require.True(t, ok)
	require.Equal(t, "hdfs://left/warehouse/sales.db", v)

	db.FilterOut("tmp_orders", "excluded by table_exclude_regex")
	filtered := db.FilteredOut()
	filtered["other"] = "ignored"
	require.Equal(t, map[string]string{"tmp_orders": "excluded by table_exclude_regex"}, db.FilteredOut())
}

func TestMarshalYAML(t *testing.T) {
	db := NewDBMirror("sales")
	tm := db.AddTable("orders")
	tm.Strategy = SchemaOnly
	tm.Env(RIGHT).Name = "orders"
	tm.Env(RIGHT).AddSQL("Selecting DB", "USE `sales`")

	out, err := yaml.Marshal(db)
	require.NoError(t, err)
	require.Contains(t, string(out), "strategy: SCHEMA_ONLY")
	require.Contains(t, string(out), "action: USE `sales`")
	require.NotContains(t, string(out), "SHADOW")
}
