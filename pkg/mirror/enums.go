package mirror

import (
	"strings"

	"github.com/pkg/errors"
)

type (
	// Environment identifies one side of a migration.
	Environment string

	// TableType is the storage ownership model of a table.
	TableType string

	// PhaseState is the lifecycle state of a TableMirror.
	PhaseState string

	// CreateStrategy is the action planned for a table in one environment.
	CreateStrategy string

	// DataStrategy names a migration strategy variant.
	DataStrategy string
)

const (
	// LEFT is the source environment.
	LEFT Environment = "LEFT"
	// RIGHT is the target environment.
	RIGHT Environment = "RIGHT"
	// TRANSFER holds data staged on the source side.
	TRANSFER Environment = "TRANSFER"
	// SHADOW holds schema-only pointers on the target side.
	SHADOW Environment = "SHADOW"
)

const (
	ExternalTable TableType = "EXTERNAL_TABLE"
	ManagedTable  TableType = "MANAGED_TABLE"
)

const (
	PhaseInit                    PhaseState = "INIT"
	PhaseCalculatingSQL          PhaseState = "CALCULATING_SQL"
	PhaseCalculatedSQL           PhaseState = "CALCULATED_SQL"
	PhaseCalculatedSQLWarning    PhaseState = "CALCULATED_SQL_WARNING"
	PhaseApplyingSQL             PhaseState = "APPLYING_SQL"
	PhaseProcessed               PhaseState = "PROCESSED"
	PhaseError                   PhaseState = "ERROR"
	PhaseRetrySkippedPastSuccess PhaseState = "RETRY_SKIPPED_PAST_SUCCESS"
)

const (
	CreateNothing    CreateStrategy = "NOTHING"
	CreateDrop       CreateStrategy = "DROP"
	CreateCreate     CreateStrategy = "CREATE"
	CreateReplace    CreateStrategy = "REPLACE"
	CreateLeave      CreateStrategy = "LEAVE"
	CreateAmendParts CreateStrategy = "AMEND_PARTS"
)

const (
	DUMP                             DataStrategy = "DUMP"
	SchemaOnly                       DataStrategy = "SCHEMA_ONLY"
	Linked                           DataStrategy = "LINKED"
	SQL                              DataStrategy = "SQL"
	ExportImport                     DataStrategy = "EXPORT_IMPORT"
	Hybrid                           DataStrategy = "HYBRID"
	ConvertLinked                    DataStrategy = "CONVERT_LINKED"
	StorageMigration                 DataStrategy = "STORAGE_MIGRATION"
	Common                           DataStrategy = "COMMON"
	ACID                             DataStrategy = "ACID"
	Intermediate                     DataStrategy = "INTERMEDIATE"
	SQLACIDDowngradeInPlace          DataStrategy = "SQL_ACID_DOWNGRADE_INPLACE"
	ExportImportACIDDowngradeInPlace DataStrategy = "EXPORT_IMPORT_ACID_DOWNGRADE_INPLACE"
	HybridACIDDowngradeInPlace       DataStrategy = "HYBRID_ACID_DOWNGRADE_INPLACE"
)

var (
	// Environments lists every environment in reporting order.
	Environments = []Environment{LEFT, RIGHT, TRANSFER, SHADOW}

	phaseRank = map[PhaseState]int{
		PhaseInit:                    0,
		PhaseCalculatingSQL:          1,
		PhaseCalculatedSQL:           2,
		PhaseCalculatedSQLWarning:    3,
		PhaseApplyingSQL:             4,
		PhaseProcessed:               5,
		PhaseRetrySkippedPastSuccess: 5,
		PhaseError:                   6,
	}

	// strategies is ordered the way they are listed to users.
	strategies = []struct {
		strategy DataStrategy
		cli      string
		hidden   bool
	}{
		{DUMP, "dump", false},
		{SchemaOnly, "schema-only", false},
		{Linked, "linked", false},
		{SQL, "sql", false},
		{ExportImport, "export-import", false},
		{Hybrid, "hybrid", false},
		{ConvertLinked, "convert-linked", false},
		{StorageMigration, "storage-migration", false},
		{Common, "common", false},
		{ACID, "acid", true},
		{Intermediate, "intermediate", true},
		{SQLACIDDowngradeInPlace, "sql-acid-downgrade-inplace", true},
		{ExportImportACIDDowngradeInPlace, "export-import-acid-downgrade-inplace", true},
		{HybridACIDDowngradeInPlace, "hybrid-acid-downgrade-inplace", true},
	}
)

// Rank orders phase states; a transition is forward when it does not lower
// the rank.
func (p PhaseState) Rank() int {
	return phaseRank[p]
}

// Hidden reports whether the strategy is only reachable through dispatch.
func (d DataStrategy) Hidden() bool {
	for _, s := range strategies {
		if s.strategy == d {
			return s.hidden
		}
	}

	return true
}

// CLIName returns the lower-case name used on the command line.
func (d DataStrategy) CLIName() string {
	for _, s := range strategies {
		if s.strategy == d {
			return s.cli
		}
	}

	return strings.ToLower(string(d))
}

// ParseDataStrategy accepts either the enum name (SCHEMA_ONLY) or the CLI
// name (schema-only).
func ParseDataStrategy(name string) (DataStrategy, error) {
	name = strings.TrimSpace(name)
	for _, s := range strategies {
		if strings.EqualFold(string(s.strategy), name) || s.cli == strings.ToLower(name) {
			return s.strategy, nil
		}
	}

	return "", errors.Errorf("unknown data strategy %q", name)
}

// VisibleStrategies returns the strategies a user may request.
func VisibleStrategies() []DataStrategy {
	var out []DataStrategy
	for _, s := range strategies {
		if !s.hidden {
			out = append(out, s.strategy)
		}
	}

	return out
}

// ParseTableType accepts EXTERNAL_TABLE or MANAGED_TABLE in any case.
func ParseTableType(name string) (TableType, error) {
	switch TableType(strings.ToUpper(strings.TrimSpace(name))) {
	case ExternalTable:
		return ExternalTable, nil
	case ManagedTable:
		return ManagedTable, nil
	}

	return "", errors.Errorf("unknown table type %q", name)
}
