package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)
)

// Configuration defaults applied by config.LoadConfig when a value is omitted.
const (
	DefaultTransferPrefix          = "hms_mirror_transfer_"
	DefaultShadowPrefix            = "hms_mirror_shadow_"
	DefaultStorageMigrationPostfix = "_storage_migration"
	DefaultExportBaseDirPrefix     = "/apps/hive/warehouse/export_"
	DefaultRemoteWorkingDirectory  = "hms_mirror_remote_working_dir"

	DefaultArtificialBucketThreshold  = 2
	DefaultACIDPartitionLimit         = 500
	DefaultExportImportPartitionLimit = 100
	DefaultSQLPartitionLimit          = 500
	DefaultConsolidationLevelBase     = 1
	DefaultWorkers                    = 4

	DefaultConfigFile = "hms-mirror.yaml"
	DefaultPlanFile   = "hms-mirror-plan.yaml"
)

// Environment variables read from the optional warehouse dotenv file.
const (
	EnvExternalWarehouseDir = "HMS_MIRROR_EXTERNAL_WAREHOUSE_DIR"
	EnvManagedWarehouseDir  = "HMS_MIRROR_MANAGED_WAREHOUSE_DIR"
)

// Table properties written or inspected while transforming definitions.
const (
	PropMetadataFlag        = "hms-mirror_Metadata_Stage1"
	PropConvertedFlag       = "hms-mirror_Converted"
	PropLegacyManagedFlag   = "hms-mirror_LegacyManaged"
	PropTransferTable       = "hms-mirror_transfer_table"
	PropShadowTable         = "hms-mirror_shadow_table"
	PropStorageMigrated     = "hms-mirror-STORAGE_MIGRATED"
	PropDowngradedFromACID  = "downgraded_from_acid"
	PropDiscoverPartitions  = "discover.partitions"
	PropTranslatedExternal  = "TRANSLATED_TO_EXTERNAL"
	PropExternalTablePurge  = "external.table.purge"
	PropTransactional       = "transactional"
	PropTransactionalProps  = "transactional_properties"
	PropBucketingVersion    = "bucketing_version"
	PropExternal            = "EXTERNAL"
	PropColumnStatsAccurate = "COLUMN_STATS_ACCURATE"
)

// StatisticProperties are dropped from every transformed definition; the
// target metastore recomputes them.
var StatisticProperties = []string{
	PropColumnStatsAccurate,
	"numFiles",
	"numRows",
	"rawDataSize",
	"totalSize",
	PropDiscoverPartitions,
	"transient_lastDdlTime",
	"external",
	"last_modified_by",
	"last_modified_time",
}

// Hive session settings emitted ahead of partitioned inserts.
const (
	SortDynamicPartition          = "hive.optimize.sort.dynamic.partition"
	SortDynamicPartitionThreshold = "hive.optimize.sort.dynamic.partition.threshold"
	TezExecutionEngine            = "hive.execution.engine"
)
