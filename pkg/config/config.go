package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TranslationType controls what happens to a location no mapping rule covers.
type TranslationType string

// DataMovement selects how data follows a migrated table.
type DataMovement string

const (
	// Relative keeps the relative path and swaps the namespace.
	Relative TranslationType = "RELATIVE"
	// Aligned requires every location to land under a warehouse plan.
	Aligned TranslationType = "ALIGNED"

	// MovementSQL moves data with INSERT statements.
	MovementSQL DataMovement = "SQL"
	// MovementDistcp leaves data movement to distcp and only plans paths.
	MovementDistcp DataMovement = "DISTCP"
)

type (
	// Cluster describes one side of the migration.
	Cluster struct {
		// Namespace is the protocol://authority of the cluster filesystem,
		// e.g. hdfs://nameservice1.
		Namespace string `yaml:"namespace" toml:"namespace"`

		// LegacyHive is set for Hive 1/2 clusters.
		LegacyHive bool `yaml:"legacy_hive" toml:"legacy_hive"`

		// HDPHive3 marks HDP 3 clusters, which lack some session settings.
		HDPHive3 bool `yaml:"hdp_hive3" toml:"hdp_hive3"`

		// PartitionDiscovery controls how partitions of created tables are
		// registered.
		PartitionDiscovery PartitionDiscovery `yaml:"partition_discovery" toml:"partition_discovery"`
	}

	// PartitionDiscovery settings for a cluster.
	PartitionDiscovery struct {
		// Auto adds 'discover.partitions'='true' to created tables.
		Auto bool `yaml:"auto" toml:"auto"`
		// InitMSCK emits MSCK REPAIR TABLE after creating partitioned tables.
		InitMSCK bool `yaml:"init_msck" toml:"init_msck"`
	}

	// Clusters holds the source and target clusters.
	Clusters struct {
		Left  Cluster `yaml:"left" toml:"left"`
		Right Cluster `yaml:"right" toml:"right"`
	}

	// Transfer settings used to name scratch tables and staging locations.
	Transfer struct {
		TransferPrefix          string `yaml:"transfer_prefix" toml:"transfer_prefix"`
		ShadowPrefix            string `yaml:"shadow_prefix" toml:"shadow_prefix"`
		StorageMigrationPostfix string `yaml:"storage_migration_postfix" toml:"storage_migration_postfix"`
		ExportBaseDirPrefix     string `yaml:"export_base_dir_prefix" toml:"export_base_dir_prefix"`
		RemoteWorkingDirectory  string `yaml:"remote_working_directory" toml:"remote_working_directory"`

		// IntermediateStorage is a location both clusters can reach, used to
		// stage data between them.
		IntermediateStorage string `yaml:"intermediate_storage" toml:"intermediate_storage"`

		// CommonStorage is a namespace both clusters share. When set it is the
		// target namespace for every translation.
		CommonStorage string `yaml:"common_storage" toml:"common_storage"`

		// Warehouse is the GLOBAL warehouse plan.
		Warehouse Warehouse `yaml:"warehouse" toml:"warehouse"`
	}

	// Warehouse is a pair of base directories. The database directory is
	// appended at resolution time.
	Warehouse struct {
		ExternalDirectory string `yaml:"external_directory" toml:"external_directory"`
		ManagedDirectory  string `yaml:"managed_directory" toml:"managed_directory"`
	}

	// MigrateACID settings.
	MigrateACID struct {
		On                        bool `yaml:"on" toml:"on"`
		Only                      bool `yaml:"only" toml:"only"`
		ArtificialBucketThreshold int  `yaml:"artificial_bucket_threshold" toml:"artificial_bucket_threshold"`
		PartitionLimit            int  `yaml:"partition_limit" toml:"partition_limit"`
		Downgrade                 bool `yaml:"downgrade" toml:"downgrade"`
		InPlace                   bool `yaml:"inplace" toml:"inplace"`
	}

	// Hybrid holds the limits used to choose between EXPORT_IMPORT and SQL.
	Hybrid struct {
		ExportImportPartitionLimit int `yaml:"export_import_partition_limit" toml:"export_import_partition_limit"`
		SQLPartitionLimit          int `yaml:"sql_partition_limit" toml:"sql_partition_limit"`
	}

	// Optimization settings for generated INSERT statements.
	Optimization struct {
		// Skip emits plain declarative inserts.
		Skip bool `yaml:"skip" toml:"skip"`
		// SortDynamicPartitionInserts relies on Hive's sorted dynamic
		// partition inserts instead of DISTRIBUTE BY.
		SortDynamicPartitionInserts bool `yaml:"sort_dynamic_partition_inserts" toml:"sort_dynamic_partition_inserts"`
		// Overrides are session settings emitted per environment.
		Overrides map[mirror.Environment]map[string]string `yaml:"overrides" toml:"overrides"`
	}

	// LocationMapping is one user entry of the global location map. An empty
	// TableType applies to both table types.
	LocationMapping struct {
		From      string           `yaml:"from" toml:"from"`
		To        string           `yaml:"to" toml:"to"`
		TableType mirror.TableType `yaml:"table_type,omitempty" toml:"table_type"`
	}

	// Translator settings for the location translator.
	Translator struct {
		TranslationType           TranslationType      `yaml:"translation_type" toml:"translation_type"`
		DataMovement              DataMovement         `yaml:"data_movement" toml:"data_movement"`
		ConsolidationLevelBase    int                  `yaml:"consolidation_level_base" toml:"consolidation_level_base"`
		PartitionLevelMismatch    bool                 `yaml:"partition_level_mismatch" toml:"partition_level_mismatch"`
		AutoGlobalLocationMap     bool                 `yaml:"auto_global_location_map" toml:"auto_global_location_map"`
		EvaluatePartitionLocation bool                 `yaml:"evaluate_partition_location" toml:"evaluate_partition_location"`
		ForceExternalLocation     bool                 `yaml:"force_external_location" toml:"force_external_location"`
		GlobalLocationMap         []LocationMapping    `yaml:"global_location_map" toml:"global_location_map"`
		WarehousePlans            map[string]Warehouse `yaml:"warehouse_plans" toml:"warehouse_plans"`
	}

	// Filter restricts which tables are planned.
	Filter struct {
		TableRegex        string `yaml:"table_regex" toml:"table_regex"`
		TableExcludeRegex string `yaml:"table_exclude_regex" toml:"table_exclude_regex"`
	}

	// Metastore configures where table metadata is read from.
	Metastore struct {
		// MetadataFile is a YAML document describing the source tables.
		MetadataFile string `yaml:"metadata_file" toml:"metadata_file"`
		// Driver and DSN of the metastore's backing database, used to read
		// partition locations directly. Driver is mysql, postgres or sqlite.
		Driver string `yaml:"driver" toml:"driver"`
		DSN    string `yaml:"dsn" toml:"dsn"`
	}

	// Execute configures replaying the planned SQL. Driver names a registered
	// database/sql driver; an environment without a DSN is not replayed.
	Execute struct {
		Driver   string `yaml:"driver" toml:"driver"`
		LeftDSN  string `yaml:"left_dsn" toml:"left_dsn"`
		RightDSN string `yaml:"right_dsn" toml:"right_dsn"`
	}

	// Config is the immutable run configuration.
	Config struct {
		DataStrategy      mirror.DataStrategy `yaml:"data_strategy" toml:"data_strategy"`
		Databases         []string            `yaml:"databases" toml:"databases"`
		DBPrefix          string              `yaml:"db_prefix" toml:"db_prefix"`
		ReadOnly          bool                `yaml:"read_only" toml:"read_only"`
		NoPurge           bool                `yaml:"no_purge" toml:"no_purge"`
		Sync              bool                `yaml:"sync" toml:"sync"`
		CreateIfNotExists bool                `yaml:"create_if_not_exists" toml:"create_if_not_exists"`
		OwnershipTransfer bool                `yaml:"ownership_transfer" toml:"ownership_transfer"`
		ConvertManaged    bool                `yaml:"convert_managed" toml:"convert_managed"`
		Strict            bool                `yaml:"strict" toml:"strict"`
		RunMarker         string              `yaml:"run_marker" toml:"run_marker"`
		Workers           int                 `yaml:"workers" toml:"workers"`
		WarehouseEnvFile  string              `yaml:"warehouse_env_file" toml:"warehouse_env_file"`
		LedgerFile        string              `yaml:"ledger_file" toml:"ledger_file"`
		OutputDir         string              `yaml:"output_dir" toml:"output_dir"`

		Clusters     Clusters     `yaml:"clusters" toml:"clusters"`
		Transfer     Transfer     `yaml:"transfer" toml:"transfer"`
		MigrateACID  MigrateACID  `yaml:"migrate_acid" toml:"migrate_acid"`
		Hybrid       Hybrid       `yaml:"hybrid" toml:"hybrid"`
		Optimization Optimization `yaml:"optimization" toml:"optimization"`
		Translator   Translator   `yaml:"translator" toml:"translator"`
		Filter       Filter       `yaml:"filter" toml:"filter"`
		Metastore    Metastore    `yaml:"metastore" toml:"metastore"`
		Execute      Execute      `yaml:"execute" toml:"execute"`
	}
)

// LoadConfig parses a YAML run configuration from the provided io.Reader and
// fills in defaults for omitted values.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	data_strategy: SCHEMA_ONLY
//	databases: [sales]
//	clusters:
//	  left:
//	    namespace: hdfs://left
//	  right:
//	    namespace: hdfs://right
//	`))
//	if err != nil {
//		return err
//	}
//
//	cfg.Translator.ConsolidationLevelBase // 1
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadTOMLConfig parses a TOML run configuration from the provided io.Reader.
func LoadTOMLConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal toml config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfigFile loads a configuration from path. Files ending in .toml are
// decoded as TOML, everything else as YAML.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return LoadTOMLConfig(f)
	}

	return LoadConfig(f)
}

func (c *Config) applyDefaults() {
	if c.DataStrategy == "" {
		c.DataStrategy = mirror.SchemaOnly
	} else if ds, err := mirror.ParseDataStrategy(string(c.DataStrategy)); err == nil {
		c.DataStrategy = ds
	}

	if c.Workers <= 0 {
		c.Workers = consts.DefaultWorkers
	}
	if c.RunMarker == "" {
		c.RunMarker = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	t := &c.Transfer
	setDefault(&t.TransferPrefix, consts.DefaultTransferPrefix)
	setDefault(&t.ShadowPrefix, consts.DefaultShadowPrefix)
	setDefault(&t.StorageMigrationPostfix, consts.DefaultStorageMigrationPostfix)
	setDefault(&t.ExportBaseDirPrefix, consts.DefaultExportBaseDirPrefix)
	setDefault(&t.RemoteWorkingDirectory, consts.DefaultRemoteWorkingDirectory)

	if c.MigrateACID.ArtificialBucketThreshold == 0 {
		c.MigrateACID.ArtificialBucketThreshold = consts.DefaultArtificialBucketThreshold
	}
	if c.MigrateACID.PartitionLimit == 0 {
		c.MigrateACID.PartitionLimit = consts.DefaultACIDPartitionLimit
	}
	if c.Hybrid.ExportImportPartitionLimit == 0 {
		c.Hybrid.ExportImportPartitionLimit = consts.DefaultExportImportPartitionLimit
	}
	if c.Hybrid.SQLPartitionLimit == 0 {
		c.Hybrid.SQLPartitionLimit = consts.DefaultSQLPartitionLimit
	}

	tr := &c.Translator
	if tr.TranslationType == "" {
		tr.TranslationType = Relative
	}
	tr.TranslationType = TranslationType(strings.ToUpper(string(tr.TranslationType)))
	if tr.DataMovement == "" {
		tr.DataMovement = MovementSQL
	}
	tr.DataMovement = DataMovement(strings.ToUpper(string(tr.DataMovement)))
	if tr.ConsolidationLevelBase == 0 {
		tr.ConsolidationLevelBase = consts.DefaultConsolidationLevelBase
	}
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// Validate checks the settings that make every table unplannable when wrong.
// Settings that only affect some tables are reported per table instead.
func (c *Config) Validate() error {
	ds, err := mirror.ParseDataStrategy(string(c.DataStrategy))
	if err != nil {
		return errors.Wrap(err, "invalid data_strategy")
	}
	if ds.Hidden() {
		return errors.Errorf("data_strategy %s is selected automatically and cannot be requested", ds)
	}

	switch c.Translator.TranslationType {
	case Relative, Aligned:
	default:
		return errors.Errorf("invalid translation_type %q", c.Translator.TranslationType)
	}

	switch c.Translator.DataMovement {
	case MovementSQL, MovementDistcp:
	default:
		return errors.Errorf("invalid data_movement %q", c.Translator.DataMovement)
	}

	if c.Translator.ConsolidationLevelBase < 0 {
		return errors.New("consolidation_level_base must not be negative")
	}

	for i, m := range c.Translator.GlobalLocationMap {
		if strings.TrimSpace(m.From) == "" || strings.TrimSpace(m.To) == "" {
			return errors.Errorf("global_location_map entry %d needs both from and to", i)
		}
		if m.TableType != "" {
			if _, err := mirror.ParseTableType(string(m.TableType)); err != nil {
				return errors.Wrapf(err, "global_location_map entry %d", i)
			}
		}
	}

	if c.MigrateACID.InPlace && !c.MigrateACID.Downgrade {
		return errors.New("migrate_acid.inplace requires migrate_acid.downgrade")
	}

	if c.Metastore.Driver != "" {
		switch c.Metastore.Driver {
		case "mysql", "postgres", "sqlite":
		default:
			return errors.Errorf("unsupported metastore driver %q", c.Metastore.Driver)
		}
	}

	if (c.Execute.LeftDSN != "" || c.Execute.RightDSN != "") && c.Execute.Driver == "" {
		return errors.New("execute.driver is required when an execute dsn is set")
	}

	return nil
}

// OwnershipAllowed reports whether created tables may own their data. Either
// read_only or no_purge suppresses ownership.
func (c *Config) OwnershipAllowed() bool {
	return !c.ReadOnly && !c.NoPurge
}

// SourceNamespace returns the LEFT namespace.
func (c *Config) SourceNamespace() string {
	return strings.TrimSuffix(strings.TrimSpace(c.Clusters.Left.Namespace), "/")
}

// TargetNamespace returns the namespace translated locations land in:
// common_storage when set, otherwise the LEFT namespace for
// STORAGE_MIGRATION and the RIGHT namespace for everything else.
func (c *Config) TargetNamespace() string {
	ns := c.Clusters.Right.Namespace
	switch {
	case c.Transfer.CommonStorage != "":
		ns = c.Transfer.CommonStorage
	case c.DataStrategy == mirror.StorageMigration:
		ns = c.Clusters.Left.Namespace
	}

	return strings.TrimSuffix(strings.TrimSpace(ns), "/")
}

// IsDistcp reports whether data movement is left to distcp.
func (c *Config) IsDistcp() bool {
	return c.Translator.DataMovement == MovementDistcp
}

// IsDowngradeInPlace reports whether ACID tables are downgraded on the source
// cluster.
func (c *Config) IsDowngradeInPlace() bool {
	return c.MigrateACID.Downgrade && c.MigrateACID.InPlace
}

// LoadMetadataDetails reports whether partition locations are needed to plan
// the run. ALIGNED distcp migrations need them for every strategy that moves
// data.
func (c *Config) LoadMetadataDetails() bool {
	if c.Translator.EvaluatePartitionLocation {
		return true
	}
	if c.Translator.TranslationType != Aligned || !c.IsDistcp() {
		return false
	}

	switch c.DataStrategy {
	case mirror.Linked, mirror.Common:
		return false
	default:
		return true
	}
}

// LegacyMismatch reports whether exactly one cluster runs legacy Hive.
func (c *Config) LegacyMismatch() bool {
	return c.Clusters.Left.LegacyHive != c.Clusters.Right.LegacyHive
}

// Cluster returns the cluster settings for env. TRANSFER tables live on the
// LEFT cluster and SHADOW tables on the RIGHT.
func (c *Config) Cluster(env mirror.Environment) Cluster {
	switch env {
	case mirror.RIGHT, mirror.SHADOW:
		if c.DataStrategy == mirror.StorageMigration {
			return c.Clusters.Left
		}
		return c.Clusters.Right
	default:
		return c.Clusters.Left
	}
}

// TargetDatabase returns the database name used on the target.
func (c *Config) TargetDatabase(db string) string {
	return c.DBPrefix + db
}

// Overrides returns the session overrides for env.
func (c *Config) Overrides(env mirror.Environment) map[string]string {
	return c.Optimization.Overrides[env]
}

// LoadWarehouseEnv reads the external and managed warehouse directories from
// the dotenv file named by warehouse_env_file. An unset file yields empty
// values.
func (c *Config) LoadWarehouseEnv() (Warehouse, error) {
	if c.WarehouseEnvFile == "" {
		return Warehouse{}, nil
	}

	env, err := godotenv.Read(c.WarehouseEnvFile)
	if err != nil {
		return Warehouse{}, errors.Wrapf(err, "failed to read warehouse env file: %s", c.WarehouseEnvFile)
	}

	return Warehouse{
		ExternalDirectory: env[consts.EnvExternalWarehouseDir],
		ManagedDirectory:  env[consts.EnvManagedWarehouseDir],
	}, nil
}
