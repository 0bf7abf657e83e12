package config_test

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/hms-mirror.yaml
var testConfigYAML string

func TestLoadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(testConfigYAML))
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("invalid: yaml: ["))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal config")

		config, err = LoadConfig(strings.NewReader(""))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal config")
	})

	t.Run("defaults", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("other_key: value"))
		require.NoError(t, err)
		require.Equal(t, mirror.SchemaOnly, config.DataStrategy)
		require.Equal(t, consts.DefaultWorkers, config.Workers)
		require.Len(t, config.RunMarker, 8)
		require.Equal(t, consts.DefaultTransferPrefix, config.Transfer.TransferPrefix)
		require.Equal(t, consts.DefaultShadowPrefix, config.Transfer.ShadowPrefix)
		require.Equal(t, consts.DefaultStorageMigrationPostfix, config.Transfer.StorageMigrationPostfix)
		require.Equal(t, consts.DefaultExportBaseDirPrefix, config.Transfer.ExportBaseDirPrefix)
		require.Equal(t, consts.DefaultRemoteWorkingDirectory, config.Transfer.RemoteWorkingDirectory)
		require.Equal(t, consts.DefaultArtificialBucketThreshold, config.MigrateACID.ArtificialBucketThreshold)
		require.Equal(t, consts.DefaultACIDPartitionLimit, config.MigrateACID.PartitionLimit)
		require.Equal(t, consts.DefaultExportImportPartitionLimit, config.Hybrid.ExportImportPartitionLimit)
		require.Equal(t, consts.DefaultSQLPartitionLimit, config.Hybrid.SQLPartitionLimit)
		require.Equal(t, Relative, config.Translator.TranslationType)
		require.Equal(t, MovementSQL, config.Translator.DataMovement)
		require.Equal(t, consts.DefaultConsolidationLevelBase, config.Translator.ConsolidationLevelBase)
		require.NoError(t, config.Validate())
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hms-mirror.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), consts.ModeFile))

		config, err := LoadConfigFile(path)
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("toml", func(t *testing.T) {
		config, err := LoadConfigFile("testdata/hms-mirror.toml")
		require.NoError(t, err)
		require.Equal(t, mirror.StorageMigration, config.DataStrategy)
		require.Equal(t, []string{"sales"}, config.Databases)
		require.True(t, config.ReadOnly)
		require.True(t, config.IsDistcp())
		require.Equal(t, "sqlite", config.Metastore.Driver)
		require.Equal(t, []LocationMapping{
			{From: "/data", To: "/ingest", TableType: mirror.ManagedTable},
		}, config.Translator.GlobalLocationMap)

		// storage migration stays on the source namespace
		require.Equal(t, "hdfs://left", config.TargetNamespace())
		require.False(t, config.OwnershipAllowed())
		require.NoError(t, config.Validate())
	})

	t.Run("error", func(t *testing.T) {
		config, err := LoadConfigFile("nonexistent.yaml")
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to open file")

		config, err = LoadConfigFile(t.TempDir())
		require.Error(t, err)
		require.Nil(t, config)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{name: "unknown strategy", yaml: "data_strategy: bogus", errMsg: "invalid data_strategy"},
		{name: "hidden strategy", yaml: "data_strategy: INTERMEDIATE", errMsg: "selected automatically"},
		{name: "translation type", yaml: "translator: {translation_type: sideways}", errMsg: "invalid translation_type"},
		{name: "data movement", yaml: "translator: {data_movement: ftp}", errMsg: "invalid data_movement"},
		{
			name:   "incomplete mapping",
			yaml:   "translator: {global_location_map: [{from: /a}]}",
			errMsg: "global_location_map entry 0",
		},
		{
			name:   "bad mapping type",
			yaml:   "translator: {global_location_map: [{from: /a, to: /b, table_type: VIEW}]}",
			errMsg: "unknown table type",
		},
		{name: "inplace without downgrade", yaml: "migrate_acid: {inplace: true}", errMsg: "requires migrate_acid.downgrade"},
		{name: "metastore driver", yaml: "metastore: {driver: oracle}", errMsg: "unsupported metastore driver"},
		{name: "execute driver", yaml: "execute: {left_dsn: file:left.db}", errMsg: "execute.driver is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(strings.NewReader(tt.yaml))
			require.NoError(t, err)

			err = config.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestOwnershipAllowed(t *testing.T) {
	tests := []struct {
		readOnly bool
		noPurge  bool
		allowed  bool
	}{
		{false, false, true},
		{true, false, false},
		{false, true, false},
		{true, true, false},
	}

	for _, tt := range tests {
		c := &Config{ReadOnly: tt.readOnly, NoPurge: tt.noPurge}
		require.Equal(t, tt.allowed, c.OwnershipAllowed(), "readOnly=%v noPurge=%v", tt.readOnly, tt.noPurge)
	}
}

func TestTargetNamespace(t *testing.T) {
	c := &Config{DataStrategy: mirror.SQL}
	c.Clusters.Left.Namespace = "hdfs://left"
	c.Clusters.Right.Namespace = "hdfs://right/"
	require.Equal(t, "hdfs://right", c.TargetNamespace())
	require.Equal(t, "hdfs://left", c.SourceNamespace())

	c.Transfer.CommonStorage = "s3a://shared"
	require.Equal(t, "s3a://shared", c.TargetNamespace())

	c.Transfer.CommonStorage = ""
	c.DataStrategy = mirror.StorageMigration
	require.Equal(t, "hdfs://left", c.TargetNamespace())
	require.Equal(t, c.Clusters.Left, c.Cluster(mirror.RIGHT))
}

func TestLoadWarehouseEnv(t *testing.T) {
	c := &Config{}
	wh, err := c.LoadWarehouseEnv()
	require.NoError(t, err)
	require.Equal(t, Warehouse{}, wh)

	c.WarehouseEnvFile = "testdata/warehouse.env"
	wh, err = c.LoadWarehouseEnv()
	require.NoError(t, err)
	require.Equal(t, "/env/external", wh.ExternalDirectory)
	require.Equal(t, "/env/managed", wh.ManagedDirectory)

	c.WarehouseEnvFile = "testdata/missing.env"
	_, err = c.LoadWarehouseEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read warehouse env file")
}

func validateTestConfig(t *testing.T, config *Config) {
	t.Helper()

	require.Equal(t, mirror.SQL, config.DataStrategy)
	require.Equal(t, []string{"sales", "finance"}, config.Databases)
	require.Equal(t, "mig_sales", config.TargetDatabase("sales"))
	require.True(t, config.Sync)
	require.True(t, config.OwnershipTransfer)
	require.Equal(t, 8, config.Workers)
	require.Equal(t, "abc12345", config.RunMarker)

	require.Equal(t, "hdfs://left", config.SourceNamespace())
	require.Equal(t, "hdfs://right", config.TargetNamespace())
	require.True(t, config.LegacyMismatch())
	require.True(t, config.Cluster(mirror.SHADOW).PartitionDiscovery.Auto)
	require.True(t, config.Cluster(mirror.RIGHT).PartitionDiscovery.InitMSCK)
	require.True(t, config.Cluster(mirror.TRANSFER).LegacyHive)

	require.Equal(t, "s3a://staging", config.Transfer.IntermediateStorage)
	require.Equal(t, Warehouse{
		ExternalDirectory: "/warehouse/external",
		ManagedDirectory:  "/warehouse/managed",
	}, config.Transfer.Warehouse)

	require.True(t, config.MigrateACID.On)
	require.Equal(t, 4, config.MigrateACID.ArtificialBucketThreshold)
	require.Equal(t, map[string]string{"tez.queue.name": "migration"}, config.Overrides(mirror.LEFT))
	require.Nil(t, config.Overrides(mirror.SHADOW))

	tr := config.Translator
	require.Equal(t, Aligned, tr.TranslationType)
	require.Equal(t, MovementDistcp, tr.DataMovement)
	require.True(t, config.IsDistcp())
	require.Equal(t, 2, tr.ConsolidationLevelBase)
	require.True(t, tr.AutoGlobalLocationMap)
	require.Len(t, tr.GlobalLocationMap, 2)
	require.Equal(t, mirror.ExternalTable, tr.GlobalLocationMap[0].TableType)
	require.Empty(t, tr.GlobalLocationMap[1].TableType)
	require.Equal(t, "/sales/ext", tr.WarehousePlans["sales"].ExternalDirectory)

	require.Equal(t, "metadata.yaml", config.Metastore.MetadataFile)
	require.NoError(t, config.Validate())
}
