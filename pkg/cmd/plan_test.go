package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const testMetadata = `
databases:
  - name: sales
    location: hdfs://left/warehouse/sales.db
    tables:
      - name: customers
        owner: etl
        definition:
          - CREATE EXTERNAL TABLE ` + "`sales.customers`" + `(
          - "  ` + "`id`" + ` bigint)"
          - LOCATION
          - "  'hdfs://left/warehouse/sales.db/customers'"
`

func TestPlanCommand(t *testing.T) {
	dir := writeProject(t, `
data_strategy: SCHEMA_ONLY
run_marker: cmdtest1
clusters:
  left: {namespace: hdfs://left}
  right: {namespace: hdfs://right}
metastore:
  metadata_file: METADATA
`)

	out, err := runTestCommand(t, plan(planParams{}),
		"--config", filepath.Join(dir, consts.DefaultConfigFile),
		"--output", filepath.Join(dir, "out"),
	)
	require.NoError(t, err)
	require.Contains(t, out, "sales -> sales: 1 tables, 0 filtered")
	require.Contains(t, out, "CALCULATED_SQL")

	data, err := os.ReadFile(filepath.Join(dir, "out", "sales", consts.DefaultPlanFile))
	require.NoError(t, err)

	var doc struct {
		Name   string `yaml:"name"`
		Tables []struct {
			Name       string `yaml:"name"`
			PhaseState string `yaml:"phaseState"`
		} `yaml:"tables"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Equal(t, "sales", doc.Name)
	require.Len(t, doc.Tables, 1)
	require.Equal(t, "customers", doc.Tables[0].Name)
	require.Equal(t, "CALCULATED_SQL", doc.Tables[0].PhaseState)
	require.Contains(t, string(data), "hdfs://right/warehouse/sales.db/customers")

	require.NoFileExists(t, filepath.Join(dir, "out", "sales", "sales_RIGHT_distcp_script.sh"))
}

func TestPlanCommand_Distcp(t *testing.T) {
	dir := writeProject(t, `
data_strategy: SCHEMA_ONLY
clusters:
  left: {namespace: hdfs://left}
  right: {namespace: hdfs://right}
translator:
  data_movement: distcp
metastore:
  metadata_file: METADATA
output_dir: OUTPUT
`)

	_, err := runTestCommand(t, plan(planParams{}), "--config", filepath.Join(dir, consts.DefaultConfigFile))
	require.NoError(t, err)

	salesDir := filepath.Join(dir, "out", "sales")
	script, err := os.ReadFile(filepath.Join(salesDir, "sales_RIGHT_distcp_script.sh"))
	require.NoError(t, err)
	require.Contains(t, string(script), "hadoop distcp ${DISTCP_OPTS} -f ${HCFS_BASE_DIR}/sales_RIGHT_distcp_source_1.txt hdfs://right/warehouse/sales.db")

	sources, err := os.ReadFile(filepath.Join(salesDir, "sales_RIGHT_distcp_source_1.txt"))
	require.NoError(t, err)
	require.Equal(t, "hdfs://left/warehouse/sales.db\n", string(sources))
}

func TestPlanCommand_Ledger(t *testing.T) {
	dir := writeProject(t, `
clusters:
  left: {namespace: hdfs://left}
  right: {namespace: hdfs://right}
metastore:
  metadata_file: METADATA
output_dir: OUTPUT
ledger_file: LEDGER
`)

	_, err := runTestCommand(t, plan(planParams{}), "--config", filepath.Join(dir, consts.DefaultConfigFile))
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "ledger.db"))
}

func TestPlanCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
		err    string
	}{
		{
			name:   "missing metadata file setting",
			config: "clusters: {right: {namespace: hdfs://right}}",
			err:    "metastore.metadata_file is required",
		},
		{
			name:   "invalid configuration",
			config: "data_strategy: ACID",
			err:    "invalid configuration: data_strategy ACID is selected automatically",
		},
		{
			name:   "execute without driver",
			config: "metastore: {metadata_file: METADATA}",
			args:   []string{"--execute"},
			err:    "--execute requires the execute section of the config",
		},
		{
			name:   "unknown database",
			config: "metastore: {metadata_file: METADATA}",
			args:   []string{"finance"},
			err:    "failed to load tables of finance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t, tt.config)

			args := append([]string{"--config", filepath.Join(dir, consts.DefaultConfigFile)}, tt.args...)
			_, err := runTestCommand(t, plan(planParams{}), args...)
			require.ErrorContains(t, err, tt.err)
		})
	}
}

func TestResolveConfig(t *testing.T) {
	cfg, err := config.LoadConfig(strings.NewReader("workers: 2"))
	require.NoError(t, err)

	resolved, err := resolveConfig(cfg, "")
	require.NoError(t, err)
	require.Same(t, cfg, resolved)

	t.Chdir(t.TempDir())
	_, err = resolveConfig(nil, "")
	require.ErrorContains(t, err, "hms-mirror.yaml not found")

	_, err = resolveConfig(cfg, "missing.yaml")
	require.ErrorContains(t, err, "failed to open file: missing.yaml")
}

func TestSetLogLevel(t *testing.T) {
	require.NoError(t, setLogLevel("debug"))
	require.NoError(t, setLogLevel("info"))
	require.ErrorContains(t, setLogLevel("loud"), `invalid --log-level "loud"`)
}

// writeProject writes the metadata document and a config into a temp dir.
// METADATA, OUTPUT and LEDGER in doc are replaced with paths in that dir.
func writeProject(t *testing.T, doc string) string {
	t.Helper()

	dir := t.TempDir()
	metadata := filepath.Join(dir, "metadata.yaml")
	require.NoError(t, os.WriteFile(metadata, []byte(testMetadata), consts.ModeFile))

	doc = strings.NewReplacer(
		"METADATA", metadata,
		"OUTPUT", filepath.Join(dir, "out"),
		"LEDGER", filepath.Join(dir, "ledger.db"),
	).Replace(doc)

	require.NoError(t, os.WriteFile(filepath.Join(dir, consts.DefaultConfigFile), []byte(doc), consts.ModeFile))
	return dir
}

func runTestCommand(t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	app := &cli.Command{
		Name:     "test",
		Writer:   &buf,
		Commands: []*cli.Command{command},
	}

	err := app.Run(context.Background(), append([]string{"test", command.Name}, args...))
	return buf.String(), err
}
