package utils_test

import (
	"testing"

	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestSQLBuilder(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() *utils.SQLBuilder
		expected string
	}{
		{
			name:     "DROP TABLE IF EXISTS",
			builder:  func() *utils.SQLBuilder { return utils.NewSQLBuilder().Drop("TABLE").IfExists().Name("orders") },
			expected: "DROP TABLE IF EXISTS `orders`",
		},
		{
			name: "ALTER TABLE RENAME",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder().Alter("TABLE").Name("orders").Raw("RENAME").To("orders_archive")
			},
			expected: "ALTER TABLE `orders` RENAME TO `orders_archive`",
		},
		{
			name: "partition location",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder().Alter("TABLE").Name("t").Partition("a=1/b=x").Raw("SET LOCATION").Quoted("/p")
			},
			expected: "ALTER TABLE `t` PARTITION (a=\"1\",b=\"x\") SET LOCATION \"/p\"",
		},
		{
			name:     "escaped comment",
			builder:  func() *utils.SQLBuilder { return utils.NewSQLBuilder().Raw("COMMENT").Escaped("it's") },
			expected: "COMMENT 'it\\'s'",
		},
		{
			name:     "empty builder",
			builder:  utils.NewSQLBuilder,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.builder().String())
		})
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		expected string
	}{
		{name: "use", actual: utils.Use("sales"), expected: "USE `sales`"},
		{name: "drop view", actual: utils.DropView("v"), expected: "DROP VIEW IF EXISTS `v`"},
		{name: "set owner", actual: utils.SetOwner("t", "hive"), expected: "ALTER TABLE `t` SET OWNER USER `hive`"},
		{
			name:     "export",
			actual:   utils.ExportTable("t", "hdfs://left/export/db/t"),
			expected: "EXPORT TABLE `t` TO \"hdfs://left/export/db/t\"",
		},
		{
			name:     "import external with location",
			actual:   utils.ImportExternalTable("t", "/exp", "/loc"),
			expected: "IMPORT EXTERNAL TABLE `t` FROM \"/exp\" LOCATION \"/loc\"",
		},
		{
			name:     "import external without location",
			actual:   utils.ImportExternalTable("t", "/exp", ""),
			expected: "IMPORT EXTERNAL TABLE `t` FROM \"/exp\"",
		},
		{
			name:     "unset property",
			actual:   utils.UnsetTableProperty("t", "external.table.purge"),
			expected: "ALTER TABLE `t` UNSET TBLPROPERTIES (\"external.table.purge\")",
		},
		{
			name:     "prescriptive insert",
			actual:   utils.InsertPartitions("a", "b", "dt,hr", "dt,hr"),
			expected: "FROM `a` INSERT OVERWRITE TABLE `b` PARTITION (dt,hr) SELECT * DISTRIBUTE BY dt,hr",
		},
		{
			name:     "declarative insert",
			actual:   utils.InsertPartitions("a", "b", "dt", ""),
			expected: "FROM `a` INSERT OVERWRITE TABLE `b` PARTITION (dt) SELECT *",
		},
		{
			name:     "add partitions",
			actual:   utils.AddPartitions("t", "\tPARTITION (a=\"1\") LOCATION 'x' \n"),
			expected: "ALTER TABLE `t` ADD IF NOT EXISTS\n\tPARTITION (a=\"1\") LOCATION 'x' \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.actual)
		})
	}
}

func TestSetSessionOverrides(t *testing.T) {
	stmts := utils.SetSessionOverrides(map[string]string{
		"tez.queue.name":    "migration",
		"hive.exec.retries": "3",
	})
	require.Equal(t, []string{"SET hive.exec.retries=3", "SET tez.queue.name=migration"}, stmts)
}

func TestIsComment(t *testing.T) {
	require.True(t, utils.IsComment("-- Run distcp commands"))
	require.False(t, utils.IsComment("USE `db`"))
}
