package utils_test

import (
	"testing"

	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestPartitionSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		sql     string
		columns string
		depth   int
	}{
		{name: "single", spec: "part=1", sql: `part="1"`, columns: "part", depth: 1},
		{name: "multi", spec: "dt=2024-01-01/hr=01", sql: `dt="2024-01-01",hr="01"`, columns: "dt,hr", depth: 2},
		{name: "surrounding slashes", spec: "/a=1/", sql: `a="1"`, columns: "a", depth: 1},
		{name: "empty", spec: "", sql: "", columns: "", depth: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.sql, utils.PartitionSpecToSQL(tt.spec))
			require.Equal(t, tt.columns, utils.PartitionColumns(tt.spec))
			require.Equal(t, tt.depth, utils.PartitionDepth(tt.spec))
		})
	}
}

func TestPartitionSpecMatchesDir(t *testing.T) {
	require.True(t, utils.PartitionSpecMatchesDir("part=1", "hdfs://ns/wh/db.db/tbl/part=1"))
	require.True(t, utils.PartitionSpecMatchesDir("a=1/b=2", "/wh/tbl/a=1/b=2/"))
	require.False(t, utils.PartitionSpecMatchesDir("part=1", "hdfs://ns/wh/db.db/tbl/odd"))
	require.False(t, utils.PartitionSpecMatchesDir("part=1", "/wh/tbl/xpart=1"))
	require.False(t, utils.PartitionSpecMatchesDir("", "/wh/tbl"))
}
