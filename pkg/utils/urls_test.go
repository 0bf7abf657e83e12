package utils_test

import (
	"testing"

	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestNamespace(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		ns       string
		stripped string
	}{
		{name: "hdfs", url: "hdfs://left/warehouse/db.db", ns: "hdfs://left", stripped: "/warehouse/db.db"},
		{name: "with port", url: "hdfs://host:8020/wh", ns: "hdfs://host:8020", stripped: "/wh"},
		{name: "object store", url: "s3a://my-bucket/data/tbl", ns: "s3a://my-bucket", stripped: "/data/tbl"},
		{name: "no namespace", url: "/warehouse/tbl", ns: "", stripped: "/warehouse/tbl"},
		{name: "namespace only", url: "ofs://ozone1", ns: "ofs://ozone1", stripped: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.ns, utils.Namespace(tt.url))
			require.Equal(t, tt.stripped, utils.StripNamespace(tt.url))
		})
	}
}

func TestReplaceNamespace(t *testing.T) {
	require.Equal(t, "s3a://bucket/warehouse/tbl", utils.ReplaceNamespace("hdfs://left/warehouse/tbl", "s3a://bucket/"))
	require.Equal(t, "hdfs://right/warehouse/tbl", utils.ReplaceNamespace("/warehouse/tbl", "hdfs://right"))
}

func TestReduceURLBy(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		level    int
		expected string
	}{
		{name: "zero level", url: "hdfs://ns/wh/db.db/tbl", level: 0, expected: "hdfs://ns/wh/db.db/tbl"},
		{name: "one level", url: "hdfs://ns/wh/db.db/tbl", level: 1, expected: "hdfs://ns/wh/db.db"},
		{name: "trailing slash", url: "/wh/db.db/tbl/", level: 2, expected: "/wh"},
		{name: "stops at namespace", url: "hdfs://ns/wh", level: 3, expected: "hdfs://ns"},
		{name: "whitespace", url: "  /a/b/c  ", level: 1, expected: "/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.ReduceURLBy(tt.url, tt.level))
		})
	}
}

func TestDirectories(t *testing.T) {
	require.Equal(t, "tbl", utils.LastDirectory("hdfs://ns/wh/db.db/tbl/"))
	require.Equal(t, "hdfs://ns/wh/db.db", utils.ParentDirectory("hdfs://ns/wh/db.db/tbl"))
	require.Equal(t, "/wh/ext", utils.NormalizeDir("wh/ext/"))
	require.Equal(t, "", utils.NormalizeDir("  "))
}

func TestIsSubPath(t *testing.T) {
	require.True(t, utils.IsSubPath("/data/tbl", "/data/tbl/part=1"))
	require.True(t, utils.IsSubPath("/data/tbl/", "/data/tbl"))
	require.False(t, utils.IsSubPath("/data/tbl", "/data/tbl2"))
	require.False(t, utils.IsSubPath("", "/data"))
}
