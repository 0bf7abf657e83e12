package metastore_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	. "github.com/cloudera-labs/hms-mirror/pkg/metastore"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const metastoreSchema = `
CREATE TABLE DBS (DB_ID INTEGER PRIMARY KEY, NAME TEXT);
CREATE TABLE SDS (SD_ID INTEGER PRIMARY KEY, LOCATION TEXT);
CREATE TABLE TBLS (TBL_ID INTEGER PRIMARY KEY, DB_ID INTEGER, SD_ID INTEGER, TBL_NAME TEXT);
CREATE TABLE PARTITIONS (PART_ID INTEGER PRIMARY KEY, TBL_ID INTEGER, SD_ID INTEGER, PART_NAME TEXT);

INSERT INTO DBS VALUES (1, 'sales'), (2, 'hr');
INSERT INTO SDS VALUES
	(10, 'hdfs://left/data/sales/events'),
	(11, 'hdfs://left/data/sales/events/dt=2024-01-01'),
	(12, 'hdfs://left/archive/events/dt=2024-01-02'),
	(13, 'hdfs://left/data/hr/events/dt=2024-01-01');
INSERT INTO TBLS VALUES (100, 1, 10, 'events'), (101, 2, 10, 'events');
INSERT INTO PARTITIONS VALUES
	(1000, 100, 11, 'dt=2024-01-01'),
	(1001, 100, 12, 'dt=2024-01-02'),
	(1002, 101, 13, 'dt=2024-01-01');
`

func newMetastore(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "metastore.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(metastoreSchema)
	require.NoError(t, err)
	return path
}

func TestDirectProvider(t *testing.T) {
	base, err := LoadFile("testdata/metadata.yaml")
	require.NoError(t, err)

	p, err := OpenDirect("sqlite", newMetastore(t), base)
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	ctx := context.Background()

	dbs, err := p.Databases(ctx)
	require.NoError(t, err)
	require.Len(t, dbs, 2)

	tables, err := p.Tables(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, tables, 2)

	require.Empty(t, tables[0].Partitions)
	require.Equal(t, map[string]string{
		"dt=2024-01-01": "hdfs://left/data/sales/events/dt=2024-01-01",
		"dt=2024-01-02": "hdfs://left/archive/events/dt=2024-01-02",
	}, tables[1].Partitions)

	// the base document is left untouched
	original, err := base.Tables(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, original[1].Partitions, 1)

	_, err = p.Tables(ctx, "finance")
	require.ErrorContains(t, err, "not found")
}

func TestDirectProviderPartitions(t *testing.T) {
	db, err := sql.Open("sqlite", newMetastore(t))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	p, err := NewDirectProvider(db, "sqlite", nil)
	require.NoError(t, err)

	parts, err := p.Partitions(context.Background(), "hr")
	require.NoError(t, err)
	require.Equal(t, map[string]map[string]string{
		"events": {"dt=2024-01-01": "hdfs://left/data/hr/events/dt=2024-01-01"},
	}, parts)

	parts, err = p.Partitions(context.Background(), "finance")
	require.NoError(t, err)
	require.Empty(t, parts)
}

func TestDirectProviderDriver(t *testing.T) {
	_, err := OpenDirect("oracle", "", nil)
	require.ErrorContains(t, err, `unsupported metastore driver "oracle"`)

	_, err = NewDirectProvider(nil, "db2", nil)
	require.ErrorContains(t, err, "unsupported metastore driver")
}
