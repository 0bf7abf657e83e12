package metastore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionQuery(t *testing.T) {
	p := &DirectProvider{dialect: postgresDialect{}}
	q := p.partitionQuery()
	require.Contains(t, q, `FROM "DBS" d`)
	require.Contains(t, q, `JOIN "SDS" s ON s."SD_ID" = pt."SD_ID"`)
	require.Contains(t, q, `WHERE d."NAME" = $1`)

	p = &DirectProvider{dialect: mysqlDialect{}}
	q = p.partitionQuery()
	require.Contains(t, q, "FROM DBS d")
	require.Contains(t, q, "WHERE d.NAME = ?")
}
