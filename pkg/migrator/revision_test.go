package migrator_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudera-labs/hms-mirror/pkg/migrator"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	ledger, err := migrator.OpenLedger(path)
	require.NoError(t, err)

	orders := mirror.NewTableMirror("sales", "orders")
	orders.Strategy = mirror.SQL
	orders.SetPhaseState(mirror.PhaseProcessed)

	customers := mirror.NewTableMirror("sales", "customers")
	customers.Strategy = mirror.SchemaOnly
	customers.AddError(mirror.RIGHT, "permission denied")
	customers.AddError(mirror.LEFT, "missing location")
	customers.SetPhaseState(mirror.PhaseError)

	require.NoError(t, ledger.Record(ctx, orders, "run00001"))
	require.NoError(t, ledger.Record(ctx, customers, "run00001"))

	revisions, err := ledger.Load(ctx)
	require.NoError(t, err)
	require.Len(t, revisions.Revisions(), 2)

	// ordered by db and table
	require.Equal(t, "customers", revisions.Revisions()[0].Table)
	require.Equal(t, "orders", revisions.Revisions()[1].Table)

	revision := revisions.GetRevision("sales", "orders")
	require.NotNil(t, revision)
	require.Equal(t, mirror.SQL, revision.Strategy)
	require.Equal(t, mirror.PhaseProcessed, revision.Phase)
	require.Equal(t, "run00001", revision.RunMarker)
	require.Nil(t, revision.Error)
	require.WithinDuration(t, time.Now(), revision.RecordedAt, time.Minute)

	revision = revisions.GetRevision("sales", "customers")
	require.NotNil(t, revision.Error)
	require.Equal(t, "LEFT: missing location; RIGHT: permission denied", *revision.Error)

	require.NoError(t, ledger.Close())

	t.Run("upsert", func(t *testing.T) {
		ledger, err := migrator.OpenLedger(path)
		require.NoError(t, err)
		defer func() { _ = ledger.Close() }()

		retried := mirror.NewTableMirror("sales", "customers")
		retried.Strategy = mirror.SchemaOnly
		retried.SetPhaseState(mirror.PhaseProcessed)
		require.NoError(t, ledger.Record(ctx, retried, "run00002"))

		revisions, err := ledger.Load(ctx)
		require.NoError(t, err)
		require.Len(t, revisions.Revisions(), 2)

		revision := revisions.GetRevision("sales", "customers")
		require.Equal(t, mirror.PhaseProcessed, revision.Phase)
		require.Equal(t, "run00002", revision.RunMarker)
		require.Nil(t, revision.Error)
		require.True(t, revisions.IsCompleted("sales", "customers"))
	})
}

func TestOpenLedgerInvalidPath(t *testing.T) {
	_, err := migrator.OpenLedger(filepath.Join(t.TempDir(), "missing", "ledger.db"))
	require.Error(t, err)
}

func TestNewRevisionSet(t *testing.T) {
	revisions := []*migrator.Revision{
		{Database: "sales", Table: "orders", Phase: mirror.PhaseError},
		{Database: "sales", Table: "customers", Phase: mirror.PhaseProcessed},
		{Database: "sales", Table: "orders", Phase: mirror.PhaseProcessed},
	}

	rs := migrator.NewRevisionSet(revisions)

	require.Len(t, rs.Revisions(), 2)
	require.Equal(t, "orders", rs.Revisions()[0].Table)
	require.Equal(t, mirror.PhaseProcessed, rs.GetRevision("sales", "orders").Phase)
	require.Nil(t, rs.GetRevision("hr", "staff"))
}

func TestRevisionSet_IsCompleted(t *testing.T) {
	failure := utils.Ptr("failed to execute statement 1")
	rs := migrator.NewRevisionSet([]*migrator.Revision{
		{Database: "sales", Table: "processed", Phase: mirror.PhaseProcessed},
		{Database: "sales", Table: "processed_with_error", Phase: mirror.PhaseProcessed, Error: failure},
		{Database: "sales", Table: "calculated", Phase: mirror.PhaseCalculatedSQL},
		{Database: "sales", Table: "failed", Phase: mirror.PhaseError, Error: failure},
		{Database: "sales", Table: "skipped", Phase: mirror.PhaseRetrySkippedPastSuccess},
	})

	tests := []struct {
		table     string
		completed bool
		failed    bool
	}{
		{table: "processed", completed: true},
		{table: "processed_with_error"},
		{table: "calculated"},
		{table: "failed", failed: true},
		{table: "skipped"},
		{table: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			require.Equal(t, tt.completed, rs.IsCompleted("sales", tt.table))
			require.Equal(t, tt.failed, rs.IsFailed("sales", tt.table))
		})
	}
}

func TestRevisionSet_Nil(t *testing.T) {
	var rs *migrator.RevisionSet
	require.Nil(t, rs.GetRevision("sales", "orders"))
	require.False(t, rs.IsCompleted("sales", "orders"))
	require.False(t, rs.IsFailed("sales", "orders"))
}
