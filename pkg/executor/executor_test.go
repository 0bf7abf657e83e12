package executor_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/cloudera-labs/hms-mirror/pkg/executor"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type mockConn struct {
	execFunc func(string) error
	execs    []string
}

func (m *mockConn) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	m.execs = append(m.execs, query)
	if m.execFunc != nil {
		if err := m.execFunc(query); err != nil {
			return nil, err
		}
	}
	return driverResult{}, nil
}

type driverResult struct{}

func (driverResult) LastInsertId() (int64, error) { return 0, nil }
func (driverResult) RowsAffected() (int64, error) { return 0, nil }

func plannedTable() *mirror.TableMirror {
	tm := mirror.NewTableMirror("sales", "orders")
	tm.SetPhaseState(mirror.PhaseCalculatedSQL)

	left := tm.Env(mirror.LEFT)
	left.AddSQL("Selecting DB", "USE `sales`")
	left.AddSQL("Creating transfer table", "CREATE TABLE `hms_mirror_transfer_orders` LIKE `orders`")

	right := tm.Env(mirror.RIGHT)
	right.AddSQL("Selecting DB", "USE `sales`")
	right.AddSQL("Distcp", "-- Run distcp commands")
	right.AddSQL("Creating table", "CREATE EXTERNAL TABLE `orders`(`id` bigint)")
	return tm
}

func TestExecute(t *testing.T) {
	conn := &mockConn{}
	exec := New(Config{Connections: map[mirror.Environment]Conn{mirror.RIGHT: conn}})

	tm := plannedTable()
	result := exec.Execute(context.Background(), tm, mirror.RIGHT)

	require.Equal(t, StatusSuccess, result.Status)
	require.NoError(t, result.Error)
	require.Equal(t, 3, result.StatementsApplied)
	require.Equal(t, 3, result.TotalStatements)
	require.True(t, strings.HasPrefix(result.Hash, "h1:"))
	require.Equal(t, []string{"USE `sales`", "CREATE EXTERNAL TABLE `orders`(`id` bigint)"}, conn.execs)
	require.Equal(t, mirror.PhaseProcessed, tm.PhaseState())

	current, total := tm.Phases()
	require.Equal(t, 3, current)
	require.Equal(t, 5, total)
}

func TestExecuteFailure(t *testing.T) {
	conn := &mockConn{execFunc: func(q string) error {
		if strings.HasPrefix(q, "CREATE") {
			return errors.New("table already exists")
		}
		return nil
	}}
	exec := New(Config{Connections: map[mirror.Environment]Conn{mirror.RIGHT: conn}})

	tm := plannedTable()
	result := exec.Execute(context.Background(), tm, mirror.RIGHT)

	require.Equal(t, StatusFailed, result.Status)
	require.ErrorContains(t, result.Error, "failed to execute statement 3 (Creating table): table already exists")
	require.Equal(t, 2, result.StatementsApplied)
	require.Equal(t, mirror.PhaseError, tm.PhaseState())
	require.Len(t, tm.Env(mirror.RIGHT).Errors, 1)
}

func TestExecuteSkipped(t *testing.T) {
	conn := &mockConn{}
	exec := New(Config{Connections: map[mirror.Environment]Conn{mirror.RIGHT: conn}})

	t.Run("table with errors", func(t *testing.T) {
		tm := plannedTable()
		tm.AddError(mirror.LEFT, "boom")

		result := exec.Execute(context.Background(), tm, mirror.RIGHT)
		require.Equal(t, StatusSkipped, result.Status)
		require.Empty(t, conn.execs)
		require.Equal(t, mirror.PhaseCalculatedSQL, tm.PhaseState())
	})

	t.Run("no connection", func(t *testing.T) {
		tm := plannedTable()

		result := exec.Execute(context.Background(), tm, mirror.LEFT)
		require.Equal(t, StatusSkipped, result.Status)
		require.Equal(t, 2, result.TotalStatements)
		require.Equal(t, mirror.PhaseCalculatedSQL, tm.PhaseState())
	})
}

func TestExecuteCancelled(t *testing.T) {
	conn := &mockConn{}
	exec := New(Config{Connections: map[mirror.Environment]Conn{mirror.RIGHT: conn}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tm := plannedTable()
	result := exec.Execute(ctx, tm, mirror.RIGHT)
	require.Equal(t, StatusFailed, result.Status)
	require.ErrorIs(t, result.Error, context.Canceled)
	require.Empty(t, conn.execs)
	require.Equal(t, mirror.PhaseError, tm.PhaseState())
}

func TestReplay(t *testing.T) {
	t.Run("left then right", func(t *testing.T) {
		var order []string
		left := &mockConn{execFunc: func(q string) error { order = append(order, "LEFT "+q); return nil }}
		right := &mockConn{execFunc: func(q string) error { order = append(order, "RIGHT "+q); return nil }}
		exec := New(Config{Connections: map[mirror.Environment]Conn{
			mirror.LEFT:  left,
			mirror.RIGHT: right,
		}})

		tm := plannedTable()
		results := exec.Replay(context.Background(), tm)
		require.Len(t, results, 2)
		assert.Equal(t, mirror.LEFT, results[0].Environment)
		assert.Equal(t, mirror.RIGHT, results[1].Environment)
		require.Equal(t, []string{
			"LEFT USE `sales`",
			"LEFT CREATE TABLE `hms_mirror_transfer_orders` LIKE `orders`",
			"RIGHT USE `sales`",
			"RIGHT CREATE EXTERNAL TABLE `orders`(`id` bigint)",
		}, order)
		require.Equal(t, mirror.PhaseProcessed, tm.PhaseState())
	})

	t.Run("stops after failed environment", func(t *testing.T) {
		left := &mockConn{execFunc: func(string) error { return errors.New("permission denied") }}
		right := &mockConn{}
		exec := New(Config{Connections: map[mirror.Environment]Conn{
			mirror.LEFT:  left,
			mirror.RIGHT: right,
		}})

		tm := plannedTable()
		results := exec.Replay(context.Background(), tm)
		require.Len(t, results, 1)
		require.Equal(t, StatusFailed, results[0].Status)
		require.Empty(t, right.execs)
		require.Equal(t, mirror.PhaseError, tm.PhaseState())
		require.True(t, tm.HasErrors())
	})

	t.Run("nothing to replay", func(t *testing.T) {
		exec := New(Config{Connections: map[mirror.Environment]Conn{mirror.RIGHT: nil}})

		tm := plannedTable()
		require.Empty(t, exec.Replay(context.Background(), tm))
		require.Equal(t, mirror.PhaseCalculatedSQL, tm.PhaseState())
	})
}

func TestReplaySQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "right.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	tm := mirror.NewTableMirror("sales", "orders")
	right := tm.Env(mirror.RIGHT)
	right.AddSQL("Creating table", "CREATE TABLE orders (id INTEGER)")
	right.AddSQL("Distcp", "-- Run distcp commands\n-- hadoop distcp ...")
	right.AddSQL("Loading", "INSERT INTO orders VALUES (1), (2)")

	exec := New(Config{Connections: map[mirror.Environment]Conn{mirror.RIGHT: db}})
	results := exec.Replay(context.Background(), tm)
	require.Len(t, results, 1)
	require.Equal(t, StatusSuccess, results[0].Status)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count))
	require.Equal(t, 2, count)
}

func TestIsComment(t *testing.T) {
	tests := []struct {
		stmt string
		want bool
	}{
		{stmt: "-- Run distcp commands", want: true},
		{stmt: "  -- a\n\n-- b", want: true},
		{stmt: "", want: true},
		{stmt: "-- a\nMSCK REPAIR TABLE `orders`", want: false},
		{stmt: "USE `sales`", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.stmt, func(t *testing.T) {
			require.Equal(t, tt.want, IsComment(tt.stmt))
		})
	}
}
