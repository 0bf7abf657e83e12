package executor

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type (
	// Conn is the narrow connection the executor sends statements through.
	// *sql.DB and *sql.Conn satisfy it.
	Conn interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	}

	// Executor replays the SQL planned for a table against the clusters.
	//
	// Statements run in planning order, one at a time, and execution of an
	// environment stops at the first failure. Environments without a
	// connection are not replayed.
	//
	//	exec := executor.New(executor.Config{
	//		Connections: map[mirror.Environment]executor.Conn{
	//			mirror.LEFT:  leftDB,
	//			mirror.RIGHT: rightDB,
	//		},
	//	})
	//
	//	for _, result := range exec.Replay(ctx, tm) {
	//		fmt.Printf("%s: %s (%d/%d)\n", result.Environment, result.Status, result.StatementsApplied, result.TotalStatements)
	//	}
	Executor struct {
		conns map[mirror.Environment]Conn
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// Connections by environment. TRANSFER statements run on the LEFT
		// cluster and SHADOW statements on the RIGHT, so only LEFT and RIGHT
		// are consulted.
		Connections map[mirror.Environment]Conn
	}

	// ExecutionResult contains the result of replaying one environment of a
	// table.
	ExecutionResult struct {
		Database    string
		Table       string
		Environment mirror.Environment

		// Status indicates the outcome of the replay
		Status ExecutionStatus

		// Error contains the failure that stopped the replay
		Error error

		// ExecutionTime records how long the replay took
		ExecutionTime time.Duration

		// StatementsApplied counts the statements executed or skipped as
		// comments before completion or failure
		StatementsApplied int

		// TotalStatements is the number of planned statements
		TotalStatements int

		// Hash is the h1 hash of the planned statements
		Hash string
	}

	// ExecutionStatus represents the outcome of a replay.
	ExecutionStatus string
)

const (
	// StatusSuccess indicates every statement was executed
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates a statement failed
	StatusFailed ExecutionStatus = "failed"

	// StatusSkipped indicates nothing was executed
	StatusSkipped ExecutionStatus = "skipped"
)

// replayOrder is the order environments are replayed in. LEFT prepares the
// transfer tables the RIGHT statements read from.
var replayOrder = []mirror.Environment{mirror.LEFT, mirror.RIGHT}

// New creates a new executor with the provided configuration.
func New(config Config) *Executor {
	conns := make(map[mirror.Environment]Conn, len(config.Connections))
	for env, conn := range config.Connections {
		if conn != nil {
			conns[env] = conn
		}
	}

	return &Executor{conns: conns}
}

// Execute replays the SQL of one environment of tm.
//
// Tables with errors are skipped and keep their phase. Otherwise the table
// moves to APPLYING_SQL and then to PROCESSED, or to ERROR when a statement
// fails; the failure is also recorded as an error of env.
func (e *Executor) Execute(ctx context.Context, tm *mirror.TableMirror, env mirror.Environment) *ExecutionResult {
	if tm.HasErrors() || e.conns[env] == nil {
		return e.skipped(tm, env)
	}

	tm.SetPhaseState(mirror.PhaseApplyingSQL)
	result := e.run(ctx, tm, env)
	settle(tm, result.Status == StatusFailed)
	return result
}

// Replay replays LEFT and then RIGHT, stopping after the first failed
// environment. Tables with errors, and tables with nothing to replay, are
// left in their phase and yield no results.
func (e *Executor) Replay(ctx context.Context, tm *mirror.TableMirror) []*ExecutionResult {
	if tm.HasErrors() {
		return nil
	}

	var envs []mirror.Environment
	for _, env := range replayOrder {
		if e.conns[env] != nil && len(tm.Env(env).SQL) > 0 {
			envs = append(envs, env)
		}
	}
	if len(envs) == 0 {
		return nil
	}

	tm.SetPhaseState(mirror.PhaseApplyingSQL)

	results := make([]*ExecutionResult, 0, len(envs))
	failed := false
	for _, env := range envs {
		result := e.run(ctx, tm, env)
		results = append(results, result)

		if result.Status == StatusFailed {
			failed = true
			break
		}
	}

	settle(tm, failed)
	return results
}

func (e *Executor) run(ctx context.Context, tm *mirror.TableMirror, env mirror.Environment) *ExecutionResult {
	start := time.Now()
	et := tm.Env(env)
	conn := e.conns[env]

	result := &ExecutionResult{
		Database:        tm.Database,
		Table:           tm.Name,
		Environment:     env,
		Status:          StatusSuccess,
		TotalStatements: len(et.SQL),
		Hash:            ComputeHash(et.SQL),
	}

	logger := log.WithFields(log.Fields{
		"db":    tm.Database,
		"table": tm.Name,
		"env":   env,
	})

	for i, pair := range et.SQL {
		if err := ctx.Err(); err != nil {
			result.Error = errors.Wrap(err, "replay interrupted")
			break
		}

		if IsComment(pair.Action) {
			result.StatementsApplied++
			tm.IncPhase()
			continue
		}

		logger.WithField("statement", i+1).Debug(pair.Description)
		if _, err := conn.ExecContext(ctx, pair.Action); err != nil {
			result.Error = errors.Wrapf(err, "failed to execute statement %d (%s)", i+1, pair.Description)
			break
		}

		result.StatementsApplied++
		tm.IncPhase()
	}

	result.ExecutionTime = time.Since(start)
	if result.Error != nil {
		result.Status = StatusFailed
		et.AddError(result.Error.Error())
		logger.WithError(result.Error).Error("SQL replay failed")
		return result
	}

	logger.WithFields(log.Fields{
		"applied":  result.StatementsApplied,
		"duration": result.ExecutionTime,
	}).Info("SQL replayed")
	return result
}

func (e *Executor) skipped(tm *mirror.TableMirror, env mirror.Environment) *ExecutionResult {
	return &ExecutionResult{
		Database:        tm.Database,
		Table:           tm.Name,
		Environment:     env,
		Status:          StatusSkipped,
		TotalStatements: len(tm.Env(env).SQL),
	}
}

func settle(tm *mirror.TableMirror, failed bool) {
	if failed {
		tm.SetPhaseState(mirror.PhaseError)
		return
	}

	tm.SetPhaseState(mirror.PhaseProcessed)
}

// IsComment reports whether every non-blank line of stmt is a "--" comment.
func IsComment(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}

	return true
}

// ComputeHash returns the h1 hash of the given statements.
func ComputeHash(pairs []mirror.Pair) string {
	var content strings.Builder
	for _, pair := range pairs {
		content.WriteString(pair.Action)
		content.WriteString("\n")
	}

	hash := sha256.Sum256([]byte(content.String()))
	return fmt.Sprintf("h1:%s", base64.StdEncoding.EncodeToString(hash[:]))
}
