package mirror

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cloudera-labs/hms-mirror/pkg/table"
)

type (
	// Step is one entry of the record's planning log.
	Step struct {
		Key   string `yaml:"key"`
		Value string `yaml:"value"`
	}

	// TableMirror tracks the migration of one source table through a run.
	//
	// Environments are created eagerly so Env never returns nil. A record is
	// only mutated by the goroutine planning it; the phase counters are atomic
	// so progress can be read from elsewhere.
	TableMirror struct {
		Database string
		Name     string
		Strategy DataStrategy
		ReMapped bool
		Steps    []Step

		currentPhase atomic.Int32
		totalPhases  atomic.Int32

		mu    sync.RWMutex
		phase PhaseState

		environments map[Environment]*EnvironmentTable
	}
)

// NewTableMirror creates a record for db.name in the INIT phase.
func NewTableMirror(db, name string) *TableMirror {
	tm := &TableMirror{
		Database:     db,
		Name:         name,
		phase:        PhaseInit,
		environments: make(map[Environment]*EnvironmentTable, len(Environments)),
	}

	for _, env := range Environments {
		tm.environments[env] = newEnvironmentTable(tm)
	}

	return tm
}

// Env returns the table for env.
func (tm *TableMirror) Env(env Environment) *EnvironmentTable {
	return tm.environments[env]
}

// AddIssue records an issue against env.
func (tm *TableMirror) AddIssue(env Environment, msg string) {
	tm.Env(env).AddIssue(msg)
}

// AddError records an error against env.
func (tm *TableMirror) AddError(env Environment, msg string) {
	tm.Env(env).AddError(msg)
}

// AddStep appends to the planning log.
func (tm *TableMirror) AddStep(key string, value any) {
	tm.Steps = append(tm.Steps, Step{Key: key, Value: fmt.Sprint(value)})
}

// IncPhase advances the current phase, growing the total when needed so
// progress never exceeds 100%.
func (tm *TableMirror) IncPhase() {
	current := tm.currentPhase.Add(1)
	for {
		total := tm.totalPhases.Load()
		if current < total || tm.totalPhases.CompareAndSwap(total, current+1) {
			return
		}
	}
}

// IncTotalPhases grows the expected number of phases.
func (tm *TableMirror) IncTotalPhases() {
	tm.totalPhases.Add(1)
}

// DecTotalPhases shrinks the expected number of phases by n. The total never
// drops below the current phase.
func (tm *TableMirror) DecTotalPhases(n int) {
	for {
		total := tm.totalPhases.Load()
		next := max(total-int32(n), tm.currentPhase.Load())
		if tm.totalPhases.CompareAndSwap(total, next) {
			return
		}
	}
}

// Phases returns the current and total phase counters.
func (tm *TableMirror) Phases() (int, int) {
	return int(tm.currentPhase.Load()), int(tm.totalPhases.Load())
}

// Progress returns the completed percentage.
func (tm *TableMirror) Progress() int {
	current, total := tm.Phases()
	if total == 0 {
		return 0
	}

	return current * 100 / total
}

// PhaseState returns the current lifecycle state.
func (tm *TableMirror) PhaseState() PhaseState {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.phase
}

// SetPhaseState moves the record to state. Backward transitions, and any
// transition out of ERROR, are ignored and return false.
func (tm *TableMirror) SetPhaseState(state PhaseState) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.phase == state {
		return true
	}
	if tm.phase == PhaseError || state.Rank() <= tm.phase.Rank() {
		return false
	}

	tm.phase = state
	return true
}

// SchemasEqual compares the structural fingerprints of two environments.
func (tm *TableMirror) SchemasEqual(a, b Environment) bool {
	left, right := tm.Env(a).Definition, tm.Env(b).Definition
	if len(left) == 0 || len(right) == 0 {
		return false
	}

	return table.Fingerprint(left) == table.Fingerprint(right)
}

// HasErrors reports whether any environment recorded an error.
func (tm *TableMirror) HasErrors() bool {
	for _, env := range tm.environments {
		if len(env.Errors) > 0 {
			return true
		}
	}

	return false
}

// HasIssues reports whether any environment recorded an issue.
func (tm *TableMirror) HasIssues() bool {
	for _, env := range tm.environments {
		if len(env.Issues) > 0 {
			return true
		}
	}

	return false
}

// IsPartitioned reports whether env is partitioned.
func (tm *TableMirror) IsPartitioned(env Environment) bool {
	return tm.Env(env).Partitioned()
}

// MarshalYAML renders the record for the plan file.
func (tm *TableMirror) MarshalYAML() (any, error) {
	envs := make(map[Environment]*EnvironmentTable)
	for _, env := range Environments {
		et := tm.Env(env)
		if et.Name != "" || len(et.SQL) > 0 || len(et.Issues) > 0 || len(et.Errors) > 0 {
			envs[env] = et
		}
	}

	current, total := tm.Phases()
	return struct {
		Name         string                            `yaml:"name"`
		Strategy     DataStrategy                      `yaml:"strategy,omitempty"`
		PhaseState   PhaseState                        `yaml:"phaseState"`
		Progress     string                            `yaml:"progress"`
		ReMapped     bool                              `yaml:"reMapped,omitempty"`
		Steps        []Step                            `yaml:"steps,omitempty"`
		Environments map[Environment]*EnvironmentTable `yaml:"environments"`
	}{
		Name:         tm.Name,
		Strategy:     tm.Strategy,
		PhaseState:   tm.PhaseState(),
		Progress:     fmt.Sprintf("%d/%d", current, total),
		ReMapped:     tm.ReMapped,
		Steps:        tm.Steps,
		Environments: envs,
	}, nil
}
