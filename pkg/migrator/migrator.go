package migrator

import (
	"context"
	"maps"
	"regexp"
	"sync/atomic"

	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/executor"
	"github.com/cloudera-labs/hms-mirror/pkg/metastore"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/strategy"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/translator"
	"github.com/cloudera-labs/hms-mirror/pkg/warehouse"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Reasons recorded for tables that are not planned.
const (
	FilteredTableRegex   = "Table name doesn't match table_regex"
	FilteredExcludeRegex = "Table name matches table_exclude_regex"
	FilteredACIDOnly     = "Non-ACID table and ACID only specified"
	FilteredACIDOff      = "ACID table and ACID processing not selected (migrate_acid.on)"
)

type (
	// Replayer executes the SQL planned for a table.
	Replayer interface {
		Replay(ctx context.Context, tm *mirror.TableMirror) []*executor.ExecutionResult
	}

	// Config contains the collaborators of a Migrator. Ledger and Executor
	// are optional.
	Config struct {
		Settings *config.Config
		Provider metastore.Provider
		Ledger   *Ledger
		Executor Replayer
	}

	// Migrator runs the planning of every table of a set of databases.
	//
	// A run loads the tables from the provider, feeds every table and
	// partition location into the warehouse plan builder, rebuilds the
	// global location map once and then plans the tables on a bounded pool
	// of workers. Tables never fail the run; their outcome is recorded on
	// the returned records.
	Migrator struct {
		cfg        *config.Config
		provider   metastore.Provider
		ledger     *Ledger
		executor   Replayer
		plans      *warehouse.Builder
		translator *translator.Translator

		cancelled atomic.Bool
	}

	filter struct {
		include *regexp.Regexp
		exclude *regexp.Regexp
	}
)

// New creates a Migrator with an empty warehouse plan builder.
func New(c Config) *Migrator {
	plans := warehouse.NewBuilder()

	return &Migrator{
		cfg:        c.Settings,
		provider:   c.Provider,
		ledger:     c.Ledger,
		executor:   c.Executor,
		plans:      plans,
		translator: translator.New(c.Settings, plans),
	}
}

// Translator returns the location translator used by the run.
func (m *Migrator) Translator() *translator.Translator {
	return m.translator
}

// Warehouses returns the warehouse plan builder used by the run.
func (m *Migrator) Warehouses() *warehouse.Builder {
	return m.plans
}

// Cancel stops the run before the next table is planned. Tables that were
// not started keep their phase.
func (m *Migrator) Cancel() {
	m.cancelled.Store(true)
}

// Run plans every table of dbs. When dbs is empty the configured databases
// are used, and when none are configured every database of the provider.
//
// The returned error is reserved for failures that affect the whole run:
// unreadable metadata, an invalid filter or an unreadable warehouse env
// file. A cancelled context returns the records planned so far together
// with the context's error.
func (m *Migrator) Run(ctx context.Context, dbs ...string) ([]*mirror.DBMirror, error) {
	f, err := newFilter(m.cfg.Filter)
	if err != nil {
		return nil, err
	}

	sources, err := m.provider.Databases(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list databases")
	}

	names := m.databaseNames(dbs, sources)
	planErrs, err := m.loadWarehouses()
	if err != nil {
		return nil, err
	}

	mirrors := make([]*mirror.DBMirror, 0, len(names))
	for _, name := range names {
		dbm, err := m.loadDatabase(ctx, name, sources, f)
		if err != nil {
			return nil, err
		}
		mirrors = append(mirrors, dbm)
	}

	m.inferWarehouses(names)

	// Every location is known from here on; the map is read-only while
	// tables are planned.
	m.translator.Rebuild()

	revisions := NewRevisionSet(nil)
	if m.ledger != nil {
		if revisions, err = m.ledger.Load(ctx); err != nil {
			return nil, err
		}
	}

	var g errgroup.Group
	g.SetLimit(max(m.cfg.Workers, 1))

	for _, dbm := range mirrors {
		sctx := strategy.NewContext(m.cfg, m.translator, dbm)

		for _, tm := range dbm.Tables() {
			logger := log.WithFields(log.Fields{"db": tm.Database, "table": tm.Name})

			if revisions.IsCompleted(tm.Database, tm.Name) {
				tm.SetPhaseState(mirror.PhaseRetrySkippedPastSuccess)
				tm.AddStep("ledger", "processed in a previous run")
				logger.Info("Skipping table processed in a previous run")
				continue
			}

			if planErr, ok := planErrs[tm.Database]; ok {
				tm.AddError(mirror.LEFT, planErr.Error())
				tm.SetPhaseState(mirror.PhaseError)
				m.record(ctx, tm)
				continue
			}

			g.Go(func() error {
				m.planTable(ctx, sctx, tm)
				return nil
			})
		}
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return mirrors, errors.Wrap(err, "run interrupted")
	}
	if m.cancelled.Load() {
		log.Warn("Run cancelled; tables that were not started keep their phase")
	}

	return mirrors, nil
}

func (m *Migrator) planTable(ctx context.Context, sctx *strategy.Context, tm *mirror.TableMirror) {
	if ctx.Err() != nil || m.cancelled.Load() {
		return
	}

	strategy.Plan(sctx, tm)

	if m.executor != nil && !tm.HasErrors() {
		switch tm.PhaseState() {
		case mirror.PhaseCalculatedSQL, mirror.PhaseCalculatedSQLWarning:
			m.executor.Replay(ctx, tm)
		}
	}

	m.record(ctx, tm)
}

func (m *Migrator) record(ctx context.Context, tm *mirror.TableMirror) {
	if m.ledger == nil {
		return
	}

	if err := m.ledger.Record(ctx, tm, m.cfg.RunMarker); err != nil {
		log.WithFields(log.Fields{
			"db":    tm.Database,
			"table": tm.Name,
		}).WithError(err).Warn("Failed to record table outcome")
	}
}

func (m *Migrator) databaseNames(requested []string, sources []*metastore.Database) []string {
	switch {
	case len(requested) > 0:
		return requested
	case len(m.cfg.Databases) > 0:
		return m.cfg.Databases
	}

	names := make([]string, 0, len(sources))
	for _, db := range sources {
		names = append(names, db.Name)
	}
	return names
}

// loadWarehouses feeds the ENVIRONMENT, GLOBAL and declared warehouse plans
// into the builder. Invalid declared plans are returned by database so only
// the tables of that database fail.
func (m *Migrator) loadWarehouses() (map[string]error, error) {
	env, err := m.cfg.LoadWarehouseEnv()
	if err != nil {
		return nil, err
	}
	if env.ExternalDirectory != "" || env.ManagedDirectory != "" {
		m.plans.SetEnvironment(env.ExternalDirectory, env.ManagedDirectory)
	}

	if global := m.cfg.Transfer.Warehouse; global.ExternalDirectory != "" || global.ManagedDirectory != "" {
		m.plans.SetGlobal(global.ExternalDirectory, global.ManagedDirectory)
	}

	planErrs := make(map[string]error)
	for db, wh := range m.cfg.Translator.WarehousePlans {
		if err := m.plans.AddWarehousePlan(db, wh.ExternalDirectory, wh.ManagedDirectory); err != nil {
			log.WithField("db", db).WithError(err).Error("Invalid warehouse plan")
			planErrs[db] = err
		}
	}

	return planErrs, nil
}

// inferWarehouses adopts a plan inferred from the source locations for
// databases nothing else resolves.
func (m *Migrator) inferWarehouses(names []string) {
	for _, db := range names {
		if _, err := m.plans.Resolve(db); err == nil {
			continue
		}

		if wh, ok := m.plans.Infer(db); ok {
			log.WithFields(log.Fields{
				"db":       db,
				"external": wh.ExternalDirectory,
				"managed":  wh.ManagedDirectory,
			}).Info("Using warehouse plan inferred from table locations")
			m.plans.Adopt(db, wh)
		}
	}
}

func (m *Migrator) loadDatabase(
	ctx context.Context,
	name string,
	sources []*metastore.Database,
	f filter,
) (*mirror.DBMirror, error) {
	dbm := mirror.NewDBMirror(name)
	dbm.TargetName = m.cfg.TargetDatabase(name)

	for _, src := range sources {
		if src.Name != name {
			continue
		}
		if src.Location != "" {
			dbm.SetProperty(mirror.LEFT, mirror.DBLocation, src.Location)
		}
		if src.ManagedLocation != "" {
			dbm.SetProperty(mirror.LEFT, mirror.DBManagedLocation, src.ManagedLocation)
		}
	}

	tables, err := m.provider.Tables(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tables of %s", name)
	}

	for _, tbl := range tables {
		if reason := m.filterReason(tbl, f); reason != "" {
			log.WithFields(log.Fields{
				"db":     name,
				"table":  tbl.Name,
				"reason": reason,
			}).Debug("Table filtered out")
			dbm.FilterOut(tbl.Name, reason)
			continue
		}

		tm := dbm.AddTable(tbl.Name)
		load(tm.Env(mirror.LEFT), tbl)
		if tbl.Target != nil {
			load(tm.Env(mirror.RIGHT), tbl.Target)
		}

		m.addSourceLocations(tm)
	}

	log.WithFields(log.Fields{
		"db":       name,
		"tables":   len(dbm.Tables()),
		"filtered": len(dbm.FilteredOut()),
	}).Info("Loaded database")

	return dbm, nil
}

func (m *Migrator) filterReason(tbl *metastore.Table, f filter) string {
	switch {
	case f.include != nil && !f.include.MatchString(tbl.Name):
		return FilteredTableRegex
	case f.exclude != nil && f.exclude.MatchString(tbl.Name):
		return FilteredExcludeRegex
	}

	acid := table.IsACID(tbl.Definition)
	switch {
	case m.cfg.MigrateACID.Only && !acid:
		return FilteredACIDOnly
	case acid && !m.cfg.MigrateACID.On && m.cfg.DataStrategy != mirror.DUMP:
		return FilteredACIDOff
	}

	return ""
}

// addSourceLocations records the table and partition locations of tm in the
// warehouse plan builder.
func (m *Migrator) addSourceLocations(tm *mirror.TableMirror) {
	left := tm.Env(mirror.LEFT)
	if table.IsView(left.Definition) {
		return
	}

	location := left.Location()
	if location == "" {
		return
	}

	tableType := mirror.ManagedTable
	if table.IsExternal(left.Definition) {
		tableType = mirror.ExternalTable
	}

	loc := warehouse.SourceLocation{
		Database:               tm.Database,
		Table:                  tm.Name,
		TableType:              tableType,
		TableLocation:          location,
		Level:                  m.cfg.Translator.ConsolidationLevelBase,
		PartitionLevelMismatch: m.cfg.Translator.PartitionLevelMismatch,
	}
	m.plans.AddSourceLocation(loc)

	for _, spec := range left.PartitionSpecs() {
		loc.PartitionSpec = spec
		loc.PartitionLocation = left.Partitions[spec]
		m.plans.AddSourceLocation(loc)
	}
}

func load(et *mirror.EnvironmentTable, tbl *metastore.Table) {
	et.Name = tbl.Name
	et.Exists = true
	et.Owner = tbl.Owner
	et.Definition = table.Clone(tbl.Definition)
	maps.Copy(et.Partitions, tbl.Partitions)
}

func newFilter(cfg config.Filter) (filter, error) {
	var (
		f   filter
		err error
	)

	if cfg.TableRegex != "" {
		if f.include, err = regexp.Compile(cfg.TableRegex); err != nil {
			return filter{}, errors.Wrap(err, "invalid table_regex")
		}
	}
	if cfg.TableExcludeRegex != "" {
		if f.exclude, err = regexp.Compile(cfg.TableExcludeRegex); err != nil {
			return filter{}, errors.Wrap(err, "invalid table_exclude_regex")
		}
	}

	return f, nil
}
