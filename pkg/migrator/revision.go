package migrator

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS hms_mirror_revisions (
	db          TEXT NOT NULL,
	tbl         TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	phase       TEXT NOT NULL,
	run_marker  TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL,
	error       TEXT,
	PRIMARY KEY (db, tbl)
)`

type (
	// Revision is the last recorded outcome for a table.
	Revision struct {
		Database   string
		Table      string
		Strategy   mirror.DataStrategy
		Phase      mirror.PhaseState
		RunMarker  string
		RecordedAt time.Time

		// Error joins the errors of every environment. Nil when the table
		// finished without errors.
		Error *string
	}

	// RevisionSet is the content of a ledger with convenient query methods.
	RevisionSet struct {
		revisions map[string]*Revision
		ordered   []string
	}

	// Ledger persists the outcome of each table across runs in SQLite so a
	// rerun can skip tables that were already migrated.
	//
	//	ledger, err := migrator.OpenLedger("hms-mirror.db")
	//	if err != nil {
	//		return err
	//	}
	//	defer ledger.Close()
	//
	//	revisions, err := ledger.Load(ctx)
	//	if revisions.IsCompleted("sales", "orders") {
	//		// skip
	//	}
	Ledger struct {
		db  *sql.DB
		now func() time.Time
	}
)

// OpenLedger opens (creating when needed) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ledger: %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ledgerSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to create ledger table in %s", path)
	}

	return &Ledger{db: db, now: time.Now}, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores the current phase of tm, replacing any earlier revision of
// the same table.
func (l *Ledger) Record(ctx context.Context, tm *mirror.TableMirror, runMarker string) error {
	var errText sql.NullString
	if msgs := tableErrors(tm); len(msgs) > 0 {
		errText = sql.NullString{String: strings.Join(msgs, "; "), Valid: true}
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO hms_mirror_revisions (db, tbl, strategy, phase, run_marker, recorded_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (db, tbl) DO UPDATE SET
			strategy = excluded.strategy,
			phase = excluded.phase,
			run_marker = excluded.run_marker,
			recorded_at = excluded.recorded_at,
			error = excluded.error`,
		tm.Database,
		tm.Name,
		string(tm.Strategy),
		string(tm.PhaseState()),
		runMarker,
		l.now().UTC(),
		errText,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to record revision for %s.%s", tm.Database, tm.Name)
	}

	return nil
}

// Load reads every revision of the ledger.
func (l *Ledger) Load(ctx context.Context) (*RevisionSet, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT db, tbl, strategy, phase, run_marker, recorded_at, error
		FROM hms_mirror_revisions
		ORDER BY db, tbl`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load revisions")
	}
	defer func() { _ = rows.Close() }()

	var revisions []*Revision
	for rows.Next() {
		revision := &Revision{}
		var strategy, phase string
		var errText sql.NullString

		err := rows.Scan(
			&revision.Database,
			&revision.Table,
			&strategy,
			&phase,
			&revision.RunMarker,
			&revision.RecordedAt,
			&errText,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan revision row")
		}

		revision.Strategy = mirror.DataStrategy(strategy)
		revision.Phase = mirror.PhaseState(phase)
		if errText.Valid {
			revision.Error = utils.Ptr(errText.String)
		}

		revisions = append(revisions, revision)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate revision rows")
	}

	return NewRevisionSet(revisions), nil
}

// NewRevisionSet creates a RevisionSet from revisions. A later revision of
// the same table replaces an earlier one.
func NewRevisionSet(revisions []*Revision) *RevisionSet {
	rs := &RevisionSet{revisions: make(map[string]*Revision, len(revisions))}
	for _, revision := range revisions {
		key := revisionKey(revision.Database, revision.Table)
		if _, ok := rs.revisions[key]; !ok {
			rs.ordered = append(rs.ordered, key)
		}
		rs.revisions[key] = revision
	}

	return rs
}

// IsCompleted returns true when the last run of db.tbl reached PROCESSED
// without errors.
func (rs *RevisionSet) IsCompleted(db, tbl string) bool {
	revision := rs.GetRevision(db, tbl)
	if revision == nil || revision.Error != nil {
		return false
	}

	return revision.Phase == mirror.PhaseProcessed
}

// IsFailed returns true when the last run of db.tbl ended in ERROR.
func (rs *RevisionSet) IsFailed(db, tbl string) bool {
	revision := rs.GetRevision(db, tbl)
	return revision != nil && revision.Phase == mirror.PhaseError
}

// GetRevision returns the revision of db.tbl, or nil.
func (rs *RevisionSet) GetRevision(db, tbl string) *Revision {
	if rs == nil {
		return nil
	}

	return rs.revisions[revisionKey(db, tbl)]
}

// Revisions returns every revision in ledger order.
func (rs *RevisionSet) Revisions() []*Revision {
	out := make([]*Revision, 0, len(rs.ordered))
	for _, key := range rs.ordered {
		out = append(out, rs.revisions[key])
	}

	return out
}

func revisionKey(db, tbl string) string {
	return db + "." + tbl
}

func tableErrors(tm *mirror.TableMirror) []string {
	var msgs []string
	for _, env := range mirror.Environments {
		for _, msg := range tm.Env(env).Errors {
			msgs = append(msgs, string(env)+": "+msg)
		}
	}

	return msgs
}
