package metastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type (
	// DirectProvider overlays the partition locations stored in the
	// metastore's backing database over the tables of another provider.
	DirectProvider struct {
		base    Provider
		db      *sql.DB
		dialect dialect
	}

	dialect interface {
		Name() string
		Open(dsn string) (*sql.DB, error)
		Quote(ident string) string
		Placeholder(n int) string
	}

	mysqlDialect    struct{}
	postgresDialect struct{}
	sqliteDialect   struct{}
)

var dialects = map[string]dialect{
	"mysql":    mysqlDialect{},
	"postgres": postgresDialect{},
	"sqlite":   sqliteDialect{},
}

// OpenDirect connects to the metastore backing database using driver, one of
// mysql, postgres or sqlite.
func OpenDirect(driver, dsn string, base Provider) (*DirectProvider, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, errors.Errorf("unsupported metastore driver %q", driver)
	}

	db, err := d.Open(dsn)
	if err != nil {
		return nil, err
	}

	return &DirectProvider{base: base, db: db, dialect: d}, nil
}

// NewDirectProvider wraps an open connection to the metastore backing
// database.
func NewDirectProvider(db *sql.DB, driver string, base Provider) (*DirectProvider, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, errors.Errorf("unsupported metastore driver %q", driver)
	}

	return &DirectProvider{base: base, db: db, dialect: d}, nil
}

// Close closes the backing database connection.
func (p *DirectProvider) Close() error {
	return p.db.Close()
}

func (p *DirectProvider) Databases(ctx context.Context) ([]*Database, error) {
	return p.base.Databases(ctx)
}

// Tables returns the tables of the base provider with their partitions
// replaced by the ones recorded in the backing database. Tables the backing
// database has no partitions for are returned unchanged.
func (p *DirectProvider) Tables(ctx context.Context, db string) ([]*Table, error) {
	tables, err := p.base.Tables(ctx, db)
	if err != nil {
		return nil, err
	}

	partitions, err := p.Partitions(ctx, db)
	if err != nil {
		return nil, err
	}

	out := make([]*Table, 0, len(tables))
	for _, tbl := range tables {
		parts, ok := partitions[tbl.Name]
		if !ok {
			out = append(out, tbl)
			continue
		}

		overlay := *tbl
		overlay.Partitions = parts
		out = append(out, &overlay)
	}

	return out, nil
}

// Partitions returns the partition locations of every table in db keyed by
// table name and partition spec.
func (p *DirectProvider) Partitions(ctx context.Context, db string) (map[string]map[string]string, error) {
	rows, err := p.db.QueryContext(ctx, p.partitionQuery(), db)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s metastore partitions for %s", p.dialect.Name(), db)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]map[string]string)
	var count int
	for rows.Next() {
		var tbl, spec string
		var location sql.NullString
		if err := rows.Scan(&tbl, &spec, &location); err != nil {
			return nil, errors.Wrap(err, "failed to scan partition row")
		}

		parts, ok := out[tbl]
		if !ok {
			parts = make(map[string]string)
			out[tbl] = parts
		}
		parts[spec] = location.String
		count++
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate partition rows")
	}

	log.WithFields(log.Fields{
		"db":         db,
		"driver":     p.dialect.Name(),
		"tables":     len(out),
		"partitions": count,
	}).Debug("Loaded partition locations from metastore")

	return out, nil
}

func (p *DirectProvider) partitionQuery() string {
	q := p.dialect.Quote
	return fmt.Sprintf(`SELECT t.%s, pt.%s, s.%s
FROM %s d
JOIN %s t ON t.%s = d.%s
JOIN %s pt ON pt.%s = t.%s
JOIN %s s ON s.%s = pt.%s
WHERE d.%s = %s
ORDER BY t.%s, pt.%s`,
		q("TBL_NAME"), q("PART_NAME"), q("LOCATION"),
		q("DBS"),
		q("TBLS"), q("DB_ID"), q("DB_ID"),
		q("PARTITIONS"), q("TBL_ID"), q("TBL_ID"),
		q("SDS"), q("SD_ID"), q("SD_ID"),
		q("NAME"), p.dialect.Placeholder(1),
		q("TBL_NAME"), q("PART_NAME"),
	)
}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Open(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mysql dsn")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mysql metastore")
	}
	return db, nil
}

func (mysqlDialect) Quote(ident string) string { return ident }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres metastore")
	}
	return db, nil
}

// Quote keeps the upper-case names the metastore schema creates on Postgres.
func (postgresDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite metastore")
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (sqliteDialect) Quote(ident string) string { return ident }

func (sqliteDialect) Placeholder(int) string { return "?" }
