package strategy

import (
	"fmt"

	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/schema"
	"github.com/cloudera-labs/hms-mirror/pkg/translator"
	log "github.com/sirupsen/logrus"
)

type (
	// Strategy plans the migration of a single table.
	//
	// BuildOutDefinition derives the definitions of every environment the
	// strategy touches, BuildOutSQL renders the statements for them and
	// Execute runs both. A false result means the table was refused; the
	// reasons are recorded as issues or errors on the record.
	Strategy interface {
		BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error)
		BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error)
		Execute(ctx *Context, tm *mirror.TableMirror) bool
	}

	// Context is shared by the tables of one database. Config is never
	// modified while planning.
	Context struct {
		Config      *config.Config
		Translator  *translator.Translator
		Transformer *schema.Transformer
		DB          *mirror.DBMirror
		Log         *log.Entry
	}
)

var registry = map[mirror.DataStrategy]Strategy{
	mirror.DUMP:                             dump{},
	mirror.SchemaOnly:                       schemaOnly{mode: mirror.SchemaOnly},
	mirror.Linked:                           schemaOnly{mode: mirror.Linked},
	mirror.Common:                           schemaOnly{mode: mirror.Common},
	mirror.ConvertLinked:                    convertLinked{},
	mirror.SQL:                              sqlCopy{},
	mirror.ExportImport:                     exportImport{},
	mirror.Hybrid:                           hybrid{},
	mirror.Intermediate:                     intermediate{},
	mirror.ACID:                             acid{},
	mirror.StorageMigration:                 storageMigration{},
	mirror.SQLACIDDowngradeInPlace:          sqlInPlace{},
	mirror.ExportImportACIDDowngradeInPlace: exportImportInPlace{},
	mirror.HybridACIDDowngradeInPlace:       hybridInPlace{},
}

// NewContext returns the planning context for db.
func NewContext(cfg *config.Config, tr *translator.Translator, db *mirror.DBMirror) *Context {
	return &Context{
		Config:      cfg,
		Translator:  tr,
		Transformer: schema.New(cfg, tr),
		DB:          db,
		Log:         log.WithField("db", db.Name),
	}
}

// For returns the variant implementing ds, or nil when there is none.
func For(ds mirror.DataStrategy) Strategy {
	return registry[ds]
}

// Plan is the per-table boundary. It selects the variant for tm, executes it
// and leaves tm in CALCULATED_SQL, CALCULATED_SQL_WARNING or ERROR. Panics
// raised while planning are recorded as errors and never escape.
func Plan(ctx *Context, tm *mirror.TableMirror) (ok bool) {
	logger := ctx.Log.WithField("table", tm.Name)

	tm.SetPhaseState(mirror.PhaseCalculatingSQL)
	tm.IncPhase()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Table planning failed")
			tm.AddError(mirror.LEFT, mirror.Message(mirror.MsgUnexpected, r))
			ok = false
		}

		switch {
		case !ok || tm.HasErrors():
			tm.SetPhaseState(mirror.PhaseError)
		case tm.HasIssues():
			tm.SetPhaseState(mirror.PhaseCalculatedSQLWarning)
		default:
			tm.SetPhaseState(mirror.PhaseCalculatedSQL)
		}
		tm.IncPhase()

		logger.WithFields(log.Fields{
			"strategy": tm.Strategy,
			"phase":    tm.PhaseState(),
		}).Debug("Table planned")
	}()

	ds, reason := Select(ctx.Config, tm)
	tm.Strategy = ds
	tm.AddStep("strategy", ds)
	if reason != "" {
		tm.AddIssue(mirror.LEFT, reason)
	}

	s := For(ds)
	if s == nil {
		return ctx.fail(tm, mirror.LEFT, mirror.ConfigurationError("no implementation for data strategy %s", ds))
	}

	return s.Execute(ctx, tm)
}

// TargetDatabase returns the database tm is created in on the RIGHT cluster.
func (c *Context) TargetDatabase(tm *mirror.TableMirror) string {
	if c.DB != nil && c.DB.TargetName != "" {
		return c.DB.TargetName
	}

	return c.Config.TargetDatabase(tm.Database)
}

// build runs the definition and SQL phases of s.
func (c *Context) build(s Strategy, tm *mirror.TableMirror) bool {
	ok, err := s.BuildOutDefinition(c, tm)
	if err != nil {
		return c.fail(tm, mirror.LEFT, err)
	}
	if !ok {
		return false
	}

	ok, err = s.BuildOutSQL(c, tm)
	if err != nil {
		return c.fail(tm, mirror.LEFT, err)
	}

	return ok
}

// fail records err against env. Domain errors are issues of the table, any
// other error is unexpected.
func (c *Context) fail(tm *mirror.TableMirror, env mirror.Environment, err error) bool {
	switch {
	case mirror.IsConfigurationError(err), mirror.IsMismatchError(err), mirror.IsSchemaIncompatibilityError(err):
		tm.AddIssue(env, err.Error())
	default:
		tm.AddError(env, fmt.Sprintf("%s: %v", tm.Name, err))
	}

	c.Log.WithFields(log.Fields{
		"table": tm.Name,
		"env":   env,
	}).WithError(err).Debug("Table refused")
	return false
}
