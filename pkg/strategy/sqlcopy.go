package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/schema"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// sqlCopy moves data with INSERT statements run on the RIGHT cluster. A
// SHADOW table on the RIGHT points at the LEFT data and is read into the
// final table.
type sqlCopy struct{}

func (sqlCopy) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	cfg := ctx.Config
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)

	if right.Exists && cfg.Sync && cfg.CreateIfNotExists {
		right.CreateStrategy = mirror.CreateCreate
		right.AddIssue(mirror.MsgSQLSyncWithCINE)
	} else if !ctx.resolveTarget(tm) {
		return false, nil
	}

	managed := table.IsManaged(left.Definition)

	shadow := schema.NewCopySpec(mirror.LEFT, mirror.SHADOW,
		schema.If(cfg.ConvertManaged, schema.WithUpgrade()),
		schema.WithTableNamePrefix(cfg.Transfer.ShadowPrefix),
	)
	if !ctx.Transformer.Build(tm, shadow) {
		return false, nil
	}

	final := schema.NewCopySpec(mirror.LEFT, mirror.RIGHT,
		schema.WithReplaceLocation(),
		schema.If(managed && cfg.ConvertManaged, schema.WithUpgrade()),
		schema.If(!managed || !cfg.ConvertManaged, schema.WithMakeExternal()),
		schema.WithTakeOwnership(managed && cfg.OwnershipAllowed()),
	)

	return ctx.Transformer.Build(tm, final), nil
}

func (sqlCopy) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	right, shadow := tm.Env(mirror.RIGHT), tm.Env(mirror.SHADOW)
	right.ClearSQL()

	right.AddSQL(DescUse, utils.Use(ctx.TargetDatabase(tm)))
	if len(shadow.Definition) > 0 {
		right.AddSQL(DescDrop, utils.DropTable(shadow.Name))
		right.AddSQL(DescCreateShadow, ctx.createStatement(shadow))
		right.AddCleanUpSQL(DescCleanUpShadow, utils.DropTable(shadow.Name))
	}
	ctx.createSQL(tm, false)

	return ctx.migrationSQL(tm, dataMove{
		original: mirror.LEFT,
		exec:     mirror.RIGHT,
		from:     shadow.Name,
		to:       right.Name,
	}), nil
}

func (s sqlCopy) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(s, tm)
}
