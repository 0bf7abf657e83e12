package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/schema"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// intermediate stages the data in a TRANSFER table written by the LEFT
// cluster. The RIGHT cluster reads it through a SHADOW table, or finds it in
// place when both clusters share storage.
type intermediate struct{}

// acid is the variant recorded for ACID tables. They are always staged.
type acid struct{}

func (intermediate) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	cfg := ctx.Config
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)
	isACID := table.IsACID(left.Definition)
	downgrade := isACID && cfg.MigrateACID.Downgrade

	if isACID && !cfg.MigrateACID.On {
		left.AddIssue(mirror.MsgACIDNotOn)
		return false, nil
	}

	switch {
	case !right.Exists:
		right.CreateStrategy = mirror.CreateCreate
	case !table.IsACID(right.Definition) && cfg.CreateIfNotExists && cfg.Sync:
		right.CreateStrategy = mirror.CreateCreate
		right.AddIssue(mirror.MsgCINEWithExist)
	case table.IsACID(right.Definition) && cfg.Sync:
		right.CreateStrategy = mirror.CreateReplace
		right.AddIssue(mirror.MsgSchemaExistsSyncACID)
	default:
		right.CreateStrategy = mirror.CreateNothing
		right.AddIssue(mirror.MsgSchemaExistsNoActionData)
		return false, nil
	}

	var rightOpts []schema.Option
	switch {
	case !isACID && table.IsManaged(left.Definition):
		rightOpts = append(rightOpts,
			schema.WithUpgrade(),
			schema.WithReplaceLocation(),
			schema.WithTakeOwnership(cfg.OwnershipAllowed()),
		)
	case downgrade:
		if cfg.Transfer.CommonStorage == "" && !cfg.IsDistcp() {
			rightOpts = append(rightOpts, schema.WithStripLocation())
		} else {
			rightOpts = append(rightOpts, schema.WithReplaceLocation())
		}
		rightOpts = append(rightOpts,
			schema.WithMakeExternal(),
			schema.WithMakeNonTransactional(),
			schema.WithTakeOwnership(cfg.OwnershipAllowed()),
		)
	case isACID:
		rightOpts = append(rightOpts, schema.WithStripLocation())
	default:
		rightOpts = append(rightOpts, schema.WithReplaceLocation())
	}

	if !ctx.Transformer.Build(tm, schema.NewCopySpec(mirror.LEFT, mirror.RIGHT, rightOpts...)) {
		return false, nil
	}

	leftLegacy := cfg.Clusters.Left.LegacyHive
	if cfg.LegacyMismatch() && !leftLegacy {
		left.AddIssue(mirror.MsgNonLegacyToLegacy)
		return false, nil
	}

	common := cfg.Transfer.CommonStorage != ""
	transfer := schema.NewCopySpec(mirror.LEFT, mirror.TRANSFER,
		schema.WithTableNamePrefix(cfg.Transfer.TransferPrefix),
		schema.WithReplaceLocation(),
		schema.If(leftLegacy || common, schema.WithMakeNonTransactional()),
		schema.If(!leftLegacy || common, schema.WithMakeExternal()),
		schema.If(!leftLegacy, schema.WithTakeOwnership(cfg.OwnershipAllowed() && !(common && cfg.MigrateACID.Downgrade))),
	)
	if !ctx.Transformer.Build(tm, transfer) {
		return false, nil
	}

	if common || cfg.IsDistcp() || (!isACID && cfg.Transfer.IntermediateStorage == "") {
		return true, nil
	}

	shadow := schema.NewCopySpec(mirror.LEFT, mirror.SHADOW,
		schema.WithTableNamePrefix(cfg.Transfer.ShadowPrefix),
		schema.WithUpgrade(),
		schema.WithMakeExternal(),
		schema.WithReplaceLocation(),
		schema.WithLocation(tm.Env(mirror.TRANSFER).Location()),
	)

	return ctx.Transformer.Build(tm, shadow), nil
}

func (intermediate) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	cfg := ctx.Config
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)
	transfer, shadow := tm.Env(mirror.TRANSFER), tm.Env(mirror.SHADOW)
	right.ClearSQL()

	left.AddSQL(DescUse, utils.Use(tm.Database))
	left.AddSQL(DescDrop, utils.DropTable(transfer.Name))
	left.AddSQL(DescCreateTransfer, ctx.createStatement(transfer))
	if cfg.Clusters.Left.LegacyHive && !cfg.IsDistcp() {
		left.AddSQL(DescSession, utils.SetSession(consts.TezExecutionEngine, "tez"))
	}

	left.AddCleanUpSQL(DescCleanUpPostCheck, "-- "+DescCleanUpPostCheck)
	left.AddCleanUpSQL(DescUse, utils.Use(tm.Database))
	left.AddCleanUpSQL(DescCleanUpTransfer, utils.DropTable(transfer.Name))

	right.AddSQL(DescUse, utils.Use(ctx.TargetDatabase(tm)))
	if len(shadow.Definition) > 0 {
		right.AddSQL(DescDrop, utils.DropTable(shadow.Name))
		right.AddSQL(DescCreateShadow, ctx.createStatement(shadow))
		right.AddCleanUpSQL(DescCleanUpShadow, utils.DropTable(shadow.Name))
	}
	ctx.createSQL(tm, false)

	isACID := table.IsACID(left.Definition)
	partitioned := left.Partitioned()
	if right.CreateStrategy == mirror.CreateCreate && partitioned && cfg.Transfer.CommonStorage != "" &&
		(!isACID || cfg.MigrateACID.Downgrade) {
		right.AddSQL(DescRepair, utils.MSCKRepair(right.Name))
	}

	ok := ctx.migrationSQL(tm, dataMove{
		original: mirror.LEFT,
		exec:     mirror.LEFT,
		from:     left.Name,
		to:       transfer.Name,
		sqlOnly:  true,
	})
	if !ok {
		return false, nil
	}

	switch {
	case cfg.IsDistcp():
		right.AddSQL(DescDistcp, mirror.MsgRunDistcp)
		if partitioned {
			right.AddCleanUpSQL(DescRepair, utils.MSCKRepair(right.Name))
		}
	case len(shadow.Definition) > 0:
		ok = ctx.migrationSQL(tm, dataMove{
			original: mirror.LEFT,
			exec:     mirror.RIGHT,
			from:     shadow.Name,
			to:       right.Name,
		})
	}

	return ok, nil
}

func (i intermediate) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(i, tm)
}

func (acid) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	return intermediate{}.BuildOutDefinition(ctx, tm)
}

func (acid) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	return intermediate{}.BuildOutSQL(ctx, tm)
}

func (a acid) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(a, tm)
}
