package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/schema"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// exportImport EXPORTs the LEFT table and IMPORTs it on the RIGHT cluster.
type exportImport struct{}

func (exportImport) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	cfg := ctx.Config
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)

	switch {
	case right.Exists && !cfg.Sync:
		left.AddIssue(mirror.MsgSchemaExistsNoActionData)
		return false, nil
	case !table.IsHiveNative(left.Definition):
		left.AddIssue(mirror.MsgNotHiveNative)
		return false, nil
	}

	if !ctx.withinExportLimit(tm) {
		return false, nil
	}

	if right.Exists {
		right.CreateStrategy = mirror.CreateReplace
		right.AddIssue(mirror.MsgExportImportSync)
	} else {
		right.CreateStrategy = mirror.CreateCreate
	}

	spec := schema.NewCopySpec(mirror.LEFT, mirror.RIGHT,
		schema.WithReplaceLocation(),
		schema.If(cfg.ConvertManaged, schema.WithUpgrade()),
		schema.WithTakeOwnership(table.IsManaged(left.Definition) && cfg.OwnershipAllowed()),
	)

	return ctx.Transformer.Build(tm, spec), nil
}

func (exportImport) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)
	location := ctx.exportLocation(tm)

	left.AddSQL(DescUse, utils.Use(tm.Database))
	left.AddSQL(DescExport, utils.ExportTable(left.Name, location))

	right.AddSQL(DescUse, utils.Use(ctx.TargetDatabase(tm)))
	if right.CreateStrategy == mirror.CreateReplace {
		right.AddSQL(DescDrop, utils.DropTable(right.Name))
	}

	if table.IsACID(left.Definition) && !ctx.Config.MigrateACID.Downgrade {
		right.AddSQL(DescImport, utils.ImportTable(right.Name, location))
	} else {
		right.AddSQL(DescImport, utils.ImportExternalTable(right.Name, location, right.Location()))
	}
	ctx.ownerSQL(tm, mirror.RIGHT, right.Name)

	return true, nil
}

func (e exportImport) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(e, tm)
}

// exportLocation is the directory the EXPORT is written to and the IMPORT
// read from.
func (c *Context) exportLocation(tm *mirror.TableMirror) string {
	switch {
	case c.Config.Transfer.IntermediateStorage != "":
		return c.Transformer.IntermediateLocation(tm)
	case c.Config.Transfer.CommonStorage != "":
		return c.Config.TargetNamespace() + c.Transformer.WorkingPath(tm)
	default:
		return c.Transformer.ExportLocation(tm)
	}
}

// withinExportLimit records an issue and returns false when the LEFT table
// has more partitions than EXPORT/IMPORT is allowed to handle.
func (c *Context) withinExportLimit(tm *mirror.TableMirror) bool {
	left := tm.Env(mirror.LEFT)
	limit := c.Config.Hybrid.ExportImportPartitionLimit
	if n := len(left.Partitions); left.Partitioned() && limit > 0 && n > limit {
		left.AddIssue(mirror.Message(mirror.MsgPartitionLimitEI, n, limit))
		return false
	}

	return true
}
