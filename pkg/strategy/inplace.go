package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/schema"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// archiveSuffix is appended to the name of an ACID table replaced in place.
const archiveSuffix = "_archive"

type (
	// sqlInPlace downgrades an ACID table on the LEFT cluster. The table is
	// renamed, recreated as external and filled with INSERT statements.
	sqlInPlace struct{}

	// exportImportInPlace downgrades an ACID table on the LEFT cluster with an
	// EXPORT of the renamed table and an IMPORT under the original name.
	exportImportInPlace struct{}
)

// downgradedDefinition builds the replacement of the LEFT table into RIGHT.
func (c *Context) downgradedDefinition(tm *mirror.TableMirror) bool {
	right := tm.Env(mirror.RIGHT)
	right.CreateStrategy = mirror.CreateCreate

	spec := schema.NewCopySpec(mirror.LEFT, mirror.RIGHT,
		schema.WithTakeOwnership(c.Config.OwnershipAllowed()),
		schema.If(c.Config.MigrateACID.Downgrade, schema.WithMakeExternal()),
		schema.WithStripLocation(),
	)

	return c.Transformer.Build(tm, spec)
}

func (sqlInPlace) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	left := tm.Env(mirror.LEFT)
	limit := ctx.Config.MigrateACID.PartitionLimit
	if n := len(left.Partitions); left.Partitioned() && limit > 0 && n > limit {
		left.AddIssue(mirror.Message(mirror.MsgPartitionLimitACID, n, limit))
		return false, nil
	}

	return ctx.downgradedDefinition(tm), nil
}

func (sqlInPlace) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)
	archive := left.Name + archiveSuffix

	left.AddSQL(DescUse, utils.Use(tm.Database))
	if table.HasProperty(left.Definition, consts.PropTranslatedExternal) {
		left.AddSQL(DescUnsetProperty, utils.UnsetTableProperty(left.Name, consts.PropTranslatedExternal))
	}
	left.AddSQL(DescRename, utils.RenameTable(left.Name, archive))
	left.AddSQL(DescCreate, ctx.createStatement(right))

	left.AddCleanUpSQL(DescUse, utils.Use(tm.Database))
	left.AddCleanUpSQL(DescCleanUpArchive, utils.DropTable(archive))

	return ctx.migrationSQL(tm, dataMove{
		original: mirror.LEFT,
		exec:     mirror.LEFT,
		from:     archive,
		to:       left.Name,
	}), nil
}

func (s sqlInPlace) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(s, tm)
}

func (exportImportInPlace) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	if !ctx.withinExportLimit(tm) {
		return false, nil
	}

	return ctx.downgradedDefinition(tm), nil
}

func (exportImportInPlace) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	left := tm.Env(mirror.LEFT)
	archive := left.Name + archiveSuffix
	location := ctx.Transformer.ExportLocation(tm)

	left.AddSQL(DescUse, utils.Use(tm.Database))
	left.AddSQL(DescRename, utils.RenameTable(left.Name, archive))
	left.AddSQL(DescExport, utils.ExportTable(archive, location))
	left.AddSQL(DescImport, utils.ImportExternalTable(left.Name, location, ""))

	left.AddCleanUpSQL(DescUse, utils.Use(tm.Database))
	left.AddCleanUpSQL(DescCleanUpArchive, utils.DropTable(archive))

	return true, nil
}

func (e exportImportInPlace) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(e, tm)
}
