package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/schema"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// storageMigration moves a table to new storage within the LEFT cluster.
// With distcp the metadata is re-pointed with ALTER statements, otherwise the
// table is renamed and its rows are copied into a replacement.
type storageMigration struct{}

func (storageMigration) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	cfg := ctx.Config
	left := tm.Env(mirror.LEFT)
	tableType := tableTypeOf(left.Definition)

	if dir := ctx.Translator.WarehouseDirectory(tm.Database, tableType); dir != "" &&
		utils.IsSubPath(cfg.TargetNamespace()+dir, left.Location()) {
		left.AddIssue(mirror.MsgAlreadyMigrated)
		return false, nil
	}

	if cfg.IsDistcp() {
		return true, nil
	}

	isACID := table.IsACID(left.Definition)
	downgrade := isACID && cfg.MigrateACID.Downgrade

	right := tm.Env(mirror.RIGHT)
	right.AddProperty(consts.PropStorageMigrated, ctx.Transformer.Clock().Format(schema.MetadataTimestampFormat))
	right.CreateStrategy = mirror.CreateCreate

	spec := schema.NewCopySpec(mirror.LEFT, mirror.RIGHT,
		schema.If(isACID, schema.WithStripLocation()),
		schema.If(!isACID, schema.WithReplaceLocation()),
		schema.If(downgrade, schema.WithMakeExternal()),
		schema.If(downgrade, schema.WithTakeOwnership(cfg.OwnershipAllowed())),
	)

	return ctx.Transformer.Build(tm, spec), nil
}

func (s storageMigration) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	if ctx.Config.IsDistcp() {
		return s.alterSQL(ctx, tm)
	}

	cfg := ctx.Config
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)
	archive := left.Name + "_" + cfg.RunMarker + cfg.Transfer.StorageMigrationPostfix

	left.AddSQL(DescUse, utils.Use(tm.Database))
	if table.HasProperty(left.Definition, consts.PropTranslatedExternal) {
		left.AddSQL(DescUnsetProperty, utils.UnsetTableProperty(left.Name, consts.PropTranslatedExternal))
	}
	left.AddSQL(DescRename, utils.RenameTable(left.Name, archive))
	left.AddSQL(DescCreate, ctx.createStatement(right))
	ctx.ownerSQL(tm, mirror.LEFT, right.Name)
	if cfg.Clusters.Left.LegacyHive {
		left.AddSQL(DescSession, utils.SetSession(consts.TezExecutionEngine, "tez"))
	}

	left.AddCleanUpSQL(DescUse, utils.Use(tm.Database))
	left.AddCleanUpSQL(DescCleanUpArchive, utils.DropTable(archive))

	return ctx.migrationSQL(tm, dataMove{
		original: mirror.LEFT,
		exec:     mirror.LEFT,
		from:     archive,
		to:       right.Name,
	}), nil
}

func (s storageMigration) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(s, tm)
}

// alterSQL re-points the table and its partitions at the locations distcp
// copies them to. Partitions whose directories don't follow their spec
// under the table directory can't be realigned and are reported instead.
func (storageMigration) alterSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	cfg := ctx.Config
	left := tm.Env(mirror.LEFT)
	tableType := tableTypeOf(left.Definition)
	var mismatched bool

	left.AddSQL(DescUse, utils.Use(tm.Database))

	if location := left.Location(); location != "" {
		translated, err := ctx.Translator.TranslateTable(tm, location, tableType, mirror.StorageMigration)
		if err != nil {
			return false, err
		}

		left.AddSQL(DescAlterLocation, utils.AlterTableLocation(left.Name, translated))
		if msg, aligned := ctx.Translator.CheckWarehouse(tm.Database, tableType, "table", translated); !aligned {
			left.AddIssue(msg)
			mismatched = true
		}
	}

	if left.Partitioned() && len(left.Partitions) > 0 {
		translated, err := ctx.Translator.TranslatePartitions(tm, tableType, mirror.StorageMigration, left.Partitions)
		if err != nil {
			return false, err
		}

		for _, spec := range left.PartitionSpecs() {
			source := left.Partitions[spec]
			if !cfg.Translator.PartitionLevelMismatch && !partitionAligned(tm.Name, spec, source) {
				left.AddIssue(mirror.Message(mirror.MsgPartitionDirMismatch, spec, source, tm.Name))
				mismatched = true
				continue
			}

			target := translated[spec]
			left.AddSQL(DescAlterPartition, utils.AlterPartitionLocation(left.Name, spec, target))
			if msg, aligned := ctx.Translator.CheckWarehouse(tm.Database, tableType, "partition", target); !aligned {
				left.AddIssue(msg)
				mismatched = true
			}
		}
	}

	if cfg.Strict && mismatched {
		left.ClearSQL()
		left.AddIssue(mirror.MsgStrictMismatch)
		return false, nil
	}

	return true, nil
}

// partitionAligned reports whether location ends with the directories of
// spec directly below a directory named after the table.
func partitionAligned(name, spec, location string) bool {
	if !utils.PartitionSpecMatchesDir(spec, location) {
		return false
	}

	return utils.LastDirectory(utils.ReduceURLBy(location, utils.PartitionDepth(spec))) == name
}

func tableTypeOf(def []string) mirror.TableType {
	if table.IsExternal(def) {
		return mirror.ExternalTable
	}

	return mirror.ManagedTable
}
