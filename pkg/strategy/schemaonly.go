package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/schema"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
)

// schemaOnly creates the RIGHT schema without moving data. LINKED and COMMON
// share it: LINKED keeps the LEFT locations and never owns the data, COMMON
// keeps the locations of the shared storage and may own it.
type schemaOnly struct {
	mode mirror.DataStrategy
}

func (s schemaOnly) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	cfg := ctx.Config
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)
	acid := table.IsACID(left.Definition)

	if acid {
		switch s.mode {
		case mirror.Linked:
			left.AddIssue(mirror.MsgLinkACID)
			right.CreateStrategy = mirror.CreateNothing
			return false, nil
		case mirror.Common:
			left.AddIssue(mirror.MsgCommonACID)
			right.CreateStrategy = mirror.CreateNothing
			return false, nil
		}
	}

	if !ctx.resolveTarget(tm) {
		return false, nil
	}

	if acid && !cfg.MigrateACID.On {
		left.AddIssue(mirror.MsgACIDNotOn)
		right.CreateStrategy = mirror.CreateNothing
		return false, nil
	}

	var owner bool
	switch s.mode {
	case mirror.SchemaOnly:
		owner = !table.IsExternal(left.Definition)
	case mirror.Common:
		owner = true
	}

	spec := schema.NewCopySpec(mirror.LEFT, mirror.RIGHT,
		schema.If(s.mode == mirror.SchemaOnly, schema.WithReplaceLocation()),
		schema.If(cfg.ConvertManaged, schema.WithUpgrade()),
		schema.WithTakeOwnership(owner && !cfg.Sync && cfg.OwnershipAllowed()),
		schema.If(acid, schema.WithStripLocation()),
	)

	return ctx.Transformer.Build(tm, spec), nil
}

func (s schemaOnly) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	ctx.createSQL(tm, true)

	switch tm.Env(mirror.RIGHT).CreateStrategy {
	case mirror.CreateCreate, mirror.CreateReplace, mirror.CreateAmendParts:
		ctx.partitionSQL(tm, mirror.RIGHT)
	}

	return true, nil
}

func (s schemaOnly) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(s, tm)
}
