package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// dump writes the LEFT schema as a replayable script. RIGHT is never touched.
type dump struct{}

func (dump) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	left := tm.Env(mirror.LEFT)

	def := table.StripDatabase(table.Clone(left.Definition))
	if !ctx.Config.Clusters.Left.LegacyHive && table.IsACID(def) {
		def = table.StripLocation(def)
	}
	left.Definition = def

	return true, nil
}

func (dump) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	left := tm.Env(mirror.LEFT)
	left.ClearSQL()

	left.AddSQL(DescUse, utils.Use(tm.Database))
	left.AddSQL(DescCreate, ctx.createStatement(left))
	ctx.ownerSQL(tm, mirror.LEFT, left.Name)
	ctx.partitionSQL(tm, mirror.LEFT)

	return true, nil
}

func (d dump) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	return ctx.build(d, tm)
}
