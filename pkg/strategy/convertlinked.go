package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// convertLinked points a RIGHT table created by LINKED at storage on the RIGHT
// cluster. Partitioned tables are dropped and recreated with SCHEMA_ONLY.
type convertLinked struct{}

func (convertLinked) BuildOutDefinition(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)

	switch {
	case !right.Exists:
		right.AddIssue(mirror.MsgConvertLinkedMissing)
		return false, nil
	case table.IsACID(left.Definition):
		left.AddIssue(mirror.MsgConvertLinkedACID)
		return false, nil
	}

	return true, nil
}

func (convertLinked) BuildOutSQL(ctx *Context, tm *mirror.TableMirror) (bool, error) {
	right := tm.Env(mirror.RIGHT)

	location := right.Location()
	if location == "" {
		return true, nil
	}

	translated, err := ctx.Translator.TranslateTable(tm, location, tableTypeOf(right.Definition), mirror.ConvertLinked)
	if err != nil {
		return false, err
	}

	right.AddSQL(DescUse, utils.Use(ctx.TargetDatabase(tm)))
	right.AddSQL(DescAlterLocation, utils.AlterTableLocation(right.Name, translated))
	if table.IsLegacyManagedFlagged(right.Definition) {
		right.AddSQL(DescSetProperty, utils.SetTableProperty(right.Name, consts.PropExternalTablePurge, "true"))
	}

	return true, nil
}

func (c convertLinked) Execute(ctx *Context, tm *mirror.TableMirror) bool {
	ok, err := c.BuildOutDefinition(ctx, tm)
	if err != nil {
		return ctx.fail(tm, mirror.LEFT, err)
	}
	if !ok {
		return false
	}

	if !tm.IsPartitioned(mirror.LEFT) {
		ok, err = c.BuildOutSQL(ctx, tm)
		if err != nil {
			return ctx.fail(tm, mirror.RIGHT, err)
		}
		return ok
	}

	right := tm.Env(mirror.RIGHT)
	right.AddIssue(mirror.MsgConvertLinkedPartitioned)
	right.AddSQL(DescUse, utils.Use(ctx.TargetDatabase(tm)))
	if table.IsExternalPurge(right.Definition) {
		right.AddSQL(DescUnsetProperty, utils.UnsetTableProperty(right.Name, consts.PropExternalTablePurge))
	}
	right.AddSQL(DescDrop, utils.DropTable(right.Name))

	right.Exists = false
	tm.Strategy = mirror.SchemaOnly
	tm.AddStep("strategy", mirror.SchemaOnly)

	return For(mirror.SchemaOnly).Execute(ctx, tm)
}
