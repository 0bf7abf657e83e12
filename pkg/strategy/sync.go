package strategy

import (
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
)

// DecideSync returns the action that makes the destination match the source
// when sync is requested, the issue describing it, and false when the table
// must not be planned any further.
//
//	source  dest  equal  result
//	F       T     *      DROP
//	T       F     *      CREATE
//	T       T     T      LEAVE
//	T       T     F      REPLACE, or LEAVE and false when dest owns its data
//	F       F     *      NOTHING
func DecideSync(srcExists, dstExists, equal, dstPurge bool) (mirror.CreateStrategy, string, bool) {
	switch {
	case !srcExists && dstExists:
		return mirror.CreateDrop, mirror.MsgSchemaDroppedSource, true
	case srcExists && !dstExists:
		return mirror.CreateCreate, mirror.MsgSchemaWillBeCreated, true
	case srcExists && dstExists && equal:
		return mirror.CreateLeave, mirror.MsgSchemaExistsNoAction, true
	case srcExists && dstExists && dstPurge:
		return mirror.CreateLeave, mirror.MsgSchemaExistsPurge, false
	case srcExists && dstExists:
		return mirror.CreateReplace, mirror.MsgSchemaWillBeReplaced, true
	default:
		return mirror.CreateNothing, "", true
	}
}

// resolveTarget sets the create strategy of the RIGHT table from the state of
// both sides. It returns false when an existing RIGHT table stops the
// migration.
func (c *Context) resolveTarget(tm *mirror.TableMirror) bool {
	left, right := tm.Env(mirror.LEFT), tm.Env(mirror.RIGHT)

	var (
		cs    mirror.CreateStrategy
		issue string
		ok    = true
	)

	switch {
	case c.Config.Sync:
		cs, issue, ok = DecideSync(left.Exists, right.Exists,
			tm.SchemasEqual(mirror.LEFT, mirror.RIGHT), table.IsExternalPurge(right.Definition))
		if cs == mirror.CreateLeave && ok && left.Partitioned() && c.Config.Translator.EvaluatePartitionLocation {
			cs, issue = mirror.CreateAmendParts, mirror.MsgSchemaExistsSyncParts
		}
		if c.Config.ReadOnly && right.Exists && (cs == mirror.CreateDrop || cs == mirror.CreateReplace) {
			cs, issue = mirror.CreateLeave, mirror.MsgReadOnlyNoReplace
		}
	case !right.Exists:
		cs = mirror.CreateCreate
	case table.IsView(right.Definition):
		cs, issue = mirror.CreateReplace, mirror.MsgSchemaWillBeReplaced
	case c.Config.CreateIfNotExists:
		cs, issue = mirror.CreateCreate, mirror.MsgCINEWithExist
	default:
		cs, issue, ok = mirror.CreateLeave, mirror.MsgSchemaExistsNoActionData, false
	}

	right.CreateStrategy = cs
	if issue != "" {
		right.AddIssue(issue)
	}
	return ok
}
