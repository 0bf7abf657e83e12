package strategy

import (
	"strconv"
	"strings"

	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/table"
	"github.com/cloudera-labs/hms-mirror/pkg/translator"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// Descriptions of planned statements.
const (
	DescUse              = "Selecting DB"
	DescDrop             = "Dropping table"
	DescDropView         = "Dropping view"
	DescCreate           = "Creating table"
	DescCreateTransfer   = "Creating TRANSFER table"
	DescCreateShadow     = "Creating SHADOW table"
	DescOwner            = "Setting table owner"
	DescRename           = "Renaming table"
	DescRepair           = "Repairing table (MSCK)"
	DescAddPartitions    = "Adding partitions with locations"
	DescAlterLocation    = "Altering table location"
	DescAlterPartition   = "Altering partition location"
	DescSetProperty      = "Setting table property"
	DescUnsetProperty    = "Removing table property"
	DescSession          = "Setting session"
	DescTransfer         = "Moving data"
	DescTransferParts    = "Moving data for %d partitions"
	DescDistcp           = "Data movement handled by distcp"
	DescExport           = "EXPORT table"
	DescImport           = "IMPORT table"
	DescCleanUpTransfer  = "Dropping TRANSFER table"
	DescCleanUpShadow    = "Dropping SHADOW table"
	DescCleanUpArchive   = "Dropping archived table"
	DescCleanUpPostCheck = "To be run AFTER the final RIGHT statements"
)

// dataMove describes copying the rows of one table into another.
type dataMove struct {
	// original holds the partitions and definition the limits apply to.
	original mirror.Environment
	// exec is the environment whose SQL list receives the statements.
	exec     mirror.Environment
	from, to string
	// sqlOnly emits the INSERT even when data movement is left to distcp.
	sqlOnly bool
}

// createStatement renders the definition of env, honouring
// create_if_not_exists.
func (c *Context) createStatement(env *mirror.EnvironmentTable) string {
	stmt := strings.Join(env.Definition, "\n")
	if !c.Config.CreateIfNotExists || table.IsView(env.Definition) {
		return stmt
	}

	if h, _ := table.Header(env.Definition); h != nil && h.IfNotExists {
		return stmt
	}

	for _, lead := range []string{"CREATE EXTERNAL TABLE ", "CREATE TABLE "} {
		if strings.HasPrefix(stmt, lead) {
			return lead + "IF NOT EXISTS " + stmt[len(lead):]
		}
	}

	return stmt
}

// ownerSQL sets the owner of name in target when ownership transfer is on,
// the target cluster supports it and the owner is known.
func (c *Context) ownerSQL(tm *mirror.TableMirror, target mirror.Environment, name string) {
	owner := tm.Env(mirror.LEFT).Owner
	if owner == "" || !c.Config.OwnershipTransfer || c.Config.Cluster(target).LegacyHive {
		return
	}

	tm.Env(target).AddSQL(DescOwner, utils.SetOwner(name, owner))
}

// createSQL renders the statements for the create strategy of the RIGHT
// table. The USE statement is emitted by the caller when withUse is false.
func (c *Context) createSQL(tm *mirror.TableMirror, withUse bool) {
	right := tm.Env(mirror.RIGHT)
	use := func() {
		if withUse {
			right.AddSQL(DescUse, utils.Use(c.TargetDatabase(tm)))
		}
	}

	switch right.CreateStrategy {
	case mirror.CreateDrop:
		use()
		right.AddSQL(DescDrop, utils.DropTable(right.Name))
	case mirror.CreateReplace:
		use()
		if table.IsView(right.Definition) {
			right.AddSQL(DescDropView, utils.DropView(right.Name))
		} else {
			right.AddSQL(DescDrop, utils.DropTable(right.Name))
		}
		right.AddSQL(DescCreate, c.createStatement(right))
	case mirror.CreateCreate:
		use()
		right.AddSQL(DescCreate, c.createStatement(right))
		c.ownerSQL(tm, mirror.RIGHT, right.Name)
	case mirror.CreateAmendParts:
		use()
	}
}

// partitionSQL registers the partitions of a created table in env, either
// with explicit locations or with MSCK. MSCK waits for the data in distcp
// mode and is therefore planned as cleanup.
func (c *Context) partitionSQL(tm *mirror.TableMirror, env mirror.Environment) {
	target := tm.Env(env)
	source := tm.Env(mirror.LEFT)
	if !source.Partitioned() || table.IsACID(source.Definition) {
		return
	}

	switch {
	case c.Config.Translator.EvaluatePartitionLocation:
		if len(target.Partitions) > 0 {
			target.AddSQL(DescAddPartitions, utils.AddPartitions(target.Name, translator.BuildPartitionAddStatement(target)))
		}
	case c.Config.Cluster(env).PartitionDiscovery.InitMSCK:
		msck := utils.MSCKRepair(target.Name)
		if c.Config.IsDistcp() {
			target.AddCleanUpSQL(DescRepair, msck)
		} else {
			target.AddSQL(DescRepair, msck)
		}
	}
}

// migrationSQL plans the statements that copy the rows of m.from into m.to.
// It returns false when the partition count of the original table is above
// the configured limit.
func (c *Context) migrationSQL(tm *mirror.TableMirror, m dataMove) bool {
	original := tm.Env(m.original)
	exec := tm.Env(m.exec)
	cluster := c.Config.Cluster(m.exec)
	partitioned := original.Partitioned()

	if partitioned {
		n := len(original.Partitions)
		if table.IsACID(original.Definition) {
			if limit := c.Config.MigrateACID.PartitionLimit; limit > 0 && n > limit {
				original.AddIssue(mirror.Message(mirror.MsgPartitionLimitACID, n, limit))
				return false
			}
		} else if limit := c.Config.Hybrid.SQLPartitionLimit; limit > 0 && n > limit {
			original.AddIssue(mirror.Message(mirror.MsgPartitionLimitSQL, n, limit))
			return false
		}
	}

	for _, stmt := range utils.SetSessionOverrides(c.Config.Overrides(m.exec)) {
		exec.AddSQL(DescSession, stmt)
	}

	if c.Config.IsDistcp() && !m.sqlOnly {
		exec.AddSQL(DescDistcp, mirror.MsgRunDistcp)
		return true
	}

	if !partitioned {
		exec.AddSQL(DescTransfer, utils.InsertOverwrite(m.from, m.to))
		return true
	}

	columns := table.PartitionColumns(original.Definition)
	desc := mirror.Message(DescTransferParts, len(original.Partitions))
	session := func(key string, value int) {
		exec.AddSQL(DescSession, utils.SetSession(key, strconv.Itoa(value)))
	}

	switch {
	case c.Config.Optimization.Skip:
		if !cluster.LegacyHive {
			exec.AddSQL(DescSession, utils.SetSession(consts.SortDynamicPartition, "false"))
		}
		exec.AddSQL(desc, utils.InsertPartitions(m.from, m.to, columns, ""))
	case c.Config.Optimization.SortDynamicPartitionInserts:
		if !cluster.LegacyHive {
			exec.AddSQL(DescSession, utils.SetSession(consts.SortDynamicPartition, "true"))
			if !cluster.HDPHive3 {
				session(consts.SortDynamicPartitionThreshold, 0)
			}
		}
		exec.AddSQL(desc, utils.InsertPartitions(m.from, m.to, columns, ""))
	default:
		if !cluster.LegacyHive {
			exec.AddSQL(DescSession, utils.SetSession(consts.SortDynamicPartition, "false"))
			if !cluster.HDPHive3 {
				session(consts.SortDynamicPartitionThreshold, -1)
			}
		}
		exec.AddSQL(desc, utils.InsertPartitions(m.from, m.to, columns, columns))
	}

	return true
}
