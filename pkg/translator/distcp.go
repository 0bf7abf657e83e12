package translator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
)

// DistcpPlan is the input for copying the data of one database with distcp.
// Nothing is executed; the files are written next to the plan.
type DistcpPlan struct {
	// SourceLists maps a file name to its newline separated source paths.
	SourceLists map[string]string

	// Script runs one `hadoop distcp -f` per target directory.
	Script string
}

// BuildDistcpList groups the recorded translations of db in env by target
// directory. Both sides are reduced by consolidationLevel; sources are unique
// and sorted.
func (t *Translator) BuildDistcpList(db string, env mirror.Environment, consolidationLevel int) map[string][]string {
	grouped := make(map[string]map[string]struct{})
	for _, tr := range t.History(db, env) {
		if tr.Original == "" || tr.Target == "" {
			continue
		}

		target := utils.ReduceURLBy(tr.Target, consolidationLevel)
		source := utils.ReduceURLBy(tr.Original, consolidationLevel)

		sources, ok := grouped[target]
		if !ok {
			sources = make(map[string]struct{})
			grouped[target] = sources
		}
		sources[source] = struct{}{}
	}

	out := make(map[string][]string, len(grouped))
	for target, sources := range grouped {
		list := make([]string, 0, len(sources))
		for s := range sources {
			list = append(list, s)
		}
		sort.Strings(list)
		out[target] = list
	}

	return out
}

// DistcpScript renders the distcp plan for db in env.
//
// Example output for one target:
//
//	hadoop distcp ${DISTCP_OPTS} -f ${HCFS_BASE_DIR}/sales_RIGHT_distcp_source_1.txt hdfs://right/wh/ext/sales.db
func (t *Translator) DistcpScript(db string, env mirror.Environment, consolidationLevel int) DistcpPlan {
	list := t.BuildDistcpList(db, env, consolidationLevel)

	targets := make([]string, 0, len(list))
	for target := range list {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	plan := DistcpPlan{SourceLists: make(map[string]string, len(targets))}

	var sb strings.Builder
	sb.WriteString("#!/usr/bin/env sh\n\n")
	fmt.Fprintf(&sb, "# distcp plan for %s (%s)\n", db, env)
	sb.WriteString("# Copy the source list files to ${HCFS_BASE_DIR} before running.\n")
	sb.WriteString("if [ -z \"${HCFS_BASE_DIR}\" ]; then\n")
	sb.WriteString("  echo \"HCFS_BASE_DIR is not set\"\n")
	sb.WriteString("  exit 1\n")
	sb.WriteString("fi\n\n")

	for i, target := range targets {
		name := fmt.Sprintf("%s_%s_distcp_source_%d.txt", db, env, i+1)
		plan.SourceLists[name] = strings.Join(list[target], "\n") + "\n"

		fmt.Fprintf(&sb, "echo \"Copying to %s\"\n", target)
		fmt.Fprintf(&sb, "hadoop distcp ${DISTCP_OPTS} -f ${HCFS_BASE_DIR}/%s %s\n", name, target)
	}

	plan.Script = sb.String()
	return plan
}

// BuildPartitionAddStatement renders the PARTITION clauses of an
// `ALTER TABLE .. ADD IF NOT EXISTS` statement for env, one per line in spec
// order.
func BuildPartitionAddStatement(env *mirror.EnvironmentTable) string {
	var sb strings.Builder
	for _, spec := range env.PartitionSpecs() {
		fmt.Fprintf(&sb, "\tPARTITION (%s) LOCATION '%s' \n", utils.PartitionSpecToSQL(spec), env.Partitions[spec])
	}

	return sb.String()
}
