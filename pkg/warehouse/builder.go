package warehouse

import (
	"sort"
	"strings"
	"sync"

	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	log "github.com/sirupsen/logrus"
)

type (
	// SourceLocation describes one observed table or partition location.
	SourceLocation struct {
		Database  string
		Table     string
		TableType mirror.TableType

		// PartitionSpec is empty for the table itself.
		PartitionSpec     string
		TableLocation     string
		PartitionLocation string

		// Level is the consolidation level base.
		Level int

		// PartitionLevelMismatch reduces partition locations by Level alone
		// instead of by the partition depth plus Level.
		PartitionLevelMismatch bool
	}

	// Builder accumulates warehouse plans and source locations for a run.
	Builder struct {
		mu          sync.Mutex
		global      Warehouse
		environment Warehouse
		plans       map[string]Warehouse
		sources     map[string]*SourceLocationMap
	}
)

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		plans:   make(map[string]Warehouse),
		sources: make(map[string]*SourceLocationMap),
	}
}

// SetGlobal sets the GLOBAL warehouse.
func (b *Builder) SetGlobal(ext, mngd string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = New(SourceGlobal, ext, mngd)
}

// SetEnvironment sets the ENVIRONMENT warehouse.
func (b *Builder) SetEnvironment(ext, mngd string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.environment = New(SourceEnvironment, ext, mngd)
}

// AddWarehousePlan declares the base directories for db. A trailing
// "/<db>.db" on either directory is removed since it is appended when
// locations are resolved.
func (b *Builder) AddWarehousePlan(db, ext, mngd string) error {
	if strings.TrimSpace(ext) == "" || strings.TrimSpace(mngd) == "" {
		return mirror.ConfigurationError("warehouse plan for %s requires both external and managed directories", db)
	}

	ext = stripDatabaseDir(db, "external", ext)
	mngd = stripDatabaseDir(db, "managed", mngd)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.plans[db] = New(SourcePlan, ext, mngd)
	return nil
}

// Adopt registers wh as the plan for db, keeping its Source. It is used to
// promote an inferred plan.
func (b *Builder) Adopt(db string, wh Warehouse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.plans[db] = wh
}

// RemoveWarehousePlan drops the plan declared for db.
func (b *Builder) RemoveWarehousePlan(db string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.plans, db)
}

// Plan returns the plan declared for db.
func (b *Builder) Plan(db string) (Warehouse, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	wh, ok := b.plans[db]
	return wh, ok
}

// AddSourceLocation records the reduced location of a table or partition.
// Partitions stored beneath their table's location are skipped since the
// table location already covers them.
func (b *Builder) AddSourceLocation(loc SourceLocation) {
	var reduced string
	switch {
	case loc.PartitionSpec == "":
		reduced = utils.ReduceURLBy(loc.TableLocation, loc.Level)
	case utils.IsSubPath(loc.TableLocation, loc.PartitionLocation):
		return
	case loc.PartitionLevelMismatch:
		reduced = utils.ReduceURLBy(loc.PartitionLocation, loc.Level)
	default:
		reduced = utils.ReduceURLBy(loc.PartitionLocation, utils.PartitionDepth(loc.PartitionSpec)+loc.Level)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sources, ok := b.sources[loc.Database]
	if !ok {
		sources = newSourceLocationMap()
		b.sources[loc.Database] = sources
	}
	sources.AddTableLocation(loc.Table, loc.TableType, reduced)
}

// Resolve returns the effective warehouse for db. A declared plan wins over
// the environment, which wins over the global setting.
func (b *Builder) Resolve(db string) (Warehouse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if wh, ok := b.plans[db]; ok && !wh.IsEmpty() {
		return wh, nil
	}
	if !b.environment.IsEmpty() {
		return b.environment, nil
	}
	if !b.global.IsEmpty() {
		return b.global, nil
	}

	return Warehouse{}, mirror.ConfigurationError("no warehouse plan, environment or global warehouse set for %s", db)
}

// Sources returns a copy of the source locations observed for db, or nil.
func (b *Builder) Sources(db string) *SourceLocationMap {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.sources[db]; ok {
		return s.clone()
	}

	return nil
}

// Databases returns every database with a plan or observed locations.
func (b *Builder) Databases() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]struct{}, len(b.plans)+len(b.sources))
	for db := range b.plans {
		seen[db] = struct{}{}
	}
	for db := range b.sources {
		seen[db] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for db := range seen {
		out = append(out, db)
	}
	sort.Strings(out)
	return out
}

// Reset clears the observed source locations. Plans are kept.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = make(map[string]*SourceLocationMap)
}

// Infer proposes a TABLE plan for db when no plan is declared and every
// observed external location is the same "<base>/<db>.db" directory. The
// managed directory is inferred the same way when possible.
func (b *Builder) Infer(db string) (Warehouse, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.plans[db]; ok {
		return Warehouse{}, false
	}

	sources, ok := b.sources[db]
	if !ok {
		return Warehouse{}, false
	}

	ext, ok := inferBase(db, sources.Locations(mirror.ExternalTable))
	if !ok {
		return Warehouse{}, false
	}

	mngd, _ := inferBase(db, sources.Locations(mirror.ManagedTable))
	return New(SourceTable, ext, mngd), true
}

func inferBase(db string, locations []string) (string, bool) {
	if len(locations) != 1 {
		return "", false
	}

	path := utils.StripNamespace(locations[0])
	if utils.LastDirectory(path) != db+".db" {
		return "", false
	}

	base := utils.ParentDirectory(path)
	return base, base != ""
}

func stripDatabaseDir(db, kind, dir string) string {
	dir = utils.TrimTrailingSlash(dir)
	if suffix := "/" + db + ".db"; strings.HasSuffix(dir, suffix) {
		log.WithFields(log.Fields{
			"db":        db,
			"directory": dir,
		}).Warnf("The %s directory includes the database name; it is removed and added back when locations are resolved", kind)
		return strings.TrimSuffix(dir, suffix)
	}

	return dir
}
