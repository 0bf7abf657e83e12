package translator

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cloudera-labs/hms-mirror/pkg/config"
	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	"github.com/cloudera-labs/hms-mirror/pkg/warehouse"
	log "github.com/sirupsen/logrus"
)

type (
	// Request is a single location translation.
	Request struct {
		DB          string
		Table       string
		Location    string
		TableType   mirror.TableType
		Environment mirror.Environment

		// Level is the number of trailing directories kept from the source
		// path when the location is re-rooted under a warehouse directory.
		Level int

		// PartitionSpec is set when Location is a partition location.
		PartitionSpec string

		Strategy mirror.DataStrategy

		// Record, when set, is marked reMapped on a global location map match.
		Record *mirror.TableMirror
	}

	// Translation is one recorded translation.
	Translation struct {
		Original string `yaml:"original"`
		Target   string `yaml:"target"`
		Level    int    `yaml:"level"`
	}

	// Mapping is an entry of the ordered global location map.
	Mapping struct {
		From    string
		Targets map[mirror.TableType]string
	}

	// Translator computes target locations for tables and partitions.
	Translator struct {
		cfg   *config.Config
		plans *warehouse.Builder

		mu      sync.Mutex
		user    map[string]map[mirror.TableType]string
		auto    map[string]map[mirror.TableType]string
		history map[string]map[mirror.Environment][]Translation

		ordered atomic.Pointer[[]Mapping]
	}
)

var tableTypes = []mirror.TableType{mirror.ExternalTable, mirror.ManagedTable}

// New creates a Translator seeded with the user entries of the configured
// global location map.
func New(cfg *config.Config, plans *warehouse.Builder) *Translator {
	t := &Translator{
		cfg:     cfg,
		plans:   plans,
		user:    make(map[string]map[mirror.TableType]string),
		auto:    make(map[string]map[mirror.TableType]string),
		history: make(map[string]map[mirror.Environment][]Translation),
	}

	for _, m := range cfg.Translator.GlobalLocationMap {
		t.addUser(m.From, m.TableType, m.To)
	}

	t.mu.Lock()
	t.publish()
	t.mu.Unlock()
	return t
}

// AddUserGlobalLocation adds a user entry to the global location map. An
// empty tableType applies the entry to both table types.
func (t *Translator) AddUserGlobalLocation(from string, tableType mirror.TableType, to string) {
	t.addUser(from, tableType, to)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.publish()
}

// RemoveUserGlobalLocation removes a user entry. An empty tableType removes
// the entry for both table types.
func (t *Translator) RemoveUserGlobalLocation(from string, tableType mirror.TableType) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := normalizeKey(from)
	targets, ok := t.user[key]
	if !ok {
		return
	}

	if tableType == "" {
		delete(t.user, key)
	} else {
		delete(targets, tableType)
		if len(targets) == 0 {
			delete(t.user, key)
		}
	}

	t.publish()
}

// Rebuild derives the automatic entries from the warehouse plans and the
// observed source locations, then publishes a new ordered map. It is called
// once per run before tables are planned.
func (t *Translator) Rebuild() {
	auto := make(map[string]map[mirror.TableType]string)
	if t.cfg.Translator.AutoGlobalLocationMap && t.plans != nil {
		for _, db := range t.plans.Databases() {
			wh, err := t.plans.Resolve(db)
			if err != nil {
				log.WithField("db", db).WithError(err).Debug("Skipping auto global location map entries")
				continue
			}

			sources := t.plans.Sources(db)
			if sources == nil {
				continue
			}

			for _, tt := range sources.TableTypes() {
				dir := wh.DatabaseDirectory(t.cfg.TargetDatabase(db), tt)
				if dir == "" {
					continue
				}

				for _, loc := range sources.Locations(tt) {
					key := normalizeKey(loc)
					if key == "" {
						continue
					}

					targets, ok := auto[key]
					if !ok {
						targets = make(map[mirror.TableType]string)
						auto[key] = targets
					}
					if existing, ok := targets[tt]; ok && existing != dir {
						log.WithFields(log.Fields{
							"db":       db,
							"from":     key,
							"existing": existing,
							"ignored":  dir,
						}).Warn("Source location is shared between databases; keeping the first mapping")
						continue
					}
					targets[tt] = dir
				}
			}
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.auto = auto
	t.publish()
}

// GlobalLocationMap returns the current ordered global location map.
func (t *Translator) GlobalLocationMap() []Mapping {
	if m := t.ordered.Load(); m != nil {
		return *m
	}

	return nil
}

// ProcessGlobalLocationMap rewrites relPath with the first (longest) entry of
// the ordered global location map that matches it on whole path segments.
func (t *Translator) ProcessGlobalLocationMap(relPath string, tableType mirror.TableType) (string, bool) {
	for _, m := range t.GlobalLocationMap() {
		if !utils.IsSubPath(m.From, relPath) {
			continue
		}

		target, ok := m.Targets[tableType]
		if !ok {
			continue
		}

		mapped := target + strings.TrimSuffix(relPath, "/")[len(m.From):]
		log.WithFields(log.Fields{
			"from":     m.From,
			"to":       target,
			"location": mapped,
		}).Debug("Global location map matched")
		return mapped, true
	}

	return relPath, false
}

// Translate computes the target location for req and records it in the
// translation history.
func (t *Translator) Translate(req Request) (string, error) {
	sourceNS := t.cfg.SourceNamespace()
	targetNS := t.cfg.TargetNamespace()
	if targetNS == "" {
		return "", mirror.ConfigurationError("target namespace (common_storage or RIGHT namespace) is not set")
	}

	location := utils.TrimTrailingSlash(req.Location)
	if targetNS != sourceNS && strings.HasPrefix(location, targetNS+"/") {
		return location, nil
	}

	var rel string
	switch {
	case sourceNS == "":
		rel = utils.StripNamespace(location)
	case location == sourceNS || strings.HasPrefix(location, sourceNS+"/"):
		rel = location[len(sourceNS):]
	default:
		return "", mirror.MismatchError(
			"location %s doesn't match the LEFT namespace %s; the translation can't be made reliably",
			req.Location,
			sourceNS,
		)
	}

	whBase := t.WarehouseDirectory(req.DB, req.TableType)

	if targetNS == sourceNS && t.isTranslated(rel, whBase) {
		return location, nil
	}

	mapped, reMapped := t.ProcessGlobalLocationMap(rel, req.TableType)

	var target string
	switch {
	case reMapped:
		if req.Record != nil {
			req.Record.ReMapped = true
		}
		target = targetNS + mapped
	case whBase != "":
		remainder := rel[len(utils.ReduceURLBy(rel, req.Level)):]
		if req.PartitionSpec != "" && t.cfg.Translator.PartitionLevelMismatch {
			remainder = "/" + req.Table + "/" + req.PartitionSpec
		}
		target = targetNS + whBase + remainder
	case req.Strategy == mirror.StorageMigration && targetNS == sourceNS:
		return "", mirror.ConfigurationError(
			"no global location map entry or warehouse plan matches %s; STORAGE_MIGRATION within one namespace needs one",
			req.Location,
		)
	case t.cfg.Translator.TranslationType == config.Aligned:
		return "", mirror.ConfigurationError("ALIGNED translation of %s requires a warehouse plan for %s", req.Location, req.DB)
	default:
		target = targetNS + rel
	}

	t.record(req.DB, req.Environment, Translation{Original: location, Target: target, Level: req.Level})
	return target, nil
}

// TranslateTable translates the location of tm's table.
func (t *Translator) TranslateTable(
	tm *mirror.TableMirror,
	location string,
	tableType mirror.TableType,
	strategy mirror.DataStrategy,
) (string, error) {
	return t.Translate(Request{
		DB:          tm.Database,
		Table:       tm.Name,
		Location:    location,
		TableType:   tableType,
		Environment: historyEnvironment(strategy),
		Level:       t.cfg.Translator.ConsolidationLevelBase,
		Strategy:    strategy,
		Record:      tm,
	})
}

// TranslatePartitions translates every partition location of tm's table and
// returns a new spec to location map.
func (t *Translator) TranslatePartitions(
	tm *mirror.TableMirror,
	tableType mirror.TableType,
	strategy mirror.DataStrategy,
	partitions map[string]string,
) (map[string]string, error) {
	base := t.cfg.Translator.ConsolidationLevelBase
	out := make(map[string]string, len(partitions))

	specs := make([]string, 0, len(partitions))
	for spec := range partitions {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	for _, spec := range specs {
		level := base
		if !t.cfg.Translator.PartitionLevelMismatch {
			level += utils.PartitionDepth(spec)
		}

		target, err := t.Translate(Request{
			DB:            tm.Database,
			Table:         tm.Name,
			Location:      partitions[spec],
			TableType:     tableType,
			Environment:   historyEnvironment(strategy),
			Level:         level,
			PartitionSpec: spec,
			Strategy:      strategy,
			Record:        tm,
		})
		if err != nil {
			return nil, err
		}
		out[spec] = target
	}

	return out, nil
}

// CheckWarehouse compares location with the warehouse directory planned for
// db. It returns the mismatch text and false when a plan exists and location
// is outside of it. kind names the object, e.g. "table" or "partition".
func (t *Translator) CheckWarehouse(db string, tableType mirror.TableType, kind, location string) (string, bool) {
	dir := t.WarehouseDirectory(db, tableType)
	if dir == "" {
		return "", true
	}

	expected := t.cfg.TargetNamespace() + dir
	if utils.IsSubPath(expected, location) {
		return "", true
	}

	return mirror.Message(mirror.MsgLocationNotMatchWarehouse, kind, expected, location), false
}

// WarehouseDirectory returns "<dir>/<targetdb>.db" from the plan resolved
// for db, or "" when there is none.
func (t *Translator) WarehouseDirectory(db string, tableType mirror.TableType) string {
	if t.plans == nil {
		return ""
	}

	wh, err := t.plans.Resolve(db)
	if err != nil {
		return ""
	}

	return wh.DatabaseDirectory(t.cfg.TargetDatabase(db), tableType)
}

// History returns the translations recorded for db in env.
func (t *Translator) History(db string, env mirror.Environment) []Translation {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Translation(nil), t.history[db][env]...)
}

func (t *Translator) record(db string, env mirror.Environment, tr Translation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	envs, ok := t.history[db]
	if !ok {
		envs = make(map[mirror.Environment][]Translation)
		t.history[db] = envs
	}
	envs[env] = append(envs[env], tr)
}

// isTranslated reports whether rel already sits under a global location map
// target or the warehouse directory of its database.
func (t *Translator) isTranslated(rel, whBase string) bool {
	if whBase != "" && utils.IsSubPath(whBase, rel) {
		return true
	}

	for _, m := range t.GlobalLocationMap() {
		for _, target := range m.Targets {
			if utils.IsSubPath(target, rel) {
				return true
			}
		}
	}

	return false
}

func (t *Translator) addUser(from string, tableType mirror.TableType, to string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := normalizeKey(from)
	targets, ok := t.user[key]
	if !ok {
		targets = make(map[mirror.TableType]string)
		t.user[key] = targets
	}

	to = utils.NormalizeDir(utils.StripNamespace(to))
	if tableType == "" {
		for _, tt := range tableTypes {
			targets[tt] = to
		}
		return
	}
	targets[tableType] = to
}

// publish merges the auto and user entries into a new ordered snapshot. User
// entries override auto entries for the same key and table type. Callers hold
// t.mu.
func (t *Translator) publish() {
	merged := make(map[string]map[mirror.TableType]string, len(t.auto)+len(t.user))
	for _, src := range []map[string]map[mirror.TableType]string{t.auto, t.user} {
		for key, targets := range src {
			m, ok := merged[key]
			if !ok {
				m = make(map[mirror.TableType]string, len(targets))
				merged[key] = m
			}
			for tt, to := range targets {
				m[tt] = to
			}
		}
	}

	ordered := make([]Mapping, 0, len(merged))
	for key, targets := range merged {
		ordered = append(ordered, Mapping{From: key, Targets: targets})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i].From) != len(ordered[j].From) {
			return len(ordered[i].From) > len(ordered[j].From)
		}
		return ordered[i].From < ordered[j].From
	})

	t.ordered.Store(&ordered)
}

func normalizeKey(from string) string {
	return utils.NormalizeDir(utils.StripNamespace(from))
}

// historyEnvironment is the side whose data is copied for strategy.
// STORAGE_MIGRATION moves data within the LEFT cluster.
func historyEnvironment(strategy mirror.DataStrategy) mirror.Environment {
	if strategy == mirror.StorageMigration {
		return mirror.LEFT
	}

	return mirror.RIGHT
}
