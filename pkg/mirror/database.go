package mirror

import (
	"sort"
	"sync"
)

// Database properties read from the metastore and compared against warehouse
// plans.
const (
	DBLocation        = "LOCATION"
	DBManagedLocation = "MANAGEDLOCATION"
)

// DBMirror groups the records of one database.
type DBMirror struct {
	Name       string
	TargetName string

	mu         sync.Mutex
	tables     map[string]*TableMirror
	filtered   map[string]string
	properties map[Environment]map[string]string
}

// NewDBMirror creates an empty database record. The target name defaults to
// the source name.
func NewDBMirror(name string) *DBMirror {
	return &DBMirror{
		Name:       name,
		TargetName: name,
		tables:     make(map[string]*TableMirror),
		filtered:   make(map[string]string),
		properties: make(map[Environment]map[string]string),
	}
}

// AddTable returns the record for name, creating it on first use.
func (d *DBMirror) AddTable(name string) *TableMirror {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tm, ok := d.tables[name]; ok {
		return tm
	}

	tm := NewTableMirror(d.Name, name)
	d.tables[name] = tm
	return tm
}

// Table returns the record for name, or nil.
func (d *DBMirror) Table(name string) *TableMirror {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tables[name]
}

// Tables returns every record ordered by table name.
func (d *DBMirror) Tables() []*TableMirror {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*TableMirror, 0, len(d.tables))
	for _, tm := range d.tables {
		out = append(out, tm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FilterOut records that name was not planned and why.
func (d *DBMirror) FilterOut(name, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filtered[name] = reason
}

// FilteredOut returns the reasons tables were not planned, keyed by name.
func (d *DBMirror) FilteredOut() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]string, len(d.filtered))
	for name, reason := range d.filtered {
		out[name] = reason
	}
	return out
}

// SetProperty records a database property observed in env.
func (d *DBMirror) SetProperty(env Environment, key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	props, ok := d.properties[env]
	if !ok {
		props = make(map[string]string)
		d.properties[env] = props
	}
	props[key] = value
}

// Property returns a database property observed in env.
func (d *DBMirror) Property(env Environment, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.properties[env][key]
	return v, ok
}

// MarshalYAML renders the database and its tables for the plan file.
func (d *DBMirror) MarshalYAML() (any, error) {
	d.mu.Lock()
	props := make(map[Environment]map[string]string, len(d.properties))
	for env, p := range d.properties {
		props[env] = p
	}
	d.mu.Unlock()

	return struct {
		Name        string                            `yaml:"name"`
		TargetName  string                            `yaml:"targetName,omitempty"`
		Properties  map[Environment]map[string]string `yaml:"properties,omitempty"`
		FilteredOut map[string]string                 `yaml:"filteredOut,omitempty"`
		Tables      []*TableMirror                    `yaml:"tables"`
	}{
		Name:        d.Name,
		TargetName:  d.TargetName,
		Properties:  props,
		FilteredOut: d.FilteredOut(),
		Tables:      d.Tables(),
	}, nil
}
