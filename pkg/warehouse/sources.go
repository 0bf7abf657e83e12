package warehouse

import (
	"sort"

	"github.com/cloudera-labs/hms-mirror/pkg/mirror"
)

// SourceLocationMap groups the tables of one database by table type and
// reduced location.
type SourceLocationMap struct {
	locations map[mirror.TableType]map[string]map[string]struct{}
}

func newSourceLocationMap() *SourceLocationMap {
	return &SourceLocationMap{locations: make(map[mirror.TableType]map[string]map[string]struct{})}
}

// AddTableLocation records that table keeps data under location.
func (s *SourceLocationMap) AddTableLocation(table string, tt mirror.TableType, location string) {
	byLocation, ok := s.locations[tt]
	if !ok {
		byLocation = make(map[string]map[string]struct{})
		s.locations[tt] = byLocation
	}

	tables, ok := byLocation[location]
	if !ok {
		tables = make(map[string]struct{})
		byLocation[location] = tables
	}
	tables[table] = struct{}{}
}

// Locations returns the sorted reduced locations recorded for tt.
func (s *SourceLocationMap) Locations(tt mirror.TableType) []string {
	out := make([]string, 0, len(s.locations[tt]))
	for loc := range s.locations[tt] {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// Tables returns the sorted table names recorded under location for tt.
func (s *SourceLocationMap) Tables(tt mirror.TableType, location string) []string {
	tables := s.locations[tt][location]
	out := make([]string, 0, len(tables))
	for t := range tables {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TableTypes returns the table types that have locations, in a stable order.
func (s *SourceLocationMap) TableTypes() []mirror.TableType {
	var out []mirror.TableType
	for _, tt := range []mirror.TableType{mirror.ExternalTable, mirror.ManagedTable} {
		if len(s.locations[tt]) > 0 {
			out = append(out, tt)
		}
	}
	return out
}

func (s *SourceLocationMap) clone() *SourceLocationMap {
	c := newSourceLocationMap()
	for tt, byLocation := range s.locations {
		for loc, tables := range byLocation {
			for t := range tables {
				c.AddTableLocation(t, tt, loc)
			}
		}
	}
	return c
}
