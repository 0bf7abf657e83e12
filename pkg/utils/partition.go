package utils

import (
	"strings"
)

// PartitionSpecToSQL converts a directory style partition spec into the form
// used inside a PARTITION clause.
//
// Example:
//
//	PartitionSpecToSQL("dt=2024-01-01/hr=01") // dt="2024-01-01",hr="01"
func PartitionSpecToSQL(spec string) string {
	elements := PartitionElements(spec)
	parts := make([]string, 0, len(elements))
	for _, e := range elements {
		parts = append(parts, e[0]+`="`+e[1]+`"`)
	}
	return strings.Join(parts, ",")
}

// PartitionElements splits a partition spec into key/value pairs. Segments
// without an '=' are returned with an empty value.
func PartitionElements(spec string) [][2]string {
	spec = strings.Trim(strings.TrimSpace(spec), "/")
	if spec == "" {
		return nil
	}

	segments := strings.Split(spec, "/")
	elements := make([][2]string, 0, len(segments))
	for _, seg := range segments {
		key, value, _ := strings.Cut(seg, "=")
		elements = append(elements, [2]string{key, value})
	}
	return elements
}

// PartitionColumns returns the comma separated partition keys of a spec.
//
// Example:
//
//	PartitionColumns("dt=2024-01-01/hr=01") // dt,hr
func PartitionColumns(spec string) string {
	elements := PartitionElements(spec)
	keys := make([]string, 0, len(elements))
	for _, e := range elements {
		keys = append(keys, e[0])
	}
	return strings.Join(keys, ",")
}

// PartitionDepth returns the number of key=value segments in a spec.
func PartitionDepth(spec string) int {
	return len(PartitionElements(spec))
}

// PartitionSpecMatchesDir reports whether the trailing segments of dir are
// exactly the segments of spec.
//
// Examples:
//   - ("part=1", "hdfs://ns/wh/db.db/tbl/part=1") -> true
//   - ("part=1", "hdfs://ns/wh/db.db/tbl/odd") -> false
func PartitionSpecMatchesDir(spec, dir string) bool {
	spec = strings.Trim(strings.TrimSpace(spec), "/")
	if spec == "" {
		return false
	}
	path := strings.TrimSuffix(StripNamespace(dir), "/")
	return strings.HasSuffix(path, "/"+spec)
}
