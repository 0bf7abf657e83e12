package table

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cloudera-labs/hms-mirror/pkg/parser"
)

// GetProperty returns the value of a TBLPROPERTIES entry. Keys match
// case-insensitively.
func GetProperty(def []string, key string) (string, bool) {
	idx, ok := findProperty(def, key)
	if !ok {
		return "", false
	}

	prop, _ := parser.ParseProperty(def[idx])
	return prop.Val(), true
}

// HasProperty reports whether a TBLPROPERTIES entry for key exists.
func HasProperty(def []string, key string) bool {
	_, ok := findProperty(def, key)
	return ok
}

// UpsertProperty sets key to value, replacing an existing entry in place or
// adding a new one at the top of the TBLPROPERTIES block. A block is appended
// when def has none.
func UpsertProperty(def []string, key, value string) []string {
	if idx, ok := findProperty(def, key); ok {
		prop, _ := parser.ParseProperty(def[idx])
		def[idx] = renderProperty(key, value, prop.Terminator)
		return def
	}

	start := lineIndex(def, TblProperties)
	if start < 0 {
		return append(def, TblProperties, renderProperty(key, value, ")"))
	}

	return slices.Insert(def, start+1, renderProperty(key, value, ","))
}

// RemoveProperty deletes the entry for key. When the removed entry closed the
// block the previous entry takes over the closing parenthesis; when it was the
// only entry the whole block is removed.
func RemoveProperty(def []string, key string) []string {
	idx, ok := findProperty(def, key)
	if !ok {
		return def
	}

	prop, _ := parser.ParseProperty(def[idx])
	start := lineIndex(def, TblProperties)
	if !prop.Closes() {
		return slices.Delete(def, idx, idx+1)
	}

	if idx-1 == start {
		return slices.Delete(def, start, idx+1)
	}

	prev := strings.TrimRight(def[idx-1], " ")
	def[idx-1] = strings.TrimSuffix(prev, ",") + ")"
	return slices.Delete(def, idx, idx+1)
}

// Properties returns the TBLPROPERTIES entries of def in declaration order.
func Properties(def []string) [][2]string {
	var out [][2]string
	start := lineIndex(def, TblProperties)
	if start < 0 {
		return out
	}

	for i := start + 1; i < len(def); i++ {
		prop, err := parser.ParseProperty(def[i])
		if err != nil {
			break
		}
		out = append(out, [2]string{prop.Name(), prop.Val()})
		if prop.Closes() {
			break
		}
	}

	return out
}

func findProperty(def []string, key string) (int, bool) {
	start := lineIndex(def, TblProperties)
	if start < 0 {
		return -1, false
	}

	for i := start + 1; i < len(def); i++ {
		prop, err := parser.ParseProperty(def[i])
		if err != nil {
			return -1, false
		}
		if strings.EqualFold(prop.Name(), key) {
			return i, true
		}
		if prop.Closes() {
			break
		}
	}

	return -1, false
}

func boolProperty(def []string, key string) bool {
	value, ok := GetProperty(def, key)
	if !ok {
		return false
	}

	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

func renderProperty(key, value, terminator string) string {
	return "  '" + key + "'='" + value + "'" + terminator
}
