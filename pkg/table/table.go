package table

import (
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/cloudera-labs/hms-mirror/pkg/consts"
	"github.com/cloudera-labs/hms-mirror/pkg/parser"
	"github.com/cloudera-labs/hms-mirror/pkg/utils"
	log "github.com/sirupsen/logrus"
)

// Clause markers as they appear on their own line in SHOW CREATE TABLE output.
const (
	Location          = "LOCATION"
	PartitionedBy     = "PARTITIONED BY"
	ClusteredBy       = "CLUSTERED BY"
	Buckets           = "BUCKETS"
	Into              = "INTO"
	TblProperties     = "TBLPROPERTIES ("
	WithSerdeProps    = "WITH SERDEPROPERTIES ("
	serdePathProperty = "path"
)

// Clone returns a copy of def that can be modified freely.
func Clone(def []string) []string {
	return slices.Clone(def)
}

// Header parses the CREATE line of def and returns it with its index, or nil
// and -1 when def has no parseable CREATE line.
func Header(def []string) (*parser.CreateHeader, int) {
	for i, line := range def {
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "CREATE") {
			continue
		}

		h, err := parser.ParseCreateHeader(strings.TrimSpace(line))
		if err != nil {
			log.WithError(err).Debug("Unable to parse definition header")
			return nil, -1
		}

		return h, i
	}

	return nil, -1
}

// Name returns the unqualified table name declared by def.
func Name(def []string) string {
	if h, _ := Header(def); h != nil {
		return h.Name.Table()
	}

	return ""
}

// IsView reports whether def creates a view.
func IsView(def []string) bool {
	h, _ := Header(def)
	return h != nil && h.IsView()
}

// IsExternal reports whether def creates an EXTERNAL table.
func IsExternal(def []string) bool {
	h, _ := Header(def)
	return h != nil && !h.IsView() && h.External
}

// IsManaged reports whether def creates a table without the EXTERNAL keyword.
func IsManaged(def []string) bool {
	h, _ := Header(def)
	return h != nil && h.IsManaged()
}

// IsACID reports whether def is a managed table with 'transactional'='true'.
func IsACID(def []string) bool {
	return IsManaged(def) && boolProperty(def, consts.PropTransactional)
}

// IsExternalPurge reports whether def is an external table that owns its data.
func IsExternalPurge(def []string) bool {
	return IsExternal(def) && boolProperty(def, consts.PropExternalTablePurge)
}

// IsConverted reports whether a previous run converted def from managed to
// external.
func IsConverted(def []string) bool {
	return boolProperty(def, consts.PropConvertedFlag)
}

// IsLegacyManagedFlagged reports whether def carries the legacy managed marker
// written during a conversion.
func IsLegacyManagedFlagged(def []string) bool {
	return boolProperty(def, consts.PropLegacyManagedFlag)
}

// IsHiveNative reports whether def stores its data in a filesystem location
// rather than through a storage handler such as HBase or Kafka.
func IsHiveNative(def []string) bool {
	return lineIndex(def, Location) >= 0
}

// IsPartitioned reports whether def declares a PARTITIONED BY clause.
func IsPartitioned(def []string) bool {
	for _, line := range def {
		if strings.HasPrefix(strings.TrimSpace(line), PartitionedBy) {
			return true
		}
	}

	return false
}

// GetLocation returns the unquoted value of the LOCATION clause, or "".
func GetLocation(def []string) string {
	idx := lineIndex(def, Location)
	if idx < 0 || idx+1 >= len(def) {
		return ""
	}

	return strings.ReplaceAll(strings.TrimSpace(def[idx+1]), "'", "")
}

// SerdePath returns the 'path' serde property, which Spark writes alongside
// LOCATION, or "".
func SerdePath(def []string) string {
	idx := lineIndex(def, WithSerdeProps)
	if idx < 0 {
		return ""
	}

	for i := idx + 1; i < len(def); i++ {
		prop, err := parser.ParseProperty(def[i])
		if err != nil {
			return ""
		}
		if prop.Name() == serdePathProperty {
			return prop.Val()
		}
		if prop.Closes() {
			break
		}
	}

	return ""
}

// SetLocation rewrites the LOCATION clause and the serde 'path' property. It
// returns false when def has no LOCATION clause.
func SetLocation(def []string, location string) bool {
	location = strings.ReplaceAll(location, "'", "")
	updated := false
	if idx := lineIndex(def, Location); idx >= 0 && idx+1 < len(def) {
		def[idx+1] = "  '" + location + "'"
		updated = true
	}

	if idx := lineIndex(def, WithSerdeProps); idx >= 0 {
		for i := idx + 1; i < len(def); i++ {
			prop, err := parser.ParseProperty(def[i])
			if err != nil {
				break
			}
			if prop.Name() == serdePathProperty {
				def[i] = renderProperty(serdePathProperty, location, prop.Terminator)
				break
			}
			if prop.Closes() {
				break
			}
		}
	}

	return updated
}

// StripLocation removes the LOCATION clause.
func StripLocation(def []string) []string {
	idx := lineIndex(def, Location)
	if idx < 0 {
		return def
	}

	end := min(idx+2, len(def))
	return slices.Delete(def, idx, end)
}

// StripDatabase removes the database qualifier from the CREATE line.
func StripDatabase(def []string) []string {
	return rewriteHeader(def, func(h *parser.CreateHeader) string {
		return h.Lead() + utils.BacktickIdentifier(h.Name.Table()) + h.Tail()
	})
}

// Rename changes the table name on the CREATE line, keeping any qualifier.
func Rename(def []string, name string) []string {
	return rewriteHeader(def, func(h *parser.CreateHeader) string {
		qualified := name
		if db := h.Name.Database(); db != "" {
			qualified = db + "." + name
		}
		return h.Lead() + utils.BacktickIdentifier(qualified) + h.Tail()
	})
}

// MakeExternal converts a managed table definition into an external one and
// drops the transactional properties an external table cannot carry. It
// returns false when def was not a managed table.
func MakeExternal(def []string) ([]string, bool) {
	h, idx := Header(def)
	if h == nil || !h.IsManaged() {
		return def, false
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if h.Temporary {
		b.WriteString("TEMPORARY ")
	}
	b.WriteString("EXTERNAL TABLE ")
	if h.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	def[idx] = b.String() + h.Name.Raw() + h.Tail()

	return MakeNonTransactional(def), true
}

// MakeNonTransactional removes the transactional table properties.
func MakeNonTransactional(def []string) []string {
	def = RemoveProperty(def, consts.PropTransactional)
	def = RemoveProperty(def, consts.PropTransactionalProps)
	return RemoveProperty(def, consts.PropBucketingVersion)
}

// BucketCount returns the n from an INTO n BUCKETS clause, or 0.
func BucketCount(def []string) int {
	for _, line := range def {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == Into && fields[2] == Buckets {
			n, err := strconv.Atoi(fields[1])
			if err == nil {
				return n
			}
		}
	}

	return 0
}

// RemoveBuckets drops the CLUSTERED BY ... INTO n BUCKETS clause when
// 0 < n <= threshold. Counts above the threshold are intentional and kept.
func RemoveBuckets(def []string, threshold int) ([]string, bool) {
	n := BucketCount(def)
	if n <= 0 || n > threshold {
		return def, false
	}

	start := -1
	for i, line := range def {
		trimmed := strings.TrimSpace(line)
		if start < 0 && strings.HasPrefix(trimmed, ClusteredBy) {
			start = i
		}
		if start >= 0 && strings.Contains(trimmed, Buckets) {
			return slices.Delete(def, start, i+1), true
		}
	}

	return def, false
}

// PartitionColumns returns the partition column names of def, comma
// separated and backticked as declared.
func PartitionColumns(def []string) string {
	idx := -1
	for i, line := range def {
		if strings.HasPrefix(strings.TrimSpace(line), PartitionedBy) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}

	var columns []string
	for i := idx + 1; i < len(def); i++ {
		line := strings.TrimSpace(def[i])
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		columns = append(columns, fields[0])
		if strings.HasSuffix(line, ")") {
			break
		}
	}

	return strings.Join(columns, ",")
}

// NameMatchesDirectory reports whether the last directory of the table
// location equals the table name.
func NameMatchesDirectory(def []string) bool {
	location := GetLocation(def)
	if location == "" {
		return true
	}

	return utils.LastDirectory(location) == Name(def)
}

// Fingerprint returns an order-independent digest of the structural lines of
// def: everything after the CREATE line up to LOCATION or TBLPROPERTIES.
// Trailing separators and closing parentheses are ignored so reordered columns
// compare equal.
func Fingerprint(def []string) string {
	_, idx := Header(def)
	var lines []string
	for i := idx + 1; i < len(def); i++ {
		line := strings.TrimSpace(def[i])
		if line == Location || line == TblProperties {
			break
		}
		line = strings.TrimRight(line, ", )")
		if line != "" {
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)

	sum := sha1.Sum([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// Fix repairs the separators of the TBLPROPERTIES block after entries were
// added or removed: the final entry closes the list and no entry dangles a
// comma before the closing parenthesis.
func Fix(def []string) []string {
	idx := lineIndex(def, TblProperties)
	if idx < 0 || len(def) == idx+1 {
		return def
	}

	last := len(def) - 1
	if strings.TrimSpace(def[last]) == ")" && last-1 > idx {
		def[last-1] = strings.TrimRight(strings.TrimRight(def[last-1], " "), ",")
		return def
	}

	trimmed := strings.TrimRight(def[last], " ")
	if strings.HasSuffix(trimmed, ",") {
		def[last] = strings.TrimSuffix(trimmed, ",") + ")"
	}

	return def
}

func rewriteHeader(def []string, render func(*parser.CreateHeader) string) []string {
	h, idx := Header(def)
	if h == nil {
		return def
	}

	def[idx] = render(h)
	return def
}

func lineIndex(def []string, marker string) int {
	for i, line := range def {
		if strings.TrimSpace(line) == strings.TrimSpace(marker) {
			return i
		}
	}

	return -1
}
