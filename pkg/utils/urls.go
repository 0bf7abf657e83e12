package utils

import (
	"regexp"
	"strings"
)

// namespacePattern matches the protocol://authority prefix of a filesystem URL,
// e.g. hdfs://nameservice1 or s3a://bucket or hdfs://host:8020.
var namespacePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://[^/]*`)

// Namespace returns the protocol://host[:port] portion of url, or "" when the
// url has no namespace.
//
// Examples:
//   - "hdfs://left:8020/warehouse/db.db" -> "hdfs://left:8020"
//   - "/warehouse/db.db" -> ""
func Namespace(url string) string {
	return namespacePattern.FindString(strings.TrimSpace(url))
}

// StripNamespace removes the namespace from url, leaving the absolute path.
//
// Examples:
//   - "hdfs://left/warehouse/db.db/tbl" -> "/warehouse/db.db/tbl"
//   - "/warehouse/db.db/tbl" -> "/warehouse/db.db/tbl"
func StripNamespace(url string) string {
	url = strings.TrimSpace(url)
	return url[len(Namespace(url)):]
}

// ReplaceNamespace swaps the namespace of url for ns. A trailing slash on ns is
// dropped and the remaining path always starts with a slash.
//
// Example:
//
//	ReplaceNamespace("hdfs://left/warehouse/tbl", "s3a://bucket/")
//	// s3a://bucket/warehouse/tbl
func ReplaceNamespace(url, ns string) string {
	path := StripNamespace(url)
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(strings.TrimSpace(ns), "/") + path
}

// ReduceURLBy removes the last `level` directories from url. Trailing slashes
// are ignored and the namespace is never reduced.
//
// Examples:
//   - ("hdfs://ns/warehouse/db.db/tbl", 1) -> "hdfs://ns/warehouse/db.db"
//   - ("/warehouse/db.db/tbl/", 2) -> "/warehouse"
//   - ("hdfs://ns/warehouse", 3) -> "hdfs://ns"
func ReduceURLBy(url string, level int) string {
	url = strings.TrimSpace(url)
	ns := Namespace(url)
	path := strings.TrimSuffix(url[len(ns):], "/")

	for i := 0; i < level; i++ {
		idx := strings.LastIndex(path, "/")
		if idx < 0 {
			break
		}
		path = path[:idx]
	}

	return ns + path
}

// LastDirectory returns the final segment of a path.
//
// Example:
//
//	LastDirectory("hdfs://ns/warehouse/db.db/tbl/") // tbl
func LastDirectory(url string) string {
	path := strings.TrimSuffix(StripNamespace(url), "/")
	return path[strings.LastIndex(path, "/")+1:]
}

// ParentDirectory returns the path with its final segment removed.
func ParentDirectory(url string) string {
	return ReduceURLBy(url, 1)
}

// IsSubPath reports whether child equals parent or lives beneath it. Matching
// is done on whole path segments so /data/tbl2 is not under /data/tbl.
func IsSubPath(parent, child string) bool {
	parent = strings.TrimSuffix(strings.TrimSpace(parent), "/")
	child = strings.TrimSuffix(strings.TrimSpace(child), "/")
	if parent == "" {
		return false
	}
	return child == parent || strings.HasPrefix(child, parent+"/")
}

// TrimTrailingSlash normalises a directory so it carries no trailing slash.
func TrimTrailingSlash(dir string) string {
	return strings.TrimSuffix(strings.TrimSpace(dir), "/")
}

// NormalizeDir trims a directory and ensures it has a leading slash and no
// trailing slash. Blank input yields "".
func NormalizeDir(dir string) string {
	dir = TrimTrailingSlash(dir)
	if dir == "" {
		return ""
	}
	if Namespace(dir) == "" && !strings.HasPrefix(dir, "/") {
		dir = "/" + dir
	}
	return dir
}
