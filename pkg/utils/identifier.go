package utils

import "strings"

// BacktickIdentifier quotes a Hive table or database name. Each part of a
// qualified name is quoted on its own; parts that are already quoted are kept.
//
//	orders        -> `orders`
//	sales.orders  -> `sales`.`orders`
//	`odd.name`    -> `odd.name`
func BacktickIdentifier(name string) string {
	if name == "" || isQuoted(name) {
		return name
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if !isQuoted(part) {
			parts[i] = "`" + part + "`"
		}
	}

	return strings.Join(parts, ".")
}

// isQuoted reports whether s is one backticked identifier, dots included.
func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' && !strings.Contains(s[1:len(s)-1], "`")
}
