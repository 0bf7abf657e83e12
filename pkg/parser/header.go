package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

type (
	// CreateHeader represents the opening line of a Hive definition.
	// Syntax: CREATE [TEMPORARY] [EXTERNAL] [MATERIALIZED] TABLE|VIEW [IF NOT EXISTS] [db.]name ...
	CreateHeader struct {
		Temporary    bool        `parser:"'CREATE' @'TEMPORARY'?"`
		External     bool        `parser:"@'EXTERNAL'?"`
		Materialized bool        `parser:"@'MATERIALIZED'?"`
		Kind         string      `parser:"@('TABLE' | 'VIEW')"`
		IfNotExists  bool        `parser:"@('IF' 'NOT' 'EXISTS')?"`
		Name         *ObjectName `parser:"@@"`

		lead string
		tail string
	}

	// ObjectName is a possibly qualified identifier exactly as written. Hive
	// emits both `db`.`tbl` and `db.tbl`, so the parts keep their backticks.
	ObjectName struct {
		Pos   lexer.Position
		Parts []string `parser:"@(BacktickIdent | Ident) ('.' @(BacktickIdent | Ident))*"`
	}
)

// IsView reports whether the header creates a view.
func (h *CreateHeader) IsView() bool {
	return strings.EqualFold(h.Kind, "VIEW")
}

// IsManaged reports whether the header creates a table without the EXTERNAL
// keyword.
func (h *CreateHeader) IsManaged() bool {
	return !h.IsView() && !h.External
}

// Lead returns the text preceding the object name, e.g. "CREATE EXTERNAL TABLE ".
func (h *CreateHeader) Lead() string {
	return h.lead
}

// Tail returns the text following the object name.
func (h *CreateHeader) Tail() string {
	return h.tail
}

// Raw returns the name as written in the definition.
func (n *ObjectName) Raw() string {
	return strings.Join(n.Parts, ".")
}

// Database returns the database qualifier, or "" when the name is unqualified.
func (n *ObjectName) Database() string {
	db, _ := n.split()
	return db
}

// Table returns the unqualified object name.
func (n *ObjectName) Table() string {
	_, tbl := n.split()
	return tbl
}

func (n *ObjectName) split() (string, string) {
	name := strings.ReplaceAll(n.Raw(), "`", "")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[:idx], name[idx+1:]
	}

	return "", name
}
