package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// hiveLexer tokenises single lines of Hive DDL. Other catches anything a
	// view body may contain so trailing text never fails to lex.
	hiveLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `--[^\r\n]*`},
		{Name: "String", Pattern: `'([^'\\]|\\.)*'|"([^"\\]|\\.)*"`},
		{Name: "BacktickIdent", Pattern: "`[^`]*`"},
		{Name: "Number", Pattern: `\d+(\.\d*)?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},
		{Name: "Punct", Pattern: `[(),.;=<>:\[\]*+\-/%!]`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `.`},
	})

	headerParser = participle.MustBuild[CreateHeader](
		participle.Lexer(hiveLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(3),
	)

	propertyParser = participle.MustBuild[Property](
		participle.Lexer(hiveLexer),
		participle.Elide("Comment", "Whitespace"),
	)
)

// ParseCreateHeader parses the first line of a Hive definition. Only the
// header itself is consumed; whatever follows the object name (an opening
// parenthesis, or a view body) is kept verbatim and returned by Tail.
//
// Example:
//
//	h, err := ParseCreateHeader("CREATE TABLE `db`.`tbl`(")
//	// h.Name.Database() == "db", h.Name.Table() == "tbl", h.Tail() == "("
//
// Returns an error when the line is not a CREATE TABLE or CREATE VIEW header.
func ParseCreateHeader(line string) (*CreateHeader, error) {
	header, err := headerParser.ParseString("", line, participle.AllowTrailing(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse create header %q", line)
	}

	start := header.Name.Pos.Offset
	end := start + len(header.Name.Raw())
	if start < 0 || end > len(line) {
		return nil, errors.Errorf("failed to locate object name in %q", line)
	}

	header.lead = line[:start]
	header.tail = line[end:]
	return header, nil
}

// ParseProperty parses a single TBLPROPERTIES or SERDEPROPERTIES entry such as
// 'numFiles'='3', or 'external.table.purge'='true').
func ParseProperty(line string) (*Property, error) {
	prop, err := propertyParser.ParseString("", strings.TrimSpace(line), participle.AllowTrailing(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse property %q", line)
	}

	return prop, nil
}

// unquote removes the surrounding quotes from a String token and resolves
// escaped quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return s
	}

	return strings.ReplaceAll(s[1:len(s)-1], `\`+string(q), string(q))
}
