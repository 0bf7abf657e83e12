package parser

// Property represents a quoted key with an optional quoted value and the
// separator that closed the entry: "," between entries, ")" after the last.
type Property struct {
	Key        string  `parser:"@String"`
	Value      *string `parser:"('=' @String)?"`
	Terminator string  `parser:"@(',' | ')')?"`
}

// Name returns the unquoted property key.
func (p *Property) Name() string {
	return unquote(p.Key)
}

// Val returns the unquoted property value, or "" for a bare key.
func (p *Property) Val() string {
	if p.Value == nil {
		return ""
	}

	return unquote(*p.Value)
}

// Closes reports whether the entry is the last one in its property list.
func (p *Property) Closes() bool {
	return p.Terminator == ")"
}
