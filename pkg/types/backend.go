package types

// Backend names. Renderers are bound per backend name; a backend may also
// answer to the names of the families it belongs to.
const (
	TextBackend       = "TextRenderer"
	TestBackend       = "TestRenderer"
	WideTextBackend   = "WideTextRenderer"
	TerminalBackend   = "TerminalRenderer"
	JSONBackend       = "JsonRenderer"
	DataExportBackend = "DataExportRenderer"
	YAMLBackend       = "YamlRenderer"
	XMLBackend        = "XmlRenderer"
	SQLiteBackend     = "SqliteRenderer"
)

// Family is the kind of value a backend consumes per column.
type Family int

const (
	// FamilyText backends consume display cells.
	FamilyText Family = iota
	// FamilyStructured backends consume safe encoded values.
	FamilyStructured
)

func (f Family) String() string {
	if f == FamilyStructured {
		return "structured"
	}
	return "text"
}
