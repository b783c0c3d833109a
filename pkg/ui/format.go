package ui

import (
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format represents the output format type
type Format int

const (
	// FormatAuto automatically detects the appropriate format based on terminal capabilities
	FormatAuto Format = iota
	// FormatTerminal renders styled tables for a color terminal
	FormatTerminal
	// FormatText renders plain aligned tables
	FormatText
	// FormatTest renders plain tables without trailing padding
	FormatTest
	// FormatWide renders one "name: value" line per column
	FormatWide
	// FormatJSON renders a JSON Lines statement stream
	FormatJSON
	// FormatExport renders rows only, one JSON object per line
	FormatExport
	// FormatYAML renders one YAML document per table
	FormatYAML
	// FormatXML renders a single XML document
	FormatXML
	// FormatSQLite writes tables into a SQLite database
	FormatSQLite
)

var formatNames = map[Format]string{
	FormatAuto:     "auto",
	FormatTerminal: "term",
	FormatText:     "text",
	FormatTest:     "test",
	FormatWide:     "wide",
	FormatJSON:     "json",
	FormatExport:   "export",
	FormatYAML:     "yaml",
	FormatXML:      "xml",
	FormatSQLite:   "sqlite",
}

var formatAliases = map[string]Format{
	"":         FormatAuto,
	"terminal": FormatTerminal,
	"plain":    FormatText,
	"jsonl":    FormatJSON,
	"data":     FormatExport,
	"yml":      FormatYAML,
	"db":       FormatSQLite,
}

// formats indexes every accepted name, for lookups and suggestions.
var formats = func() registry.Registry[Format] {
	reg := registry.New[Format]()
	for f, name := range formatNames {
		registry.MustRegister(reg, name, f)
	}
	for alias, f := range formatAliases {
		if alias != "" {
			registry.MustRegister(reg, alias, f)
		}
	}
	return reg
}()

// String returns the string representation of the format
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FormatNames returns the canonical format names in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(formatNames))
	for _, name := range formatNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFormat parses a string into a Format value
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	f, err := formats.Get(name)
	if err != nil {
		msErr := errors.Newf(errors.ErrInvalidInput, "unknown format: %s", s).
			WithDetail("formats", FormatNames())
		if suggestion, ok := formats.Suggest(name); ok {
			msErr = errors.Newf(errors.ErrInvalidInput, "unknown format: %s (did you mean %q?)", s, suggestion).
				WithDetail("suggestion", suggestion)
		}
		return FormatAuto, msErr
	}
	return f, nil
}

// ParseFormats parses repeated and comma separated format flags. Duplicates
// are dropped; no formats at all means FormatAuto.
func ParseFormats(values []string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		out = []Format{FormatAuto}
	}
	return out, nil
}

// DetectFormat determines the appropriate output format based on environment and terminal capabilities
func DetectFormat(output *os.File) Format {
	// Check if NO_COLOR is set
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}

	// Check if we're being piped or redirected
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}

	// Check terminal color support
	colorProfile := termenv.ColorProfile()
	if colorProfile == termenv.Ascii {
		return FormatText
	}

	// Terminal supports colors
	return FormatTerminal
}
