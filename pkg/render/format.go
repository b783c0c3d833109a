package render

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/mattn/go-runewidth"
)

// AddrPadWidth is the width of a zero padded 64-bit address ("0x" plus 12
// hex digits, the canonical user/kernel address width).
const AddrPadWidth = 14

// FormatUint formats n according to a column format.
func FormatUint(n uint64, format string) string {
	switch format {
	case types.FormatAddressPad:
		return fmt.Sprintf("0x%0*x", AddrPadWidth-2, n)
	case types.FormatAddress:
		return fmt.Sprintf("%#x", n)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatInt formats n according to a column format. Negative values are
// never shown as addresses.
func FormatInt(n int64, format string) string {
	if n < 0 {
		return fmt.Sprintf("%d", n)
	}
	return FormatUint(uint64(n), format)
}

// Width returns the display width of s in terminal cells.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Pad pads s to width display cells using align. Text wider than width is
// returned unchanged.
func Pad(s string, width int, align types.Align) string {
	gap := width - Width(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case types.AlignRight:
		return strings.Repeat(" ", gap) + s
	case types.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// Truncate shortens s to at most width display cells.
func Truncate(s string, width int) string {
	if width <= 0 || Width(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}

// FormatInteger formats any Go integer, including named integer types,
// according to a column format. It reports false for non-integers.
func FormatInteger(v any, format string) (string, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FormatInt(rv.Int(), format), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return FormatUint(rv.Uint(), format), true
	default:
		return "", false
	}
}
