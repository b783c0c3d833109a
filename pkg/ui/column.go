package ui

import (
	"strconv"
	"strings"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/render"
	"github.com/arthur-debert/memscope/pkg/types"
)

// ParseColumnSpec builds a column from a compact format spec:
//
//	"[addrpad]"  zero padded address, address width
//	"[addr]"     hex address
//	">6"         right aligned, width 6
//	"<30"        left aligned, width 30
//	"^8"         centered, width 8
//	"30"         width 30
//
// An empty spec yields a column sized to its content.
func ParseColumnSpec(name, cname, spec string) (types.Column, error) {
	col := types.Column{Name: name, CName: cname}
	spec = strings.TrimSpace(spec)

	switch spec {
	case "":
		return col, nil
	case types.FormatAddressPad:
		col.Format = types.FormatAddressPad
		col.Width = render.AddrPadWidth
		col.Align = types.AlignRight
		return col, nil
	case types.FormatAddress:
		col.Format = types.FormatAddress
		col.Align = types.AlignRight
		return col, nil
	}

	rest := spec
	switch rest[0] {
	case '>':
		col.Align, rest = types.AlignRight, rest[1:]
	case '<':
		col.Align, rest = types.AlignLeft, rest[1:]
	case '^':
		col.Align, rest = types.AlignCenter, rest[1:]
	}
	if rest == "" {
		return col, nil
	}
	width, err := strconv.Atoi(rest)
	if err != nil || width < 0 {
		return types.Column{}, errors.Newf(errors.ErrInvalidInput, "invalid column spec %q for %s", spec, name)
	}
	col.Width = width
	return col, nil
}

// MustColumn is ParseColumnSpec for specs known at compile time.
func MustColumn(name, cname, spec string) types.Column {
	col, err := ParseColumnSpec(name, cname, spec)
	if err != nil {
		panic(err.Error())
	}
	return col
}
