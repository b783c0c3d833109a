// Package xml writes tables as a single XML document.
//
// Values are written as typed elements so the document can be read back
// without a schema: every <value> and nested element carries a kind
// attribute (null, bool, int, uint, float, string, list or map).
package xml

import (
	"io"
	"sort"
	"strconv"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/beevik/etree"
)

// Value kinds.
const (
	KindNull   = "null"
	KindBool   = "bool"
	KindInt    = "int"
	KindUint   = "uint"
	KindFloat  = "float"
	KindString = "string"
	KindList   = "list"
	KindMap    = "map"
)

// Renderer builds the document in memory and writes it on Close.
type Renderer struct {
	output    io.Writer
	doc       *etree.Document
	root      *etree.Element
	container *etree.Element
	table     *etree.Element
	columns   []types.Column
}

// New creates an XML renderer.
func New(output io.Writer) *Renderer {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("memscope")
	return &Renderer{output: output, doc: doc, root: root, container: root}
}

// Name implements ui.Backend.
func (r *Renderer) Name() string { return types.XMLBackend }

// BeginTable adds a table element with its column declarations.
func (r *Renderer) BeginTable(columns []types.Column) error {
	r.columns = columns
	r.table = r.container.CreateElement("table")
	for _, c := range columns {
		col := r.table.CreateElement("column")
		col.CreateAttr("name", c.Title())
		col.CreateAttr("cname", c.Key())
		if c.Type != "" {
			col.CreateAttr("type", c.Type)
		}
	}
	return nil
}

// WriteValues adds a row element.
func (r *Renderer) WriteValues(values []types.SafeValue) error {
	row := r.table.CreateElement("row")
	for i, v := range values {
		el := row.CreateElement("value")
		el.CreateAttr("column", r.columns[i].Key())
		if err := writeValue(el, v); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(el *etree.Element, v types.SafeValue) error {
	switch t := v.(type) {
	case nil:
		el.CreateAttr("kind", KindNull)
	case bool:
		el.CreateAttr("kind", KindBool)
		el.SetText(strconv.FormatBool(t))
	case int64:
		el.CreateAttr("kind", KindInt)
		el.SetText(strconv.FormatInt(t, 10))
	case uint64:
		el.CreateAttr("kind", KindUint)
		el.SetText(strconv.FormatUint(t, 10))
	case float64:
		el.CreateAttr("kind", KindFloat)
		el.SetText(strconv.FormatFloat(t, 'g', -1, 64))
	case string:
		el.CreateAttr("kind", KindString)
		el.SetText(t)
	case []any:
		el.CreateAttr("kind", KindList)
		for _, item := range t {
			if err := writeValue(el.CreateElement("item"), item); err != nil {
				return err
			}
		}
	case map[string]any:
		el.CreateAttr("kind", KindMap)
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entry := el.CreateElement("entry")
			entry.CreateAttr("key", k)
			if err := writeValue(entry, t[k]); err != nil {
				return err
			}
		}
	default:
		return errors.Newf(errors.ErrNotSafe, "xml: unsupported value of type %T", v)
	}
	return nil
}

// EndTable implements ui.Backend.
func (r *Renderer) EndTable() error {
	r.table, r.columns = nil, nil
	return nil
}

// FreeText adds a text element.
func (r *Renderer) FreeText(text string) error {
	r.container.CreateElement("text").SetText(text)
	return nil
}

// Section opens a section element that holds what follows.
func (r *Renderer) Section(label string) error {
	r.container = r.root.CreateElement("section")
	r.container.CreateAttr("label", label)
	return nil
}

// Close writes the document.
func (r *Renderer) Close() error {
	r.doc.Indent(2)
	_, err := r.doc.WriteTo(r.output)
	return err
}

// ReadValue converts a typed element written by the renderer back into a
// safe value.
func ReadValue(el *etree.Element) (types.SafeValue, error) {
	kind := el.SelectAttrValue("kind", KindString)
	switch kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return strconv.ParseBool(el.Text())
	case KindInt:
		return strconv.ParseInt(el.Text(), 10, 64)
	case KindUint:
		return strconv.ParseUint(el.Text(), 10, 64)
	case KindFloat:
		return strconv.ParseFloat(el.Text(), 64)
	case KindString:
		return el.Text(), nil
	case KindList:
		items := el.SelectElements("item")
		out := make([]any, len(items))
		for i, item := range items {
			v, err := ReadValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindMap:
		out := make(map[string]any)
		for _, entry := range el.SelectElements("entry") {
			v, err := ReadValue(entry)
			if err != nil {
				return nil, err
			}
			out[entry.SelectAttrValue("key", "")] = v
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "xml: unknown value kind %q", kind)
	}
}
