package image

import (
	"encoding/hex"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/resolver"
	"gopkg.in/yaml.v3"
)

// snapshot is the on-disk layout.
type snapshot struct {
	Profile       string              `yaml:"profile"`
	Types         map[string][]string `yaml:"types"`
	ProcessHead   uint64              `yaml:"process_head"`
	KernelModules []resolver.Module   `yaml:"kernel_modules"`
	Structs       []structSpec        `yaml:"structs"`
	AddressSpaces []AddressSpace      `yaml:"address_spaces"`
}

type structSpec struct {
	Offset uint64               `yaml:"offset"`
	Type   string               `yaml:"type"`
	Fields map[string]yaml.Node `yaml:"fields"`
}

// AddressSpace is the memory layout of one process. PID 0 is the kernel.
type AddressSpace struct {
	PID     uint64            `yaml:"pid"`
	Modules []resolver.Module `yaml:"modules"`
	Ranges  []Range           `yaml:"ranges"`
}

// Range is a mapped run of virtual memory.
type Range struct {
	Virtual  uint64 `yaml:"virtual"`
	Physical uint64 `yaml:"physical"`
	Size     uint64 `yaml:"size"`
	// Data is the hex encoded content; missing bytes read as zero.
	Data string `yaml:"data"`
}

// Bytes returns the range content, zero filled to Size.
func (r Range) Bytes() ([]byte, error) {
	raw, err := hex.DecodeString(r.Data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrImageLoad, "range %#x has invalid data", r.Virtual)
	}
	if uint64(len(raw)) > r.Size {
		return nil, errors.Newf(errors.ErrImageLoad, "range %#x holds %d bytes but is %d long",
			r.Virtual, len(raw), r.Size)
	}
	out := make([]byte, r.Size)
	copy(out, raw)
	return out, nil
}

// typedField is a tagged field value. Exactly one tag is set.
type typedField struct {
	Ptr      *uint64              `yaml:"ptr"`
	Target   string               `yaml:"type"`
	Addr     *uint64              `yaml:"addr"`
	Kuid     *uint32              `yaml:"kuid_t"`
	Kgid     *uint32              `yaml:"kgid_t"`
	UnixTime *int64               `yaml:"unix_time"`
	WinTime  *int64               `yaml:"win_time"`
	Struct   string               `yaml:"struct"`
	Fields   map[string]yaml.Node `yaml:"fields"`
	M2P      map[uint64]uint64    `yaml:"m2p"`
}

var tags = map[string]bool{
	"ptr": true, "addr": true, "kuid_t": true, "kgid_t": true,
	"unix_time": true, "win_time": true, "struct": true, "m2p": true,
}

// decodeValue turns a field node into the object it describes.
func (img *Image) decodeValue(node *yaml.Node, offset uint64) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return img.decodeValue(node.Alias, offset)
	case yaml.ScalarNode:
		return decodeScalar(node)
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := img.decodeValue(item, offset)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		if isTagged(node) {
			return img.decodeTagged(node, offset)
		}
		dict := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := img.decodeValue(node.Content[i+1], offset)
			if err != nil {
				return nil, err
			}
			dict[node.Content[i].Value] = v
		}
		return dict, nil
	default:
		return nil, errors.Newf(errors.ErrImageLoad, "line %d: unsupported value", node.Line)
	}
}

func decodeScalar(node *yaml.Node) (any, error) {
	var err error
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err = node.Decode(&b); err == nil {
			return b, nil
		}
	case "!!int":
		var i int64
		if err = node.Decode(&i); err == nil {
			return i, nil
		}
		var u uint64
		if err = node.Decode(&u); err == nil {
			return u, nil
		}
	case "!!float":
		var f float64
		if err = node.Decode(&f); err == nil {
			return f, nil
		}
	default:
		return node.Value, nil
	}
	return nil, errors.Wrapf(err, errors.ErrImageLoad, "line %d: invalid %s", node.Line, node.ShortTag())
}

func isTagged(node *yaml.Node) bool {
	for i := 0; i < len(node.Content); i += 2 {
		if tags[node.Content[i].Value] {
			return true
		}
	}
	return false
}

func (img *Image) decodeTagged(node *yaml.Node, offset uint64) (any, error) {
	var f typedField
	if err := node.Decode(&f); err != nil {
		return nil, errors.Wrapf(err, errors.ErrImageLoad, "line %d: invalid typed value", node.Line)
	}

	switch {
	case f.Ptr != nil:
		return objects.Pointer{Target: f.Target, Addr: *f.Ptr}, nil
	case f.Addr != nil:
		return objects.Address(*f.Addr), nil
	case f.Kuid != nil:
		return objects.Kuid(*f.Kuid), nil
	case f.Kgid != nil:
		return objects.Kgid(*f.Kgid), nil
	case f.UnixTime != nil:
		return objects.NewUnixTimeStamp(*f.UnixTime), nil
	case f.WinTime != nil:
		return objects.NewWinFileTime(*f.WinTime), nil
	case f.M2P != nil:
		return objects.NewXenM2PMapper(f.M2P, nil), nil
	case f.Struct != "":
		// Embedded structs share the offset of their parent.
		return img.newStruct(f.Struct, offset, f.Fields)
	default:
		return nil, errors.Newf(errors.ErrImageLoad, "line %d: typed value has no usable tag", node.Line)
	}
}
