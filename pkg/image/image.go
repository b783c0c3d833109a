package image

import (
	"sort"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/filesystem"
	"github.com/arthur-debert/memscope/pkg/logging"
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/resolver"
	"github.com/arthur-debert/memscope/pkg/traverse"
	"github.com/arthur-debert/memscope/pkg/types"
	"gopkg.in/yaml.v3"
)

// Struct type and link field names walked by the image.
const (
	ProcessType = "_EPROCESS"
	ThreadType  = "_ETHREAD"
	ModuleType  = "_LDR_DATA_TABLE_ENTRY"

	ProcessLinks = "ActiveProcessLinks"
	ThreadHead   = "ThreadListHead"
	ThreadLinks  = "ThreadListEntry"
	ModuleHead   = "Peb.Ldr.InLoadOrderModuleList"
	ModuleLinks  = "InLoadOrderLinks"
)

// Options tunes how the image is walked.
type Options struct {
	// MaxNodes bounds every list walk; zero uses traverse.DefaultMaxNodes.
	MaxNodes int
}

// Image is a loaded snapshot. It is read-only after Load.
type Image struct {
	profile  string
	ancestry map[string]types.TypeChain
	structs  map[uint64]*objects.Struct
	head     uint64
	kernel   []resolver.Module
	spaces   map[uint64]AddressSpace
	opts     Options
}

// Load reads the snapshot at path from fsys.
func Load(fsys filesystem.FS, path string, opts Options) (*Image, error) {
	logger := logging.GetLogger("image")
	logger.Debug().Str("path", path).Msg("Loading image snapshot")
	done := logging.LogOperationStart(logger, "image.Load")
	defer done()

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrImageLoad, "cannot read image %s", path).
			WithDetail("path", path)
	}
	img, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("profile", img.profile).
		Int("structs", len(img.structs)).
		Int("addressSpaces", len(img.spaces)).
		Msg("Image snapshot loaded")
	return img, nil
}

// Parse decodes a snapshot document.
func Parse(data []byte, opts Options) (*Image, error) {
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrImageLoad, "invalid image snapshot")
	}

	img := &Image{
		profile:  snap.Profile,
		ancestry: make(map[string]types.TypeChain, len(snap.Types)),
		structs:  make(map[uint64]*objects.Struct, len(snap.Structs)),
		head:     snap.ProcessHead,
		kernel:   snap.KernelModules,
		spaces:   make(map[uint64]AddressSpace, len(snap.AddressSpaces)),
		opts:     opts,
	}
	for name, supers := range snap.Types {
		img.ancestry[name] = types.TypeChain(supers)
	}

	for _, spec := range snap.Structs {
		if spec.Type == "" {
			return nil, errors.Newf(errors.ErrImageLoad, "struct at %#x has no type", spec.Offset)
		}
		if _, dup := img.structs[spec.Offset]; dup {
			return nil, errors.Newf(errors.ErrImageLoad, "two structs at offset %#x", spec.Offset)
		}
		s, err := img.newStruct(spec.Type, spec.Offset, spec.Fields)
		if err != nil {
			return nil, err
		}
		img.structs[spec.Offset] = s
	}

	if img.head != 0 {
		if _, ok := img.structs[img.head]; !ok {
			return nil, errors.Newf(errors.ErrImageLoad, "process list head %#x is not a struct", img.head)
		}
	}

	for _, space := range snap.AddressSpaces {
		if _, dup := img.spaces[space.PID]; dup {
			return nil, errors.Newf(errors.ErrImageLoad, "duplicate address space for pid %d", space.PID)
		}
		sort.Slice(space.Ranges, func(i, k int) bool {
			return space.Ranges[i].Virtual < space.Ranges[k].Virtual
		})
		img.spaces[space.PID] = space
	}
	return img, nil
}

func (img *Image) newStruct(typeName string, offset uint64, fields map[string]yaml.Node) (*objects.Struct, error) {
	values := make(map[string]any, len(fields))
	for name, node := range fields {
		node := node
		v, err := img.decodeValue(&node, offset)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrImageLoad, "%s.%s", typeName, name).
				WithDetail("offset", offset)
		}
		values[name] = v
	}
	return objects.NewStruct(typeName, img.ancestry[typeName], offset, values, img), nil
}

// Profile names the profile the snapshot was taken with.
func (img *Image) Profile() string { return img.profile }

// Deref implements objects.Dereferencer. typeName is advisory: list heads
// and entries of different types link to each other.
func (img *Image) Deref(addr uint64, typeName string) (*objects.Struct, error) {
	s, ok := img.structs[addr]
	if !ok {
		return nil, errors.Newf(errors.ErrFieldUnavailable, "no %s mapped at %#x", typeName, addr).
			WithDetail("address", addr)
	}
	return s, nil
}

// Processes walks the active process list.
func (img *Image) Processes() ([]*objects.Struct, error) {
	if img.head == 0 {
		return nil, nil
	}
	return img.walk(img.structs[img.head], ProcessLinks, false)
}

// Threads walks the thread list of proc.
func (img *Image) Threads(proc *objects.Struct) ([]*objects.Struct, error) {
	first, err := proc.Deref(ThreadHead)
	if err != nil {
		return nil, err
	}
	return img.walk(first, ThreadLinks, true)
}

// LoadedModules walks the load order module list in the PEB of proc. An
// unreadable PEB is an ErrFieldUnavailable error.
func (img *Image) LoadedModules(proc *objects.Struct) ([]*objects.Struct, error) {
	first, err := proc.Deref(ModuleHead)
	if err != nil {
		return nil, err
	}
	return img.walk(first, ModuleLinks, true)
}

func (img *Image) walk(head *objects.Struct, field string, includeHead bool) ([]*objects.Struct, error) {
	var out []*objects.Struct
	opts := traverse.Options{MaxNodes: img.opts.MaxNodes, IncludeHead: includeHead}
	for obj, err := range traverse.Walk(head, field, opts) {
		if err != nil {
			return out, err
		}
		if s, ok := obj.(*objects.Struct); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// KernelModules implements resolver.Source.
func (img *Image) KernelModules() []resolver.Module { return img.kernel }

// ProcessModules implements resolver.Source.
func (img *Image) ProcessModules(pid uint64) []resolver.Module {
	return img.spaces[pid].Modules
}

// AddressSpace returns the address space of pid.
func (img *Image) AddressSpace(pid uint64) (AddressSpace, bool) {
	space, ok := img.spaces[pid]
	return space, ok
}
