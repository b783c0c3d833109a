package renderers

import (
	"github.com/arthur-debert/memscope/pkg/objects"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/types"
)

// Process and thread struct names that get summary renderers.
const (
	ProcessType = "_EPROCESS"
	ThreadType  = "_ETHREAD"
)

// backendFamilies lists every built-in backend with the names it answers to
// after its own, in priority order.
var backendFamilies = []struct {
	name      string
	answersTo []string
}{
	{types.TextBackend, nil},
	{types.TestBackend, []string{types.TextBackend}},
	{types.WideTextBackend, []string{types.TextBackend}},
	{types.TerminalBackend, []string{types.TextBackend}},
	{types.JSONBackend, nil},
	{types.DataExportBackend, []string{types.JSONBackend}},
	{types.YAMLBackend, []string{types.DataExportBackend, types.JSONBackend}},
	{types.XMLBackend, []string{types.DataExportBackend, types.JSONBackend}},
	{types.SQLiteBackend, []string{types.DataExportBackend, types.JSONBackend}},
}

// FamilyOf returns the family a built-in backend belongs to.
func FamilyOf(reg *registry.Renderers, backend string) types.Family {
	for _, name := range reg.AnswersTo(backend) {
		if name == types.JSONBackend {
			return types.FamilyStructured
		}
	}
	return types.FamilyText
}

func factory[R registry.Renderer](r R) registry.RendererFactory {
	return func() registry.Renderer { return r }
}

// RegisterBuiltins declares the built-in backends and binds their renderers.
// It must run before reg is sealed.
func RegisterBuiltins(reg *registry.Renderers) error {
	for _, b := range backendFamilies {
		if err := reg.DeclareBackend(b.name, b.answersTo...); err != nil {
			return err
		}
	}

	text := []string{types.TextBackend}
	structured := []string{types.JSONBackend}

	bindings := []struct {
		typeNames []string
		backends  []string
		factory   registry.RendererFactory
	}{
		{[]string{types.BaseType}, text, factory(baseText{})},
		{[]string{objects.NoneType}, text, factory(noneText{})},
		{[]string{objects.KuidType, objects.KgidType}, text, factory(idText{})},
		{[]string{objects.PointerType, objects.AddressType}, text, factory(addressText{})},
		{[]string{objects.UnixTimeStampType}, text, factory(timestampText{})},
		{[]string{ProcessType}, text, factory(processText{})},
		{[]string{ThreadType}, text, factory(threadText{})},
		{[]string{objects.XenM2PType}, text, factory(mapperText{})},

		{[]string{types.BaseType}, structured, factory(baseJSON{})},
		{[]string{objects.NoneType}, structured, factory(noneJSON{})},
		{[]string{objects.KuidType, objects.KgidType}, structured, factory(idJSON{})},
		{[]string{objects.PointerType, objects.AddressType}, structured, factory(addressJSON{})},
		// WinFileTime is bound explicitly so its recorded chain decodes.
		{[]string{objects.UnixTimeStampType, objects.WinFileTimeType}, structured, factory(timestampJSON{})},
		{[]string{ProcessType}, structured, factory(processJSON{})},
		{[]string{ThreadType}, structured, factory(threadJSON{})},
		{[]string{objects.XenM2PType}, structured, factory(mapperJSON{})},
	}

	for _, b := range bindings {
		if err := reg.Register(b.typeNames, b.backends, b.factory); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with the built-ins registered, not sealed.
func NewRegistry() (*registry.Renderers, error) {
	reg := registry.NewRenderers()
	if err := RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
