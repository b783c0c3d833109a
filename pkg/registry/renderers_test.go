package registry_test

import (
	"testing"

	"github.com/arthur-debert/memscope/pkg/errors"
	"github.com/arthur-debert/memscope/pkg/registry"
	"github.com/arthur-debert/memscope/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedRenderer struct{ name string }

func (n *namedRenderer) Name() string { return n.name }

func factory(name string) registry.RendererFactory {
	return func() registry.Renderer { return &namedRenderer{name: name} }
}

func newTestRenderers(t *testing.T) *registry.Renderers {
	t.Helper()
	reg := registry.NewRenderers()
	require.NoError(t, reg.DeclareBackend("TextRenderer"))
	require.NoError(t, reg.DeclareBackend("TestRenderer", "TextRenderer"))
	require.NoError(t, reg.DeclareBackend("JsonRenderer"))
	require.NoError(t, reg.DeclareBackend("DataExportRenderer", "JsonRenderer"))

	reg.MustRegister([]string{types.BaseType}, []string{"TextRenderer"}, factory("text-default"))
	reg.MustRegister([]string{types.BaseType}, []string{"JsonRenderer"}, factory("json-default"))
	reg.MustRegister([]string{"kuid_t", "kgid_t"}, []string{"TextRenderer", "TestRenderer"}, factory("kuid-text"))
	reg.MustRegister([]string{"kuid_t", "kgid_t"}, []string{"JsonRenderer", "DataExportRenderer"}, factory("kuid-json"))
	reg.MustRegister([]string{"Struct"}, []string{"TextRenderer"}, factory("struct-text"))
	return reg
}

func TestResolveMostSpecificWins(t *testing.T) {
	reg := newTestRenderers(t)

	tests := []struct {
		name    string
		chain   types.TypeChain
		backend string
		want    string
	}{
		{"exact type", types.TypeChain{"kuid_t", "Struct"}, "TextRenderer", "kuid-text"},
		{"second type of a binding", types.TypeChain{"kgid_t", "Struct"}, "JsonRenderer", "kuid-json"},
		{"supertype fallback", types.TypeChain{"_EPROCESS", "Struct"}, "TextRenderer", "struct-text"},
		{"default fallback", types.TypeChain{"_EPROCESS", "Struct"}, "JsonRenderer", "json-default"},
		{"empty chain uses default", nil, "TextRenderer", "text-default"},
		{"alias uses own binding", types.TypeChain{"kuid_t"}, "TestRenderer", "kuid-text"},
		{"alias falls back to answered backend", types.TypeChain{"_EPROCESS", "Struct"}, "TestRenderer", "struct-text"},
		{"export answers to json", types.TypeChain{"Pointer"}, "DataExportRenderer", "json-default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := reg.Resolve(tt.chain, tt.backend)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Name())
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	reg := newTestRenderers(t)

	first, err := reg.Resolve(types.TypeChain{"kuid_t"}, "TextRenderer")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := reg.Resolve(types.TypeChain{"kuid_t"}, "TextRenderer")
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
}

func TestResolveSpecificityBeatsBackendAlias(t *testing.T) {
	reg := newTestRenderers(t)
	// A type binding on the aliased backend outranks a default on the backend's own name.
	reg.MustRegister([]string{types.BaseType}, []string{"TestRenderer"}, factory("test-default"))

	r, err := reg.Resolve(types.TypeChain{"Struct"}, "TestRenderer")
	require.NoError(t, err)
	assert.Equal(t, "struct-text", r.Name())

	r, err = reg.Resolve(types.TypeChain{"Pointer"}, "TestRenderer")
	require.NoError(t, err)
	assert.Equal(t, "test-default", r.Name())
}

func TestLastRegistrationWins(t *testing.T) {
	reg := newTestRenderers(t)

	before, err := reg.Resolve(types.TypeChain{"kuid_t"}, "TextRenderer")
	require.NoError(t, err)
	assert.Equal(t, "kuid-text", before.Name())

	reg.MustRegister([]string{"kuid_t"}, []string{"TextRenderer"}, factory("plugin-kuid"))

	after, err := reg.Resolve(types.TypeChain{"kuid_t"}, "TextRenderer")
	require.NoError(t, err)
	assert.Equal(t, "plugin-kuid", after.Name())

	// kgid_t keeps the earlier binding since only kuid_t was overridden.
	other, err := reg.Resolve(types.TypeChain{"kgid_t"}, "TextRenderer")
	require.NoError(t, err)
	assert.Equal(t, "kuid-text", other.Name())

	var kuidSeqs []int
	for _, b := range reg.Bindings() {
		if b.Type == "kuid_t" && b.Backend == "TextRenderer" {
			kuidSeqs = append(kuidSeqs, b.Seq)
			assert.Equal(t, "plugin-kuid", b.Renderer)
		}
	}
	assert.Len(t, kuidSeqs, 1)
}

func TestResolveWithoutDefaultIsConfigurationError(t *testing.T) {
	reg := newTestRenderers(t)

	_, err := reg.Resolve(types.TypeChain{"kuid_t"}, "XmlRenderer")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
	assert.False(t, errors.IsRecoverable(err))
}

func TestLookupIsExact(t *testing.T) {
	reg := newTestRenderers(t)

	r, ok := reg.Lookup("kuid_t", "DataExportRenderer")
	require.True(t, ok)
	assert.Equal(t, "kuid-json", r.Name())

	_, ok = reg.Lookup("_EPROCESS", "JsonRenderer")
	assert.False(t, ok, "Lookup must not walk to the default binding")
}

func TestSealedRegistryRejectsRegistration(t *testing.T) {
	reg := newTestRenderers(t)
	reg.Seal()

	assert.True(t, reg.Sealed())
	err := reg.Register([]string{"kuid_t"}, []string{"TextRenderer"}, factory("late"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
	assert.True(t, errors.IsErrorCode(reg.DeclareBackend("Late"), errors.ErrConfiguration))

	r, err := reg.Resolve(types.TypeChain{"kuid_t"}, "TextRenderer")
	require.NoError(t, err)
	assert.Equal(t, "kuid-text", r.Name())
}

func TestRegisterValidation(t *testing.T) {
	reg := registry.NewRenderers()

	assert.True(t, errors.IsErrorCode(reg.Register(nil, []string{"TextRenderer"}, factory("x")), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(reg.Register([]string{"a"}, nil, factory("x")), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(reg.Register([]string{"a"}, []string{"b"}, nil), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(reg.DeclareBackend(""), errors.ErrInvalidInput))
}

func TestRejectedRegistrationLeavesBindingsUntouched(t *testing.T) {
	tests := []struct {
		name     string
		types    []string
		backends []string
	}{
		{"empty type after valid one", []string{"kuid_t", ""}, []string{"TextRenderer"}},
		{"empty backend after valid one", []string{"kuid_t"}, []string{"TextRenderer", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRenderers(t)
			before := reg.Bindings()

			r, err := reg.Resolve(types.TypeChain{"kuid_t"}, "TextRenderer")
			require.NoError(t, err)
			require.Equal(t, "kuid-text", r.Name())

			err = reg.Register(tt.types, tt.backends, factory("rejected"))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

			r, err = reg.Resolve(types.TypeChain{"kuid_t"}, "TextRenderer")
			require.NoError(t, err)
			assert.Equal(t, "kuid-text", r.Name())

			looked, ok := reg.Lookup("kuid_t", "TextRenderer")
			require.True(t, ok)
			assert.Equal(t, "kuid-text", looked.Name())
			assert.Equal(t, before, reg.Bindings())
		})
	}
}

func TestAnswersTo(t *testing.T) {
	reg := newTestRenderers(t)

	assert.Equal(t, []string{"TestRenderer", "TextRenderer"}, reg.AnswersTo("TestRenderer"))
	assert.Equal(t, []string{"Undeclared"}, reg.AnswersTo("Undeclared"))
}
