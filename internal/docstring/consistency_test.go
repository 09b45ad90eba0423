package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_MissingParamAndReturn(t *testing.T) {
	t.Parallel()

	sym := &Symbol{
		Kind:           KindFunction,
		Name:           "get",
		Signature:      []Param{{Name: "user_id", DeclaredType: "str"}},
		ReturnDeclared: BoolPtr(true),
	}

	warnings := Check(sym, Annotation{})
	assert.ElementsMatch(t, []Warning{MissingParamDoc("user_id"), MissingReturnDoc()}, warnings)
}

func TestCheck_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sym  *Symbol
		doc  string
		want []Warning
	}{
		{
			name: "fully documented",
			sym:  &Symbol{Signature: []Param{{Name: "user_id"}}, ReturnDeclared: BoolPtr(true)},
			doc:  findByIDDoc,
			want: nil,
		},
		{
			name: "stale documented parameter",
			sym:  &Symbol{Signature: []Param{{Name: "user_id"}}},
			doc:  "Get.\n\nArgs:\n    user_id: id\n    legacy_flag: removed\n",
			want: []Warning{UnknownParamDoc("legacy_flag")},
		},
		{
			name: "no signature means no check",
			sym:  &Symbol{},
			doc:  "Get.\n\nArgs:\n    anything: at all\n",
			want: nil,
		},
		{
			name: "empty signature flags every documented param",
			sym:  &Symbol{Signature: []Param{}},
			doc:  "Get.\n\nArgs:\n    x: value\n",
			want: []Warning{UnknownParamDoc("x")},
		},
		{
			name: "star names compare without stars",
			sym:  &Symbol{Signature: []Param{{Name: "*args"}, {Name: "**kwargs"}}},
			doc:  "Call.\n\nArgs:\n    args: positional\n    **kwargs: options\n",
			want: nil,
		},
		{
			name: "keyword args document kwargs",
			sym:  &Symbol{Signature: []Param{{Name: "**kwargs"}}},
			doc:  "Call.\n\nKeyword Args:\n    timeout: seconds\n",
			want: nil,
		},
		{
			name: "unnamed entries are ignored",
			sym:  &Symbol{Signature: []Param{{Name: "x"}}},
			doc:  "Call.\n\nArgs:\n    x: value\n    some stray prose\n",
			want: nil,
		},
		{
			name: "field tags document params and return",
			sym:  &Symbol{Signature: []Param{{Name: "user_id"}}, ReturnDeclared: BoolPtr(true)},
			doc:  "Get.\n\n:param user_id: id\n:rtype: int\n",
			want: nil,
		},
		{
			name: "stale field tag",
			sym:  &Symbol{Signature: []Param{{Name: "user_id"}}},
			doc:  "Get.\n\n:param user_id: id\n:param str legacy: removed\n",
			want: []Warning{UnknownParamDoc("legacy")},
		},
		{
			name: "void return needs no doc",
			sym:  &Symbol{Signature: []Param{}, ReturnDeclared: BoolPtr(false)},
			doc:  "Do it.",
			want: nil,
		},
		{
			name: "yields satisfies return",
			sym:  &Symbol{Signature: []Param{}, ReturnDeclared: BoolPtr(true)},
			doc:  "Stream.\n\nYields:\n    int: numbers\n",
			want: nil,
		},
		{
			name: "deprecation is not a warning",
			sym:  &Symbol{Signature: []Param{}},
			doc:  "Old.\n\nDeprecated:\n    Use new.\n",
			want: nil,
		},
		{
			name: "missing params keep signature order",
			sym:  &Symbol{Signature: []Param{{Name: "b"}, {Name: "a"}, {Name: "c"}}},
			doc:  "Call.\n\nArgs:\n    a: documented\n",
			want: []Warning{MissingParamDoc("b"), MissingParamDoc("c")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Check(tt.sym, Annotate(tt.doc)))
		})
	}
}

func TestCheckConsistency_TreeIsReadOnlyAndRepeatable(t *testing.T) {
	t.Parallel()

	root := sampleTree()
	root.Children[1].Children[0].RawDoc = StringPtr("Find a user.")

	tree, _, err := Extract(root)
	require.NoError(t, err)
	before, _, err := Extract(root)
	require.NoError(t, err)

	first := CheckConsistency(tree)
	second := CheckConsistency(tree)
	assert.Equal(t, first, second)
	assert.Equal(t, before, tree)

	assert.Equal(t, []Warning{
		{Kind: WarnMissingParamDoc, Path: "sample.UserRepository.find_by_id", Name: "user_id"},
		{Kind: WarnMissingReturnDoc, Path: "sample.UserRepository.find_by_id"},
		{Kind: WarnMissingParamDoc, Path: "sample.UserRepository.find_by_email", Name: "email"},
		{Kind: WarnMissingReturnDoc, Path: "sample.UserRepository.find_by_email"},
	}, first)
}

func TestWarning_String(t *testing.T) {
	t.Parallel()

	w := MissingParamDoc("user_id")
	assert.Equal(t, `parameter "user_id" is not documented`, w.String())
	w.Path = "pkg.f"
	assert.Equal(t, `pkg.f: parameter "user_id" is not documented`, w.String())
	assert.Equal(t, "return value is not documented", MissingReturnDoc().String())
}
