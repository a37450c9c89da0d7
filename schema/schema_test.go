package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToColumnLetters(t *testing.T) {
	cases := map[int]string{
		0:   "A",
		1:   "B",
		25:  "Z",
		26:  "AA",
		27:  "AB",
		51:  "AZ",
		52:  "BA",
		701: "ZZ",
		702: "AAA",
		-1:  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToColumnLetters(in), "index %d", in)
	}
}

func TestBuildColumnKeys(t *testing.T) {
	rows := [][]string{{"Ada", "ada@example.org", "x"}}

	t.Run("header", func(t *testing.T) {
		keys := BuildColumnKeys([]string{"first name", "email address"}, rows, true, Ordinal)
		assert.Equal(t, []string{"first name", "email address"}, keys)
	})

	t.Run("no header uses letters", func(t *testing.T) {
		keys := BuildColumnKeys([]string{"first name", "email address"}, rows, false, Ordinal)
		assert.Equal(t, []string{"ColumnA", "ColumnB", "ColumnC"}, keys)
	})

	t.Run("no header index mode", func(t *testing.T) {
		keys := BuildColumnKeys(nil, rows, false, Index)
		assert.Equal(t, []string{"Column0", "Column1", "Column2"}, keys)
	})

	t.Run("absent header falls back to synthesized keys", func(t *testing.T) {
		keys := BuildColumnKeys(nil, [][]string{{"a"}, {"a", "b"}}, true, Ordinal)
		assert.Equal(t, []string{"ColumnA", "ColumnB"}, keys)
	})

	t.Run("duplicates and empty cells", func(t *testing.T) {
		keys := BuildColumnKeys([]string{"name", "", "name", "", "name"}, nil, true, Ordinal)
		assert.Equal(t, []string{"name", "Column", "name_2", "Column_2", "name_3"}, keys)
	})

	t.Run("suffix collision with existing header", func(t *testing.T) {
		keys := BuildColumnKeys([]string{"a", "a_2", "a"}, nil, true, Ordinal)
		assert.Equal(t, []string{"a", "a_2", "a_3"}, keys)
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Empty(t, BuildColumnKeys(nil, nil, false, Ordinal))
	})
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"has", "email", "address"}, Tokenize("has email_address!!"))
	assert.Equal(t, []string{"first", "name"}, Tokenize("  first-name  "))
	assert.Equal(t, []string{"Price", "USD"}, Tokenize("Price (USD)"))
	assert.Equal(t, []string{"col2"}, Tokenize("col2"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("!!!"))
}

func TestBuildPredicateLocalName(t *testing.T) {
	tests := []struct {
		key  string
		opts PredicateOptions
		want string
	}{
		{"email address", PredicateOptions{PrefixHas: true, Casing: CamelCase}, "hasEmailAddress"},
		{"email address", PredicateOptions{PrefixHas: true, Casing: PascalCase}, "HasEmailAddress"},
		{"email address", PredicateOptions{PrefixHas: true, Casing: SnakeCase}, "has_email_address"},
		{"email address", PredicateOptions{PrefixHas: true, Casing: ShoutCase}, "HAS_EMAIL_ADDRESS"},
		{"email address", PredicateOptions{PrefixHas: false, Casing: CamelCase}, "emailAddress"},
		{"EMAIL_Address", PredicateOptions{PrefixHas: false, Casing: CamelCase}, "emailAddress"},
		{"first", DefaultPredicateOptions(), "hasFirst"},
		{"ColumnA", DefaultPredicateOptions(), "hasColumna"},
		{"", PredicateOptions{PrefixHas: true, Casing: CamelCase}, "hasValue"},
		{"?!", PredicateOptions{PrefixHas: false, Casing: CamelCase}, "value"},
		{"", PredicateOptions{PrefixHas: true, Casing: SnakeCase}, "has_value"},
	}
	for _, tt := range tests {
		got := BuildPredicateLocalName(tt.key, tt.opts)
		assert.Equal(t, tt.want, got, "key %q opts %+v", tt.key, tt.opts)
	}
}

func TestBuildPredicateLocalNameIsPure(t *testing.T) {
	opts := DefaultPredicateOptions()
	first := BuildPredicateLocalName("Order Date", opts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildPredicateLocalName("Order Date", opts))
	}
}

func TestParseCasing(t *testing.T) {
	for in, want := range map[string]Casing{
		"camelCase":  CamelCase,
		"":           CamelCase,
		"PascalCase": PascalCase,
		"snake_case": SnakeCase,
		"SHOUT_CASE": ShoutCase,
		"shout-case": ShoutCase,
	} {
		got, err := ParseCasing(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCasing("kebab")
	assert.Error(t, err)
}

func TestParseHeaderMode(t *testing.T) {
	mode, err := ParseHeaderMode("INDEX")
	require.NoError(t, err)
	assert.Equal(t, Index, mode)

	mode, err = ParseHeaderMode("")
	require.NoError(t, err)
	assert.Equal(t, Ordinal, mode)

	_, err = ParseHeaderMode("roman")
	assert.Error(t, err)
}
