package resolve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixKey(t *testing.T) {
	tests := []struct {
		name     string
		m        map[string]any
		prefix   string
		priority []string
		wantKey  string
		wantOK   bool
	}{
		{
			name:     "second priority candidate wins",
			m:        map[string]any{"lang_es": 1, "lang_fr": 2},
			prefix:   "lang_",
			priority: []string{"en", "es"},
			wantKey:  "lang_es",
			wantOK:   true,
		},
		{
			name:     "fallback to unqualified key",
			m:        map[string]any{"lang_fr": 2},
			prefix:   "lang_",
			priority: []string{"en", "es"},
			wantKey:  "lang_fr",
			wantOK:   true,
		},
		{
			name:     "qualified sibling keys excluded from fallback",
			m:        map[string]any{"lang_fr_extra": 2},
			prefix:   "lang_",
			priority: []string{"en", "es"},
			wantOK:   false,
		},
		{
			name:     "fallback ties break lexically",
			m:        map[string]any{"lang_jp": 1, "lang_de": 2, "lang_fr": 3},
			prefix:   "lang_",
			priority: []string{"en"},
			wantKey:  "lang_de",
			wantOK:   true,
		},
		{
			name:     "first priority beats fallback order",
			m:        map[string]any{"media_wheel_us": 1, "media_wheel_eu": 2},
			prefix:   "media_wheel_",
			priority: []string{"us", "eu"},
			wantKey:  "media_wheel_us",
			wantOK:   true,
		},
		{
			name:     "empty map",
			m:        map[string]any{},
			prefix:   "lang_",
			priority: []string{"en"},
			wantOK:   false,
		},
		{
			name:     "keys with other prefixes ignored",
			m:        map[string]any{"other_en": 1},
			prefix:   "lang_",
			priority: []string{"en"},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := PrefixKey(tt.m, tt.prefix, tt.priority)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}

func parseTree(t *testing.T, raw string) Node {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return Tree(v)
}

func TestNodeAt(t *testing.T) {
	tree := parseTree(t, `{
		"jeu": {
			"nom": "Sonic The Hedgehog",
			"systemeid": "1",
			"synopsis": {"synopsis_en": "A fast hedgehog."},
			"regionshortnames": ["us", "jp"]
		}
	}`)

	name, ok := tree.At("jeu", "nom").Str()
	require.True(t, ok)
	assert.Equal(t, "Sonic The Hedgehog", name)

	id, ok := tree.At("jeu", "systemeid").Int()
	require.True(t, ok)
	assert.Equal(t, 1, id)

	assert.Equal(t, "A fast hedgehog.", tree.At("jeu", "synopsis", "synopsis_en").StrOr(""))
	assert.Equal(t, []string{"us", "jp"}, tree.At("jeu", "regionshortnames").Strings())

	// Any missing segment yields an absent node, not a panic.
	assert.True(t, tree.At("jeu", "missing", "deeper").Absent())
	assert.Equal(t, "fallback", tree.At("nope").StrOr("fallback"))

	// Traversing through a scalar is absent too.
	assert.True(t, tree.At("jeu", "nom", "deeper").Absent())
}

func TestNodeInt(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{name: "json number", raw: `{"v": 26}`, want: 26, wantOK: true},
		{name: "numeric string", raw: `{"v": "75"}`, want: 75, wantOK: true},
		{name: "padded numeric string", raw: `{"v": " 3 "}`, want: 3, wantOK: true},
		{name: "non-numeric string", raw: `{"v": "abc"}`, wantOK: false},
		{name: "object", raw: `{"v": {}}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTree(t, tt.raw).At("v").Int()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNodeStrings(t *testing.T) {
	tree := parseTree(t, `{"scalar": "eu", "list": ["us", 7, "jp"], "obj": {}}`)

	assert.Equal(t, []string{"eu"}, tree.At("scalar").Strings())
	assert.Equal(t, []string{"us", "jp"}, tree.At("list").Strings())
	assert.Nil(t, tree.At("obj").Strings())
	assert.Nil(t, tree.At("missing").Strings())
}

func TestZeroNodeIsAbsent(t *testing.T) {
	var n Node
	assert.True(t, n.Absent())
	assert.True(t, n.At("x").Absent())
	_, ok := n.Str()
	assert.False(t, ok)
}
