package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/modhost/pkg/modhost/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilIsEmpty(t *testing.T) {
	cfg := config.New(nil)
	assert.NotNil(t, cfg.Raw())
	assert.False(t, cfg.Has("chatlog"))
	assert.Equal(t, 7, cfg.Section("chatlog").Int("capacity", 7))
}

func TestString(t *testing.T) {
	cfg := config.New(map[string]any{
		"greeting": "hi there",
		"blank":    "",
		"port":     6112,
	})

	assert.Equal(t, "hi there", cfg.String("greeting", "hello"))
	assert.Equal(t, "", cfg.String("blank", "hello"))
	assert.Equal(t, "hello", cfg.String("port", "hello"), "numbers are not text")
	assert.Equal(t, "hello", cfg.String("missing", "hello"))
}

// TestBool verifies boolean extraction including text values.
func TestBool(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		defaultVal bool
		want       bool
	}{
		{"bool true", true, false, true},
		{"bool false", false, true, false},
		{"text true", "true", false, true},
		{"text mixed case", "FaLsE", true, false},
		{"text padded", "  TRUE \n", false, true},
		{"text unrecognized", "yes", true, true},
		{"numeric text", "1", false, false},
		{"wrong type", 1, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"flag": tt.value})
			assert.Equal(t, tt.want, cfg.Bool("flag", tt.defaultVal))
		})
	}

	cfg := config.New(nil)
	assert.True(t, cfg.Bool("missing", true))
}

// TestInt verifies integer extraction with numeric and text values.
func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 42, 42},
		{"int64", int64(42), 42},
		{"whole float", 42.0, 42},
		{"fractional float", 42.5, -1},
		{"decimal text", "42", 42},
		{"hex text", "0x7A", 122},
		{"octal text", "017", 15},
		{"negative text", "-8", -8},
		{"padded text", " 12 ", 12},
		{"invalid text", "12abc", -1},
		{"bool", true, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"n": tt.value})
			assert.Equal(t, tt.want, cfg.Int("n", -1))
		})
	}
}

// TestIntSlice verifies integer list extraction.
func TestIntSlice(t *testing.T) {
	def := []int{9}
	tests := []struct {
		name  string
		value any
		want  []int
	}{
		{"ints", []int{1, 2}, []int{1, 2}},
		{"mixed any", []any{1, "0x10", "010"}, []int{1, 16, 8}},
		{"strings", []string{"27", "0x1B"}, []int{27, 27}},
		{"invalid element", []any{1, "nope"}, def},
		{"not a list", "1,2", def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"keys": tt.value})
			assert.Equal(t, tt.want, cfg.IntSlice("keys", def))
		})
	}
}

// TestSection verifies per-module section lookup.
func TestSection(t *testing.T) {
	cfg := config.New(map[string]any{
		"ChatLog": map[string]any{"capacity": 10},
		"radar":   map[string]any{"enabled": true},
		"scalar":  5,
	})

	assert.Equal(t, 10, cfg.Section("chatlog").Int("capacity", 0))
	assert.Equal(t, 10, cfg.Section("ChatLog").Int("capacity", 0))
	assert.True(t, cfg.Section(" RADAR ").Bool("enabled", false))

	empty := cfg.Section("missing")
	assert.NotNil(t, empty.Raw())
	assert.Empty(t, empty.Raw())

	assert.Empty(t, cfg.Section("scalar").Raw())
}

func TestSection_FoldedCollision(t *testing.T) {
	cfg := config.New(map[string]any{
		"Radar":  map[string]any{"range": 1},
		"RADAR":  map[string]any{"range": 2},
		" radaR": map[string]any{"range": 3},
	})

	// " radaR" < "RADAR" < "Radar" bytewise; repeat to catch map-order drift.
	for range 50 {
		assert.Equal(t, 3, cfg.Section("radar").Int("range", 0))
	}
	assert.Equal(t, 2, cfg.Section("RADAR").Int("range", 0), "exact key wins")
}

func TestHas(t *testing.T) {
	cfg := config.New(map[string]any{"k": 1, "nil": nil})
	assert.True(t, cfg.Has("k"))
	assert.True(t, cfg.Has("nil"))
	assert.False(t, cfg.Has("x"))
}

// TestFromFile verifies loading settings files by extension.
func TestFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "settings.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("keyblock:\n  enabled: \"True\"\n  keys: [\"0x7A\", 27]\n"), 0o644))

	jsonPath := filepath.Join(tmpDir, "settings.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"chatlog": {"capacity": 5}}`), 0o644))

	txtPath := filepath.Join(tmpDir, "settings.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("content"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
		check   func(*testing.T, config.Config)
	}{
		{
			"yaml file",
			yamlPath,
			false,
			"",
			func(t *testing.T, cfg config.Config) {
				kb := cfg.Section("KeyBlock")
				assert.True(t, kb.Bool("enabled", false))
				assert.Equal(t, []int{122, 27}, kb.IntSlice("keys", nil))
			},
		},
		{
			"json file",
			jsonPath,
			false,
			"",
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 5, cfg.Section("chatlog").Int("capacity", 0))
			},
		},
		{
			"unsupported extension",
			txtPath,
			true,
			"unsupported config file extension",
			nil,
		},
		{
			"file not found",
			filepath.Join(tmpDir, "nonexistent.yaml"),
			true,
			"read config file",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromFile(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// TestFromYAML_Invalid verifies parse errors are wrapped.
func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("a: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")

	_, err = config.FromJSON([]byte("{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")
}

// TestSources verifies deferred settings sources.
func TestSources(t *testing.T) {
	static := config.Static(config.New(map[string]any{"a": 1}))
	cfg, err := static()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Int("a", 0))

	path := filepath.Join(t.TempDir(), "live.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))
	src := config.FileSource(path)

	cfg, err = src()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Int("a", 0))

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	cfg, err = src()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Int("a", 0))
}
