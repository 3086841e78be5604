package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gofactory"
	"github.com/reoring/gofactory/internal/cli"
)

const personSchema = `{
  "title": "Person",
  "type": "object",
  "required": ["name", "age", "scores", "tags"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 18, "maximum": 30},
    "scores": {"type": "array", "items": {"type": "number"}, "minItems": 1, "maxItems": 3},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestNewRootCommand(t *testing.T) {
	cmd := cli.NewRootCommand()
	assert.Equal(t, "gofactory", cmd.Use)
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "describe")
	assert.Contains(t, names, "version")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	for _, want := range []string{"gofactory version:", "Git commit:", "Build date:", "Go version:"} {
		assert.Contains(t, out, want)
	}
}

func TestGenerate_JSONLines(t *testing.T) {
	schema := writeFile(t, "person.json", personSchema)
	out, err := run(t, "generate", "--schema", schema, "-n", "3", "--seed", "7", "--set", "name=alice")
	require.NoError(t, err)
	ls := lines(out)
	require.Len(t, ls, 3)
	for _, l := range ls {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &v))
		assert.Equal(t, "alice", v["name"])
		age := v["age"].(float64)
		assert.True(t, age >= 18 && age <= 30, "age %v", age)
		assert.NotEmpty(t, v["scores"])
	}

	again, err := run(t, "generate", "--schema", schema, "-n", "3", "--seed", "7", "--set", "name=alice")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestDescribe(t *testing.T) {
	schema := writeFile(t, "person.json", personSchema)
	out, err := run(t, "describe", "--schema", schema)
	require.NoError(t, err)
	var s map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "Person", s["title"])
	props := s["properties"].(map[string]any)
	age := props["age"].(map[string]any)
	assert.Equal(t, "integer", age["type"])
	assert.Equal(t, float64(18), age["minimum"])
}

func TestGenerate_Pretty(t *testing.T) {
	schema := writeFile(t, "person.json", personSchema)
	out, err := run(t, "generate", "--schema", schema, "--seed", "1", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"")
}

func TestGenerate_CRDKind(t *testing.T) {
	crd := writeFile(t, "crds.yaml", `
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata: {name: widgets.example.com}
spec:
  group: example.com
  names: {kind: Widget}
  versions:
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
          required: [spec]
          properties:
            apiVersion: {type: string}
            kind: {type: string}
            spec:
              type: object
              required: [size]
              properties:
                size: {type: integer, default: 2}
`)
	out, err := run(t, "generate", "--schema", crd, "--crd-kind", "Widget", "--seed", "3", "--use-defaults")
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "Widget", v["kind"])
	assert.Equal(t, "example.com/v1", v["apiVersion"])
	assert.Equal(t, float64(2), v["spec"].(map[string]any)["size"])

	_, err = run(t, "generate", "--schema", crd, "--crd-kind", "Gadget")
	assert.Error(t, err)
}

func TestGenerate_ConfigFile(t *testing.T) {
	schema := writeFile(t, "person.json", personSchema)
	conf := writeFile(t, "gofactory.yaml", "count: 2\nseed: 5\nmin_items: 3\nmax_items: 3\n")
	out, err := run(t, "generate", "--schema", schema, "--config", conf)
	require.NoError(t, err)
	ls := lines(out)
	require.Len(t, ls, 2)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(ls[0]), &v))
	assert.Len(t, v["tags"], 3)

	// flags win over the file
	out, err = run(t, "generate", "--schema", schema, "--config", conf, "-n", "4")
	require.NoError(t, err)
	assert.Len(t, lines(out), 4)
}

func TestGenerate_Errors(t *testing.T) {
	schema := writeFile(t, "person.json", personSchema)
	cases := map[string][]string{
		"missing schema flag": {"generate"},
		"unreadable schema":   {"generate", "--schema", filepath.Join(t.TempDir(), "nope.json")},
		"bad set":             {"generate", "--schema", schema, "--set", "novalue"},
		"unknown override":    {"generate", "--schema", schema, "--set", "ghost=1"},
		"bad config":          {"generate", "--schema", schema, "--config", writeFile(t, "c.yaml", "optional_probability: 2\n")},
		"missing config":      {"generate", "--schema", schema, "--config", filepath.Join(t.TempDir(), "none.yaml")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := cli.LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Count)
	fc, err := cfg.Factory()
	require.NoError(t, err)
	assert.Nil(t, fc.Seed)
	assert.Equal(t, gofactory.DefaultMaxDepth, fc.MaxDepth)

	conf := writeFile(t, "gofactory.yaml", "seed: 9\nunknown_overrides: ignore\npost_gen_visibility: resolved\n")
	cfg, err = cli.LoadConfig(viper.New(), conf)
	require.NoError(t, err)
	fc, err = cfg.Factory()
	require.NoError(t, err)
	require.NotNil(t, fc.Seed)
	assert.Equal(t, int64(9), *fc.Seed)
	assert.Equal(t, gofactory.OverridesIgnore, fc.UnknownOverrides)
	assert.Equal(t, gofactory.VisibilityResolved, fc.PostGenVisibility)

	t.Setenv("GOFACTORY_MAX_DEPTH", "6")
	cfg, err = cli.LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MaxDepth)

	bad := writeFile(t, "gofactory.yaml", "unknown_overrides: sometimes\n")
	_, err = cli.LoadConfig(viper.New(), bad)
	assert.Error(t, err)
}
