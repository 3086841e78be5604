package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/gofactory"
	"github.com/reoring/gofactory/openapi"
)

type generateOptions struct {
	schema  string
	model   string
	crdKind string
	config  string
	sets    []string
}

// flagKeys binds generate flags to config keys.
var flagKeys = map[string]string{
	"count":        "count",
	"seed":         "seed",
	"pretty":       "pretty",
	"use-defaults": "use_defaults",
	"max-depth":    "max_depth",
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var o generateOptions
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "generate --schema FILE",
		Short: "Generate instances from a schema",
		Long: `Generate reads a JSON Schema, OpenAPI document or CRD (JSON or YAML) and
writes synthesized instances as JSON lines.

Examples:
  gofactory generate --schema person.json -n 10 --seed 42
  gofactory generate --schema openapi.yaml --model Pet --set name=rex
  gofactory generate --schema crds.yaml --crd-kind Widget --pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, v, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.schema, "schema", "", "schema file (JSON Schema, OpenAPI or CRD)")
	f.StringVar(&o.model, "model", "", "named schema under $defs, definitions or components.schemas")
	f.StringVar(&o.crdKind, "crd-kind", "", "CRD kind to import from a multi-document YAML bundle")
	f.StringVar(&o.config, "config", "", "config file (default ./gofactory.yaml)")
	f.StringArrayVar(&o.sets, "set", nil, "override a top-level field, value parsed as YAML (repeatable)")
	f.IntP("count", "n", 1, "number of instances")
	f.Int64("seed", 0, "random seed (entropy when unset)")
	f.Bool("pretty", false, "indent each instance")
	f.Bool("use-defaults", false, "use schema defaults instead of synthesizing")
	f.Int("max-depth", gofactory.DefaultMaxDepth, "maximum nesting of a recursive model")
	_ = cmd.MarkFlagRequired("schema")
	for flag, key := range flagKeys {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func runGenerate(cmd *cobra.Command, v *viper.Viper, o generateOptions) error {
	cfg, err := LoadConfig(v, o.config)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	iopts := openapi.Options{Schema: o.model, FixTypeMeta: true}
	if cfg.UseDefaults {
		iopts.DefaultMode = openapi.DefaultApply
	}
	res, err := importSchema(o, iopts, log)
	if err != nil {
		return err
	}

	fc, err := cfg.Factory()
	if err != nil {
		return err
	}
	f, err := res.NewFactory(gofactory.WithConfig(fc), gofactory.WithLogger(log))
	if err != nil {
		return err
	}
	overrides, err := parseSets(o.sets)
	if err != nil {
		return err
	}
	items, err := f.Batch(cmd.Context(), cfg.Count, gofactory.WithOverrides(overrides))
	if err != nil {
		return err
	}
	return writeJSONLines(cmd.OutOrStdout(), items, cfg.Pretty)
}

// importSchema reads o.schema and imports it, logging import warnings.
func importSchema(o generateOptions, iopts openapi.Options, log *zap.Logger) (*openapi.Result, error) {
	data, err := os.ReadFile(o.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	var (
		res  *openapi.Result
		diag openapi.Diag
	)
	if o.crdKind != "" {
		res, diag, err = openapi.ImportYAMLForCRDKind(data, o.crdKind, iopts)
	} else {
		res, diag, err = openapi.Import(data, iopts)
	}
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", o.schema, err)
	}
	for _, w := range diag.Warnings() {
		log.Warn("schema import", zap.String("schema", o.schema), zap.String("warning", w))
	}
	return res, nil
}

// parseSets turns --set key=value pairs into overrides. Values are YAML scalars
// or flow collections, so "n=3" is an int and "tags=[a, b]" a list.
func parseSets(sets []string) (map[string]any, error) {
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		k, raw, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", s)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}
		out[k] = v
	}
	return out, nil
}

func writeJSONLines(w io.Writer, items []map[string]any, pretty bool) error {
	bw := bufio.NewWriter(w)
	for _, it := range items {
		var (
			b   []byte
			err error
		)
		if pretty {
			b, err = json.MarshalIndent(jsonValue(it), "", "  ")
		} else {
			b, err = json.Marshal(jsonValue(it))
		}
		if err != nil {
			return fmt.Errorf("failed to encode instance: %w", err)
		}
		_, _ = bw.Write(b)
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

// jsonValue rewrites map[any]any (maps keyed by non-text kinds) into
// map[string]any so they encode as JSON objects.
func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = jsonValue(x)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[fmt.Sprint(k)] = jsonValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = jsonValue(t[i])
		}
		return out
	}
	return v
}
