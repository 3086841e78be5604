package cli

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/gofactory/jsonschema"
	"github.com/reoring/gofactory/openapi"
)

// NewDescribeCommand creates the describe command, which prints the model an
// import produces as a normalized JSON Schema.
func NewDescribeCommand() *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "describe --schema FILE",
		Short: "Print the imported model as JSON Schema",
		Long: `Describe imports a schema the same way generate does and prints the resulting
model as a JSON Schema document, showing which keywords were understood.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = log.Sync() }()
			res, err := importSchema(o, openapi.Options{Schema: o.model, DefaultMode: openapi.DefaultApply}, log)
			if err != nil {
				return err
			}
			s, err := jsonschema.FromModel(res.Root, res.Models...)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.schema, "schema", "", "schema file (JSON Schema, OpenAPI or CRD)")
	f.StringVar(&o.model, "model", "", "named schema under $defs, definitions or components.schemas")
	f.StringVar(&o.crdKind, "crd-kind", "", "CRD kind to import from a multi-document YAML bundle")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
