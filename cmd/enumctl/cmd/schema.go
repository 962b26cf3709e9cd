package cmd

import (
	"github.com/spf13/cobra"

	enum "github.com/goliatone/go-enum"
	"github.com/goliatone/go-enum/schema/openapi"
)

func newSchemaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <file>...",
		Short: "Print an OpenAPI document for catalog files",
		Long: `Print an OpenAPI document with one component per catalog file. Each catalog
is registered under its declared type name. Text output is printed as JSON.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSchema(cmd, args)
		},
	}
	cmd.Flags().String("title", "", "document title")
	cmd.Flags().String("path", "", "operation path (default /selections)")
	return cmd
}

func (a *app) runSchema(cmd *cobra.Command, paths []string) error {
	reg := enum.NewRegistry()
	for _, path := range paths {
		catalog, file, err := loadCatalog(path)
		if err != nil {
			return err
		}
		if err := reg.Register(file.Type, catalog); err != nil {
			return err
		}
	}

	doc, err := openapi.Document(reg,
		openapi.WithInfo(a.v.GetString("title"), Version, ""),
		openapi.WithOperation(a.v.GetString("path"), "", "", ""),
	)
	if err != nil {
		return err
	}
	format := a.output()
	if format == outputText {
		format = outputJSON
	}
	return writeStructured(cmd.OutOrStdout(), format, doc)
}
