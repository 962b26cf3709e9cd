// Package cmd implements the enumctl commands: checking catalog files,
// parsing records, generating schemas and applying restriction rules.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	enum "github.com/goliatone/go-enum"
	"github.com/goliatone/go-enum/catalogfile"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Output formats understood by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

// Execute runs the root command against the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds a fresh command tree. Flags can also be set through
// ENUMCTL_* environment variables or a config file.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "enumctl",
		Short: "Inspect and exercise enumeration catalogs",
		Long: `enumctl works with enumeration catalogs declared in YAML, TOML or JSON files.

Examples:
  enumctl check catalogs/*.yaml
  enumctl parse catalogs/city.toml Pago_Pago "Nuku alofa"
  enumctl schema --output yaml catalogs/*.yaml
  enumctl restrict catalogs/feast.yaml --rule 'ordinal > 0' --current Theophany --enforce`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
	}
	root.Version = Version
	root.SetVersionTemplate("enumctl {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.BoolP("verbose", "v", false, "log rule evaluations at debug level")
	flags.StringP("output", "o", outputText, "output format: text, json or yaml")

	root.AddCommand(
		newCheckCommand(a),
		newParseCommand(a),
		newSchemaCommand(a),
		newRestrictCommand(a),
	)
	return root
}

func (a *app) configure(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("ENUMCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	level := slog.LevelInfo
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	switch a.output() {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", a.output())
	}
}

func (a *app) output() string {
	return strings.ToLower(a.v.GetString("output"))
}

// loadCatalog reads a catalog file. Catalog values are widened to int64 so any
// integer-valued file fits.
func loadCatalog(path string) (*enum.Catalog[int64], catalogfile.File, error) {
	catalog, file, err := catalogfile.LoadCatalog[int64](path)
	if err != nil {
		return nil, catalogfile.File{}, err
	}
	return catalog, file, nil
}

func inputReader(cmd *cobra.Command) io.Reader {
	if in := cmd.InOrStdin(); in != nil {
		return in
	}
	return os.Stdin
}
