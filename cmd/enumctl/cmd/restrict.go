package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-enum/rules"
)

type choice struct {
	Name    string `json:"name" yaml:"name"`
	Ordinal int    `json:"ordinal" yaml:"ordinal"`
	Allowed bool   `json:"allowed" yaml:"allowed"`
	Current bool   `json:"current,omitempty" yaml:"current,omitempty"`
}

type restrictResult struct {
	Type     string   `json:"type" yaml:"type"`
	Rule     string   `json:"rule" yaml:"rule"`
	Engine   string   `json:"engine" yaml:"engine"`
	Previous string   `json:"previous" yaml:"previous"`
	Current  string   `json:"current" yaml:"current"`
	Changed  bool     `json:"changed" yaml:"changed"`
	Choices  []choice `json:"choices" yaml:"choices"`
}

func newRestrictCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restrict <file>",
		Short: "Apply a rule to decide which choices are selectable",
		Long: `Evaluate --rule once per catalog entry and print which choices remain
selectable. The rule sees name, ordinal, current, current_ordinal,
cardinality, args and metadata, and must return a boolean.

Engines: expr (default), cel, and js when built with the js_eval tag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRestrict(cmd, args[0])
		},
	}
	flags := cmd.Flags()
	flags.String("rule", "", "boolean expression evaluated per entry (required)")
	flags.String("engine", rules.EngineExpr, "rule engine: "+strings.Join(rules.Engines(), ", "))
	flags.String("current", "", "current value (default: the first entry)")
	flags.StringToString("arg", nil, "rule argument as key=value, repeatable")
	flags.Bool("enforce", false, "move a proscribed current value to the first allowed choice")
	return cmd
}

func (a *app) runRestrict(cmd *cobra.Command, path string) error {
	rule := a.v.GetString("rule")
	if rule == "" {
		return fmt.Errorf("--rule is required")
	}
	catalog, _, err := loadCatalog(path)
	if err != nil {
		return err
	}

	value := catalog.Default()
	if current := a.v.GetString("current"); current != "" {
		value, err = catalog.ParseValue(current)
		if err != nil {
			return err
		}
	}

	policy, err := rules.NewPolicy(rule,
		rules.WithEngine(a.v.GetString("engine")),
		rules.WithEnforce(a.v.GetBool("enforce")),
		rules.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	args, err := stringMap(a.v, "arg")
	if err != nil {
		return err
	}
	report, err := policy.Apply(cmd.Context(), value.Handle(), rules.Input{
		Args: typedArgs(args),
		Enum: catalog.TypeName(),
	})
	if err != nil {
		return err
	}

	result := restrictResult{
		Type:     catalog.TypeName(),
		Rule:     report.Rule,
		Engine:   report.Engine,
		Previous: report.Previous,
		Current:  report.Current,
		Changed:  report.Changed,
	}
	for i := 0; i < value.Cardinality(); i++ {
		name, _ := value.Name(i)
		allowed, _ := value.IsAllowed(i)
		result.Choices = append(result.Choices, choice{
			Name:    name,
			Ordinal: i,
			Allowed: allowed,
			Current: i == value.Ordinal(),
		})
	}

	out := cmd.OutOrStdout()
	if a.output() != outputText {
		return writeStructured(out, a.output(), result)
	}
	printChoices(out, result)
	return nil
}

func printChoices(w io.Writer, result restrictResult) {
	for _, c := range result.Choices {
		box := "[ ]"
		if c.Allowed {
			box = "[x]"
		}
		marker := ""
		if c.Current {
			marker = " *"
		}
		fmt.Fprintf(w, "%s %d %s%s\n", box, c.Ordinal, c.Name, marker)
	}
	if result.Changed {
		fmt.Fprintf(w, "current moved from %q to %q\n", result.Previous, result.Current)
	}
}

// stringMap reads key from v. Environment values use the flag syntax
// (k=v,k=v) or a JSON object; config files may hold a plain mapping.
func stringMap(v *viper.Viper, key string) (map[string]string, error) {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringMapString(key), nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]string{}, nil
	}
	if strings.HasPrefix(raw, "{") {
		return v.GetStringMapString(key), nil
	}
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		k, val, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("--%s: %q is not key=value", key, pair)
		}
		out[strings.TrimSpace(k)] = val
	}
	return out, nil
}

// typedArgs converts flag values that look like numbers or booleans so rules
// can compare them without casts.
func typedArgs(raw map[string]string) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		if i, err := strconv.Atoi(value); err == nil {
			out[key] = i
			continue
		}
		if b, err := strconv.ParseBool(value); err == nil {
			out[key] = b
			continue
		}
		out[key] = value
	}
	return out
}
