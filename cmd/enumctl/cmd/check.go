package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-enum/schema/openapi"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate catalog files",
		Long: `Validate that each file declares a consistent catalog: at least one entry,
non-empty unique names and unique values.

Names containing blanks are listed with the underbar spelling older records
may still use.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args)
		},
	}
}

func (a *app) runCheck(cmd *cobra.Command, paths []string) error {
	out := cmd.OutOrStdout()
	var errs []error
	for _, path := range paths {
		catalog, file, err := loadCatalog(path)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s: %s (%d entries)\n", path, file.Type, catalog.Len())
		for _, pair := range sortedPairs(openapi.LegacyNames(catalog)) {
			fmt.Fprintf(out, "     legacy %q -> %q\n", pair[0], pair[1])
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d catalogs invalid: %w", len(errs), len(paths), errors.Join(errs...))
	}
	return nil
}

func sortedPairs(m map[string]string) [][2]string {
	pairs := make([][2]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, [2]string{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs
}
