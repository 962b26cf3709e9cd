package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	enum "github.com/goliatone/go-enum"
)

type parseResult struct {
	Input     string `json:"input" yaml:"input"`
	Ordinal   int    `json:"ordinal" yaml:"ordinal"`
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Legacy    bool   `json:"legacy,omitempty" yaml:"legacy,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newParseCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file> [record...]",
		Short: "Resolve records against a catalog",
		Long: `Resolve each record against the catalog in <file>. Records are read one per
line from stdin when none are given as arguments.

Records written with the old underbar spelling are marked "legacy". With
--rewrite only the canonical names are printed, one per line, which turns an
old record file into its canonical form.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args[0], args[1:])
		},
	}
	cmd.Flags().Bool("rewrite", false, "print canonical names only")
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, path string, records []string) error {
	catalog, _, err := loadCatalog(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		records, err = readRecords(inputReader(cmd))
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	rewrite := a.v.GetBool("rewrite")
	encoder := enum.NewEncoder(out)
	results := make([]parseResult, 0, len(records))
	failed := 0
	for _, record := range records {
		res := parseResult{Input: record, Ordinal: -1}
		m, err := catalog.Resolve(record)
		if err != nil {
			res.Error = err.Error()
			failed++
		} else {
			res.Ordinal = m.Ordinal
			res.Canonical, _ = catalog.Format(m.Ordinal)
			res.Legacy = m.Legacy
		}
		results = append(results, res)

		if err != nil {
			a.logger.Warn("unresolved record", "catalog", catalog.TypeName(), "record", record)
		}
		if rewrite {
			if err == nil {
				v, _ := catalog.ParseValue(record)
				if err := encoder.Encode(v); err != nil {
					return err
				}
			}
			continue
		}
		if a.output() == outputText {
			printParseResult(out, res)
		}
	}

	if !rewrite && a.output() != outputText {
		if err := writeStructured(out, a.output(), results); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records did not resolve in %s", failed, len(records), catalog.TypeName())
	}
	return nil
}

func printParseResult(w io.Writer, res parseResult) {
	switch {
	case res.Error != "":
		fmt.Fprintf(w, "%q\t-\t%s\n", res.Input, res.Error)
	case res.Legacy:
		fmt.Fprintf(w, "%q\t%d\t%s\tlegacy\n", res.Input, res.Ordinal, res.Canonical)
	default:
		fmt.Fprintf(w, "%q\t%d\t%s\n", res.Input, res.Ordinal, res.Canonical)
	}
}

func readRecords(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var records []string
	for {
		record, err := enum.ReadRecord(br)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}
