package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/taxroll/internal/importer"
)

func newImportCmd() *cobra.Command {
	var (
		failFast bool
		workers  int
		format   string
	)

	cmd := &cobra.Command{
		Use:       "import {municipalities|properties} FILE",
		Short:     "Import a CSV or XLSX file",
		Long:      "Upsert every row of FILE. Municipalities are keyed on municipal_id and properties on assessment_roll_number; unknown municipalities referenced by properties are created as placeholders.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(importer.KindMunicipalities), string(importer.KindProperties)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := importer.ParseKind(args[0])
			if err != nil {
				return err
			}
			fileFormat, err := resolveFormat(format, args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if workers < 1 {
				workers = a.cfg.Import.Workers
			}
			imp := importer.New(a.municipalities, a.properties, a.log, workers)
			return runImport(ctx, cmd.OutOrStdout(), imp, kind, args[1], fileFormat, importer.Options{FailFast: failFast})
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first rejected row")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent rows (default IMPORT_WORKERS)")
	cmd.Flags().StringVar(&format, "format", "", "file format (csv|xlsx), default from the extension")

	return cmd
}

func resolveFormat(flag, path string) (importer.Format, error) {
	if flag != "" {
		return importer.ParseFormat(flag)
	}
	return importer.FormatFromFilename(path)
}

// runImport imports path and prints a summary. It fails when any row was rejected.
func runImport(ctx context.Context, out io.Writer, imp *importer.Importer, kind importer.Kind, path string, format importer.Format, opts importer.Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := imp.Import(ctx, kind, f, format, opts)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	printResult(out, result)
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d rows rejected", result.Failed, result.Total)
	}
	return nil
}

func printResult(out io.Writer, r *importer.Result) {
	fmt.Fprintf(out, "%s: %d rows, %d created, %d updated, %d failed", r.Kind, r.Total, r.Created, r.Updated, r.Failed)
	if r.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", r.Skipped)
	}
	fmt.Fprintln(out)

	for _, id := range r.AutoCreatedMunicipalities {
		fmt.Fprintf(out, "  created placeholder municipality %d\n", id)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(out, "  line %d: %s\n", e.Line, e.Error)
	}
}
