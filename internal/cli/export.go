package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/taxroll/internal/importer"
	"github.com/stwalsh4118/taxroll/internal/models"
	"github.com/stwalsh4118/taxroll/internal/repository"
)

func newExportCmd() *cobra.Command {
	var (
		format    string
		out       string
		municipal int64
	)

	cmd := &cobra.Command{
		Use:       "export {municipalities|properties}",
		Short:     "Export records as CSV or XLSX",
		Long:      "Write all municipalities, or all properties with their computed tax, in a layout the import command accepts.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(importer.KindMunicipalities), string(importer.KindProperties)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := importer.ParseKind(args[0])
			if err != nil {
				return err
			}
			fileFormat, err := importer.ParseFormat(format)
			if err != nil {
				return err
			}

			var filter repository.PropertyFilter
			if municipal > 0 {
				filter.MunicipalID = &municipal
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runExport(ctx, w, a.municipalities, a.properties, kind, fileFormat, filter)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(importer.FormatCSV), "output format (csv|xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().Int64Var(&municipal, "municipal", 0, "only properties of this municipality")

	return cmd
}

type municipalityLister interface {
	List(ctx context.Context) ([]models.Municipality, error)
}

type propertyLister interface {
	List(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error)
}

func runExport(ctx context.Context, w io.Writer, municipalities municipalityLister, properties propertyLister, kind importer.Kind, format importer.Format, filter repository.PropertyFilter) error {
	switch kind {
	case importer.KindMunicipalities:
		list, err := municipalities.List(ctx)
		if err != nil {
			return err
		}
		return importer.ExportMunicipalities(w, list, format)
	case importer.KindProperties:
		list, err := properties.List(ctx, filter)
		if err != nil {
			return err
		}
		return importer.ExportProperties(w, list, format)
	}
	return fmt.Errorf("%w: %q", importer.ErrUnknownKind, kind)
}
