package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/intake/internal/blob"
	"github.com/matthewbaird/intake/internal/config"
	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/receivables"
	"github.com/matthewbaird/intake/internal/seed"
	"github.com/matthewbaird/intake/internal/store"
	"github.com/matthewbaird/intake/internal/types"
)

// openStore loads the config and opens a migrated store.
func openStore(ctx context.Context, opts *RootOptions) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := intake.LoadCatalog()
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load intake catalog: %w", err)
	}
	if err := db.Migrate(ctx, catalog.Columns()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return cfg, db, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the configured database",
		Long: `Writes demo users, leads, matters, conflict parties, invoices, payments
and time entries. A database that already holds the demo users is left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, db, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()
			counts, err := seed.Demo(ctx, db, time.Now())
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), rootOpts, counts, func(w io.Writer) {
				fmt.Fprintf(w, "seeded %d records\n", counts.Total())
			})
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export dashboard reports as CSV",
	}
	cmd.AddCommand(newExportAgingCommand(rootOpts))
	return cmd
}

func newExportAgingCommand(rootOpts *RootOptions) *cobra.Command {
	var asOf, team, bucket, outDir string
	cmd := &cobra.Command{
		Use:   "aging",
		Short: "Export open invoices by days outstanding",
		Long: `Writes the accounts receivable aging rows as CSV. With --bucket only
that bucket's invoices are exported; otherwise every open invoice is.
The file is also archived to the configured blob store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, db, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := &receivables.Service{Invoices: db}
			f := svc.DefaultFilter()
			if asOf != "" {
				at, err := time.ParseInLocation(time.DateOnly, asOf, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", asOf)
				}
				f.AsOf = at
			}
			if team != "" {
				f.Team = team
			}

			title := "Accounts Receivable Aging"
			var rows []receivables.Row
			if bucket != "" {
				b, err := receivables.ParseBucket(bucket)
				if err != nil {
					return err
				}
				if rows, err = svc.Details(ctx, f, b); err != nil {
					return err
				}
				title = b.Title()
			} else {
				invoices, err := db.ListInvoices(ctx)
				if err != nil {
					return err
				}
				rows = receivables.Rows(invoices, f)
			}

			archive, err := blob.Open(ctx, cfg.Blob)
			if err != nil {
				return err
			}
			ex := &csvexport.Exporter{Archive: archive}
			toDir := csvexport.SinkFunc(func(_ context.Context, file csvexport.File) error {
				return os.WriteFile(filepath.Join(outDir, file.Name), file.Data, 0o644)
			})
			toStdout := csvexport.SinkFunc(func(_ context.Context, file csvexport.File) error {
				_, err := cmd.OutOrStdout().Write(file.Data)
				return err
			})
			res, err := ex.Export(ctx, title, receivables.Table(rows), toDir, toStdout)
			if err != nil {
				return err
			}
			if res.Fallback {
				return nil
			}
			return output(cmd.OutOrStdout(), rootOpts, res, func(w io.Writer) {
				fmt.Fprintf(w, "wrote %d rows to %s\n", len(rows), filepath.Join(outDir, res.Filename))
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "as-of date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&team, "team", types.AllOption, "team")
	cmd.Flags().StringVar(&bucket, "bucket", "", "aging bucket: 30, 60, 90 or 91+")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}
