package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/censusmap/internal/census"
	"github.com/sells-group/censusmap/internal/choropleth"
	"github.com/sells-group/censusmap/internal/fetcher"
	"github.com/sells-group/censusmap/internal/region"
	"github.com/sells-group/censusmap/internal/render"
	"github.com/sells-group/censusmap/internal/runlog"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run the pipeline end to end and write the HTML map",
	Long: `Downloads the census workbook and boundary archive, cleans the spreadsheet
into a tidy (region, age group, sex, year) table, reprojects and flattens the
region polygons, joins the two by region name, derives population densities,
and writes one self-contained interactive HTML choropleth.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Map.Output
		}
		allowUnmatched, _ := cmd.Flags().GetBool("allow-unmatched")
		allowUnmatched = allowUnmatched || cfg.Join.AllowUnmatched

		var ledger *runlog.Store
		var runID string
		if !cfg.Runlog.Disabled {
			var err error
			ledger, err = runlog.Open(cfg.Runlog.Path)
			if err != nil {
				return eris.Wrap(err, "render: open run ledger")
			}
			defer ledger.Close() //nolint:errcheck

			runID, err = ledger.Start(ctx, cfg.Census.WorkbookURL, cfg.Boundaries.ArchiveURL)
			if err != nil {
				return eris.Wrap(err, "render: record run start")
			}
		}

		result, err := runPipeline(ctx, output, allowUnmatched)

		if ledger != nil {
			// The ledger write must survive a cancelled pipeline context.
			finCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err != nil {
				if lerr := ledger.Fail(finCtx, runID, err.Error()); lerr != nil {
					zap.L().Warn("render: record run failure", zap.Error(lerr))
				}
			} else {
				if lerr := ledger.Complete(finCtx, runID, result); lerr != nil {
					zap.L().Warn("render: record run completion", zap.Error(lerr))
				}
			}
		}

		if err != nil {
			return err
		}

		fmt.Printf("wrote %s (%d regions, %d tidy rows, %d unmatched)\n",
			result.Output, result.Regions, result.Rows, result.Unmatched)
		return nil
	},
}

func init() {
	renderCmd.Flags().String("output", "", "output HTML path (default: from config)")
	renderCmd.Flags().Bool("allow-unmatched", false, "render regions without census counts as missing instead of failing")
	rootCmd.AddCommand(renderCmd)
}

// inputs holds the cleaned census table and loaded boundary regions, still in
// their source coordinate system.
type inputs struct {
	table  *census.Table
	totals []census.RegionTotals
	regs   []region.Region
}

// loadInputs runs acquisition and the two independent preparation stages:
// workbook download + clean, archive download + shapefile load. The returned
// cleanup releases the scoped temp directory.
func loadInputs(ctx context.Context) (*inputs, func(), error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	tmp, err := os.MkdirTemp(cfg.Fetch.TempDir, "censusmap-*")
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: create temp dir")
	}
	cleanup := func() { _ = os.RemoveAll(tmp) }

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})

	workbookPath := filepath.Join(tmp, "workbook.xlsx")
	archivePath := filepath.Join(tmp, "boundaries.zip")

	// The two inputs are independent; fetch them together.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := f.DownloadToFile(gctx, cfg.Census.WorkbookURL, workbookPath)
		if err != nil {
			return eris.Wrap(err, "pipeline: download workbook")
		}
		log.Info("downloaded workbook", zap.Int64("bytes", n))
		return nil
	})
	g.Go(func() error {
		n, err := f.DownloadToFile(gctx, cfg.Boundaries.ArchiveURL, archivePath)
		if err != nil {
			return eris.Wrap(err, "pipeline: download boundary archive")
		}
		log.Info("downloaded boundary archive", zap.Int64("bytes", n))
		return nil
	})
	if err := g.Wait(); err != nil {
		cleanup()
		return nil, nil, err
	}

	rows, err := fetcher.ReadXLSX(workbookPath, fetcher.XLSXOptions{SheetName: cfg.Census.Sheet})
	if err != nil {
		cleanup()
		return nil, nil, eris.Wrap(err, "pipeline: read workbook")
	}

	table, err := census.Clean(rows, census.RegionalSummary2013)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Info("cleaned census sheet",
		zap.Int("rows", len(table.Rows)),
		zap.Int("regions", len(table.Regions)),
	)

	shpPath, err := fetcher.ExtractShapefile(archivePath, cfg.Boundaries.ShapefileName, tmp)
	if err != nil {
		cleanup()
		return nil, nil, eris.Wrap(err, "pipeline: extract shapefile")
	}

	regs, err := region.LoadShapefile(shpPath, cfg.Boundaries.NameField)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Info("loaded boundary shapefile", zap.Int("regions", len(regs)))

	return &inputs{
		table:  table,
		totals: census.Aggregate(table),
		regs:   regs,
	}, cleanup, nil
}

// runPipeline executes the four stages and writes the artifact.
func runPipeline(ctx context.Context, output string, allowUnmatched bool) (runlog.Result, error) {
	in, cleanup, err := loadInputs(ctx)
	if err != nil {
		return runlog.Result{}, err
	}
	defer cleanup()

	regs, err := region.Reproject(in.regs, cfg.Boundaries.SourceProj4)
	if err != nil {
		return runlog.Result{}, err
	}

	verts := region.Flatten(regs)

	aliases, err := region.LoadAliases(cfg.Join.AliasFile)
	if err != nil {
		return runlog.Result{}, err
	}

	joined, err := choropleth.Join(verts, regs, in.totals, choropleth.Options{
		Aliases:        aliases,
		AllowUnmatched: allowUnmatched,
	})
	if err != nil {
		return runlog.Result{}, err
	}

	fc, err := render.FeatureCollection(joined)
	if err != nil {
		return runlog.Result{}, err
	}

	if err := render.WriteHTML(output, render.Document{
		Title:         cfg.Map.Title,
		DefaultMetric: cfg.Map.DefaultMetric,
		Collection:    fc,
	}); err != nil {
		return runlog.Result{}, err
	}

	return runlog.Result{
		Regions:   int64(len(regs)),
		Rows:      int64(len(in.table.Rows)),
		Unmatched: int64(len(choropleth.UnmatchedRegions(joined))),
		Output:    output,
	}, nil
}
