package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ougirez/ayudas/internal/cache"
	"github.com/ougirez/ayudas/internal/etl"
	"github.com/ougirez/ayudas/internal/notify"
	"github.com/ougirez/ayudas/internal/pkg/store/xpgx"
)

var (
	etlSource string
	etlFormat string
	etlSheet  string
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Clean a raw dataset and load it into the star schema",
	Long: "Reads a csv, xlsx or html file, or a table of the source database, and loads new facts. " +
		"Rows already loaded by a previous run are counted as duplicates.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format := etlFormat
		if format == "" {
			format = cfg.ETL.Format
		}
		location := etlSource
		if location == "" && format == etl.FormatPostgres {
			location = cfg.Source.Table
		}
		sheet := etlSheet
		if sheet == "" {
			sheet = cfg.ETL.Sheet
		}

		var sourceDB *xpgx.Pool
		if format == etl.FormatPostgres {
			pool, closeSource, err := openSourceDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeSource()
			sourceDB = pool
		}

		src, err := etl.NewSource(etl.SourceConfig{
			Format:       format,
			Location:     location,
			CSVDelimiter: cfg.ETL.Delimiter(),
			Sheet:        sheet,
		}, sourceDB)
		if err != nil {
			return err
		}

		st, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			zap.L().Warn("query cache unavailable, results will not be invalidated", zap.Error(err))
			c = cache.Noop{}
		}
		defer c.Close()

		opts := []etl.Option{etl.WithInvalidator(c)}
		if len(cfg.Kafka.Brokers) > 0 {
			producer := notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
			defer producer.Close()
			opts = append(opts, etl.WithNotifier(producer))
		}

		report, err := etl.NewPipeline(st, opts...).Run(ctx, src)
		if err != nil {
			return eris.Wrap(err, "etl run")
		}

		out, err := sonic.ConfigDefault.MarshalIndent(report.Log(), "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal report")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

func init() {
	etlCmd.Flags().StringVar(&etlSource, "source", "", "file path, html url, or source table name")
	etlCmd.Flags().StringVar(&etlFormat, "format", "", "csv, xlsx, html or postgres (default from file extension)")
	etlCmd.Flags().StringVar(&etlSheet, "sheet", "", "xlsx sheet name (default first sheet)")
	rootCmd.AddCommand(etlCmd)
}
