package cli

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timetable_parser/internal/pipeline"
	"timetable_parser/internal/storage"
)

// syncCmd runs one full sync: fetch every configured tab, parse, publish the
// aggregate document, then feed the optional sinks.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch every configured sheet tab, parse it and publish the aggregate.",
	Long: `Sync downloads the configured spreadsheet tabs in order, parses each into
entries, and publishes the per-day aggregate JSON to the object store.
When configured, the run is also archived to SQLite, mirrored into
Postgres, appended to the ClickHouse history and announced over NATS.
Any tab fetch failure aborts the run before anything is published.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSync(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	sheetID := viper.GetString("sheet_id")
	if sheetID == "" {
		log.Fatal("sheet_id is not configured")
	}

	tabs, err := pipeline.ParseTabs(viper.GetString("tabs"))
	if err != nil {
		log.Fatalf("tabs config: %s", err)
	}

	pub, err := storage.NewPublisher(storage.ObjectStoreConfig{
		Endpoint:  viper.GetString("object_store.endpoint"),
		AccessKey: viper.GetString("object_store.access_key"),
		SecretKey: viper.GetString("object_store.secret_key"),
		Bucket:    viper.GetString("object_store.bucket"),
		UseSSL:    viper.GetBool("object_store.use_ssl"),
	})
	if err != nil {
		log.Fatalf("object store: %s", err)
	}

	p := pipeline.New(pipeline.Config{
		SheetID:   sheetID,
		Tabs:      tabs,
		ObjectKey: viper.GetString("object_store.key"),
	}, pipeline.NewSheetFetcher(), pub)
	p.SetLogger(log)

	if path := viper.GetString("archive_db"); path != "" {
		archive, err := storage.OpenArchive(path)
		if err != nil {
			log.Fatalf("archive: %s", err)
		}
		defer archive.Close()
		p.AddSink(archive)
	}

	if dsn := viper.GetString("postgres_dsn"); dsn != "" {
		pg, err := storage.OpenPostgres(ctx, dsn)
		if err != nil {
			log.Fatalf("postgres: %s", err)
		}
		defer pg.Close()
		if err := pg.CreateSchema(ctx); err != nil {
			log.Fatalf("postgres schema: %s", err)
		}
		p.AddSink(pg)
	}

	if addr := viper.GetString("clickhouse.addr"); addr != "" {
		ch, err := storage.OpenClickHouse(ctx, storage.ClickHouseConfig{
			Addr:     addr,
			Database: viper.GetString("clickhouse.database"),
			User:     viper.GetString("clickhouse.user"),
			Password: viper.GetString("clickhouse.password"),
		})
		if err != nil {
			log.Fatalf("clickhouse: %s", err)
		}
		defer ch.Close()
		if err := ch.CreateSchema(ctx); err != nil {
			log.Fatalf("clickhouse schema: %s", err)
		}
		p.AddSink(ch)
	}

	if url := viper.GetString("nats_url"); url != "" {
		notifier, err := pipeline.NewNATSNotifier(url, viper.GetString("nats_subject"))
		if err != nil {
			log.Fatalf("nats: %s", err)
		}
		defer notifier.Close()
		p.SetNotifier(notifier)
	}

	result, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("sync failed: %s", err)
	}
	log.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"key":     result.ObjectKey,
		"days":    result.Days,
		"entries": result.Entries,
	}).Info("sync complete")
}
