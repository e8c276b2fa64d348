package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timetable_parser/internal/api"
	"timetable_parser/internal/scanner"
	"timetable_parser/internal/storage"
)

// serveCmd exposes the parser and the published timetable over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser and the published timetable over HTTP.",
	Long: `Serve starts an HTTP server with a health check, an ad-hoc parse endpoint
(POST a raw grid export) and, when postgres_dsn is configured, read access
to the currently published timetable.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var pg *storage.PostgresDB
		if dsn := viper.GetString("postgres_dsn"); dsn != "" {
			var err error
			pg, err = storage.OpenPostgres(ctx, dsn)
			if err != nil {
				log.Fatalf("postgres: %s", err)
			}
			defer pg.Close()
		}

		port, _ := cmd.Flags().GetInt("port")
		server := api.NewServer(scanner.New(), pg, port, log)
		if err := server.Run(); err != nil {
			log.Fatalf("api server: %s", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8082, "Port to listen on")
}
