// Package cli implements the timetable command tree.
package cli

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// log is the shared logger; level is set from the --loglevel flag.
var log = logrus.New()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Parse university timetable grid exports and publish the aggregate schedule.",
	Long: `timetable ingests delimiter-separated exports of the university's weekly
timetable spreadsheet, decodes each room/slot cell into normalized class
sessions, and publishes the per-day aggregate as one JSON document.

Subcommands parse a local export, run the full fetch/parse/publish sync,
or serve the parser over HTTP.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.timetable.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".timetable")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %s\n", err)
		}
	}

	// Set default empty values for all keys.
	viper.SetDefault("sheet_id", "")
	viper.SetDefault("tabs", "[]")
	viper.SetDefault("object_store.endpoint", "")
	viper.SetDefault("object_store.access_key", "")
	viper.SetDefault("object_store.secret_key", "")
	viper.SetDefault("object_store.bucket", "")
	viper.SetDefault("object_store.use_ssl", true)
	viper.SetDefault("object_store.key", "")
	viper.SetDefault("postgres_dsn", "")
	viper.SetDefault("clickhouse.addr", "")
	viper.SetDefault("clickhouse.database", "default")
	viper.SetDefault("clickhouse.user", "default")
	viper.SetDefault("clickhouse.password", "")
	viper.SetDefault("nats_url", "")
	viper.SetDefault("nats_subject", "")
	viper.SetDefault("archive_db", "")

	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	setLogLevel(levelString)
}

func setLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}
