package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"timetable_parser/internal/scanner"
	"timetable_parser/internal/timetable"
)

// parseCmd runs the engine over a local grid export and prints the entries.
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a local timetable grid export into entries.",
	Long: `Parse reads a delimiter-separated grid export from a file (or stdin when
no file is given) and prints the decoded entries as JSON.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var input []byte
		var err error
		if len(args) == 1 {
			input, err = os.ReadFile(args[0])
		} else {
			input, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			log.Fatalf("read input: %s", err)
		}

		entries := scanner.New().Parse(string(input))
		if entries == nil {
			entries = []timetable.Entry{}
		}
		log.WithField("entries", len(entries)).Info("parsed grid")

		pretty, _ := cmd.Flags().GetBool("pretty")
		var out []byte
		if pretty {
			out, err = json.MarshalIndent(entries, "", "  ")
		} else {
			out, err = json.Marshal(entries)
		}
		if err != nil {
			log.Fatalf("encode entries: %s", err)
		}

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			if err := os.WriteFile(output, out, 0o644); err != nil {
				log.Fatalf("write output: %s", err)
			}
			return
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("output", "o", "", "Write entries to a file instead of stdout")
	parseCmd.Flags().BoolP("pretty", "p", false, "Indent the JSON output")
}
