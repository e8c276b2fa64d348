// Command timetable parses university timetable grid exports and runs the
// fetch/parse/publish sync pipeline.
package main

import "timetable_parser/internal/cli"

func main() {
	cli.Execute()
}
