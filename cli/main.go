package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zhaobenny/stayboard/cli/internal/config"
	"github.com/zhaobenny/stayboard/cli/internal/output"
	"github.com/zhaobenny/stayboard/internal/aggregator"
	"github.com/zhaobenny/stayboard/internal/model"
	"github.com/zhaobenny/stayboard/internal/parser"
	"github.com/zhaobenny/stayboard/internal/report"
)

const version = "0.1.0"

// columnFlags registers the column name overrides shared by both commands
func columnFlags(fs *flag.FlagSet, c *parser.Columns) {
	fs.StringVar(&c.Facility, "facility-col", "", "Facility column name")
	fs.StringVar(&c.CheckIn, "checkin-col", "", "Check-in date column name")
	fs.StringVar(&c.BookedOn, "booked-col", "", "Booking date column name")
	fs.StringVar(&c.Sale, "sale-col", "", "Sale amount column name")
	fs.StringVar(&c.Nights, "nights-col", "", "Nights column name")
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "config" {
		runConfig(args[1:])
		return
	}

	fs := flag.NewFlagSet("stayboard", flag.ExitOnError)

	var (
		jsonOut    bool
		exportPath string
		encoding   string
		currency   string
		dayUnit    string
		compact    bool
		columns    parser.Columns
		showHelp   bool
		showVer    bool
	)

	fs.BoolVar(&jsonOut, "json", false, "Output as JSON")
	fs.StringVar(&exportPath, "export", "", "Also write the summary CSV to this path")
	fs.StringVar(&encoding, "encoding", "", "Input encoding: auto, utf-8 or shift_jis")
	fs.StringVar(&currency, "currency", "", "Currency unit shown after amounts (default 円)")
	fs.StringVar(&dayUnit, "day-unit", "", "Unit shown after lead times (default 日)")
	fs.BoolVar(&compact, "compact", false, "Force compact table output")
	fs.BoolVar(&compact, "c", false, "Force compact table output")
	columnFlags(fs, &columns)
	fs.BoolVar(&showHelp, "help", false, "Show help")
	fs.BoolVar(&showHelp, "h", false, "Show help")
	fs.BoolVar(&showVer, "version", false, "Show version")
	fs.BoolVar(&showVer, "v", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `stayboard - monthly sales summary by facility

Usage: stayboard [options] <file.csv>
       stayboard config [options]

Reads a bookings CSV ("-" for stdin) and prints revenue, nights, average
nightly rate, average lead time and occupancy per month and facility.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  stayboard sales.csv
  stayboard --json sales.csv
  stayboard --export monthly-summary-by-facility.csv sales.csv
  stayboard --encoding shift_jis --sale-col amount sales.csv
  stayboard config --currency JPY
`)
	}

	fs.Parse(args)

	if showVer {
		fmt.Printf("stayboard version %s\n", version)
		return
	}

	if showHelp || fs.NArg() != 1 {
		fs.Usage()
		if !showHelp {
			os.Exit(2)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if encoding == "" {
		encoding = cfg.Encoding
	}
	if currency == "" {
		currency = cfg.CurrencyUnit
	}
	if currency == "" {
		currency = report.DefaultCurrencyUnit
	}
	if dayUnit == "" {
		dayUnit = valueOr(cfg.DayUnit, report.DefaultDayUnit)
	}

	enc, err := parser.ParseEncoding(encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := parser.Options{
		Columns:  columns.Merge(cfg.Columns).Merge(parser.DefaultColumns()),
		Encoding: enc,
	}

	var in io.Reader = os.Stdin
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	bookings, stats, err := parser.LoadCSV(in, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", fs.Arg(0), err)
		os.Exit(1)
	}

	results := aggregator.Summarize(bookings)

	if exportPath != "" {
		if err := writeExport(exportPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing export: %v\n", err)
			os.Exit(1)
		}
	}

	if jsonOut {
		if err := output.PrintJSON(os.Stdout, results, stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	output.PrintStats(os.Stderr, stats)
	output.PrintTable(os.Stdout, results, report.NewFormatter(currency, dayUnit), output.TableOptions{ForceCompact: compact})
	if exportPath != "" {
		fmt.Printf("Summary written to %s\n", exportPath)
	}
}

func writeExport(path string, results []model.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	var (
		encoding string
		currency string
		dayUnit  string
		columns  parser.Columns
		show     bool
	)
	fs.StringVar(&encoding, "encoding", "", "Default input encoding: auto, utf-8 or shift_jis")
	fs.StringVar(&currency, "currency", "", "Default currency unit")
	fs.StringVar(&dayUnit, "day-unit", "", "Default lead time unit")
	columnFlags(fs, &columns)
	fs.BoolVar(&show, "show", false, "Show current configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: stayboard config [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  stayboard config --encoding shift_jis --currency JPY --day-unit days
  stayboard config --facility-col property --nights-col nights
  stayboard config --show
`)
	}

	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if show {
		path, _ := config.Path()
		cols := cfg.Columns.Merge(parser.DefaultColumns())
		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Encoding: %s\n", valueOr(cfg.Encoding, string(parser.EncodingAuto)))
		fmt.Printf("Currency unit: %s\n", valueOr(cfg.CurrencyUnit, report.DefaultCurrencyUnit))
		fmt.Printf("Day unit: %s\n", valueOr(cfg.DayUnit, report.DefaultDayUnit))
		fmt.Printf("Columns: facility=%s check_in=%s booked_on=%s sale=%s nights=%s\n",
			cols.Facility, cols.CheckIn, cols.BookedOn, cols.Sale, cols.Nights)
		return
	}

	if encoding == "" && currency == "" && dayUnit == "" && columns == (parser.Columns{}) {
		fs.Usage()
		return
	}

	if encoding != "" {
		if _, err := parser.ParseEncoding(encoding); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Encoding = encoding
	}
	if currency != "" {
		cfg.CurrencyUnit = currency
	}
	if dayUnit != "" {
		cfg.DayUnit = dayUnit
	}
	cfg.Columns = columns.Merge(cfg.Columns)

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration saved.")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
