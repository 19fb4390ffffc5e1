package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sheetio/internal/config"
	"sheetio/internal/infrastructure"
	"sheetio/internal/services"
	"sheetio/pkg/contracts"
	"sheetio/pkg/spreadsheet"
)

// cliOptions are the flags shared by every command
type cliOptions struct {
	verbose bool

	sheet       int
	allSheets   bool
	noHeader    bool
	delimiter   string
	enclosure   string
	encoding    string
	bom         bool
	headerBold  bool
	headerFill  string
	unsupported string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "sheetconv",
		Short: "Convert between CSV, XLSX and ODS files",
		Long: `Read and write spreadsheets from the command line.

Commands:
  convert  Read a sheet (or every sheet) of one file and write it as another.
  inspect  List the sheets of a file with their record counts.

The format of each file follows its extension (.csv, .xlsx, .ods).

Examples:
  sheetconv convert people.csv people.xlsx --header-bold --header-fill FFFF00
  sheetconv convert book.ods book.xlsx --all-sheets
  sheetconv convert export.csv clean.csv --delimiter ';' --encoding windows-1252
  sheetconv inspect book.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log conversion details to stderr")

	flags := root.PersistentFlags()
	flags.IntVar(&opts.sheet, "sheet", 0, "1-based sheet to read (default from config)")
	flags.BoolVar(&opts.noHeader, "no-header", false, "Treat the first row as data and use column numbers as keys")
	flags.StringVar(&opts.delimiter, "delimiter", "", "CSV field delimiter")
	flags.StringVar(&opts.enclosure, "enclosure", "", "CSV enclosure character")
	flags.StringVar(&opts.encoding, "encoding", "", "CSV character encoding")

	root.AddCommand(newConvertCmd(opts), newInspectCmd(opts), newVersionCmd())
	return root
}

func newConvertCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a spreadsheet file to another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd, opts)
			if err != nil {
				return err
			}

			req := &services.ConvertRequest{
				Input:          args[0],
				Output:         args[1],
				AllSheets:      opts.allSheets,
				SessionOptions: opts.session(cmd),
			}
			result, err := svc.Convert(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.allSheets, "all-sheets", false, "Convert every sheet instead of one")
	cmd.Flags().BoolVar(&opts.bom, "bom", true, "Write a byte order mark in unicode CSV output")
	cmd.Flags().BoolVar(&opts.headerBold, "header-bold", false, "Bold the header row of XLSX and ODS output")
	cmd.Flags().StringVar(&opts.headerFill, "header-fill", "", "Header row background color as hex RGB")
	cmd.Flags().StringVar(&opts.unsupported, "unsupported", "", "What to do with unsupported cell values: drop or blank")
	return cmd
}

func newInspectCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <input>",
		Short: "List the sheets of a spreadsheet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd, opts)
			if err != nil {
				return err
			}

			sheets, err := svc.Inspect(cmd.Context(), args[0], opts.session(cmd))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tNAME\tROWS")
			for _, s := range sheets {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", s.Index, s.Name, s.Rows)
			}
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString("sheetconv"))
		},
	}
}

// session turns the flags into request overrides. Only flags the user
// set override the configured defaults.
func (o *cliOptions) session(cmd *cobra.Command) services.SessionOptions {
	s := services.SessionOptions{
		Sheet:       o.sheet,
		Unsupported: o.unsupported,
	}
	if o.noHeader {
		withHeader := false
		s.WithHeader = &withHeader
	}

	csv := &services.CSVOptions{
		Delimiter: o.delimiter,
		Enclosure: o.enclosure,
		Encoding:  o.encoding,
	}
	if f := cmd.Flags().Lookup("bom"); f != nil && f.Changed {
		bom := o.bom
		csv.BOM = &bom
	}
	if *csv != (services.CSVOptions{}) {
		s.CSV = csv
	}

	if o.headerBold || o.headerFill != "" {
		s.HeaderStyle = &services.StyleOptions{Bold: o.headerBold, FillColor: o.headerFill}
	}
	return s
}

func newService(cmd *cobra.Command, opts *cliOptions) (*services.ConversionService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logging := cfg.Logging
	logging.Output = "console"
	logging.Format = "text"
	logging.Level = "warn"
	if opts.verbose {
		logging.Level = "debug"
	}
	logger, err := infrastructure.NewLogger(logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("Configuration loaded", slog.String("version", config.AppVersion))

	return services.NewConversionService(cfg, nil, spreadsheet.Telemetry{}, logger)
}
