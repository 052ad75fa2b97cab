package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-algol/internal/translator"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	debugFlag   bool
	errorMax    int
	lineWidth   int
	outputFile  string
	noTimestamp bool
	noWarn      bool
)

var rootCmd = &cobra.Command{
	Use:   "algolc [file]",
	Short: "Algol 60 to C translator",
	Long: `algolc translates programs written in the Algol 60 reference
language (hardware representation of the IFIP Modified Report) into
portable C source code. The emitted code is a single translation unit
that includes "algol.h" and links against the accompanying runtime
library.

The whole input is read into memory once and scanned twice, so the
source may also come from standard input or a pipe.`,
	Version:      Version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         translate,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().BoolP("version", "v", false, "display translator version and exit")
	rootCmd.Flags().BoolVarP(&debugFlag, "debug", "d", false, "run translator in debug mode")
	rootCmd.Flags().IntVarP(&errorMax, "errormax", "e", 0, "maximal error allowance (0 <= nnn <= 255; 0 = continue translation in any case)")
	rootCmd.Flags().IntVarP(&lineWidth, "linewidth", "l", 72, "desirable output line width (50 <= nnn <= 255)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "send output C code to file (default: standard output)")
	rootCmd.Flags().BoolVarP(&noTimestamp, "notimestamp", "t", false, "suppress time stamp in output C code")
	rootCmd.Flags().BoolVarP(&noWarn, "nowarn", "w", false, "suppress all warning messages")
}

func translate(_ *cobra.Command, args []string) error {
	if errorMax < 0 || errorMax > 255 {
		return fmt.Errorf("invalid error count %d", errorMax)
	}
	if lineWidth < 50 || lineWidth > 255 {
		return fmt.Errorf("invalid line width %d", lineWidth)
	}

	inName := "(stdin)"
	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("unable to open input file: %w", err)
		}
		defer f.Close()
		inName = args[0]
		in = f
	}
	src, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read error on `%s': %w", inName, err)
	}

	outName := "(stdout)"
	var out io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("unable to open output file: %w", err)
		}
		defer f.Close()
		outName = outputFile
		out = f
	}

	tr := translator.New(string(src), out, os.Stderr, translator.Options{
		InputName:   inName,
		OutputName:  outName,
		Version:     Version,
		Debug:       debugFlag,
		ErrorMax:    errorMax,
		LineWidth:   lineWidth,
		NoTimestamp: noTimestamp,
		NoWarn:      noWarn,
	})
	if err := tr.Translate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("translation failed")
	}
	return nil
}
