package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/gosas/internal/catalog"
	"github.com/cwbudde/gosas/internal/interp"
	"github.com/cwbudde/gosas/internal/lexer"
	"github.com/cwbudde/gosas/internal/parser"
	"github.com/cwbudde/gosas/internal/sink"
	"github.com/spf13/cobra"
)

var (
	sasPath string
	logPath string
	lstPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a gosas program",
	Long: `Run a gosas program, either in batch mode or interactively.

Batch mode (all three flags given):
  gosas run -sas=program.sas -log=program.log -lst=program.lst

Interactive mode (no flags): reads one program from stdin and writes the
log and listing to stdout.`,
	RunE: runBatchOrInteractive,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&sasPath, "sas", "", "path to the input .sas program (batch mode)")
	runCmd.Flags().StringVar(&logPath, "log", "", "path to write the run log (batch mode)")
	runCmd.Flags().StringVar(&lstPath, "lst", "", "path to write the PROC listing (batch mode)")
}

func runBatchOrInteractive(_ *cobra.Command, _ []string) error {
	if sasPath != "" || logPath != "" || lstPath != "" {
		if sasPath == "" || logPath == "" || lstPath == "" {
			return fmt.Errorf("-sas, -log, and -lst must all be given together for batch mode")
		}
		return runBatch(sasPath, logPath, lstPath)
	}
	return runInteractive(os.Stdin, os.Stdout, os.Stderr)
}

func runBatch(sasPath, logPath, lstPath string) error {
	source, err := os.ReadFile(sasPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sasPath, err)
	}

	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", logPath, err)
	}
	defer logFile.Close()

	lstFile, err := os.Create(lstPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", lstPath, err)
	}
	defer lstFile.Close()

	status := execute(string(source), sink.NewFileSink(logFile), sink.NewFileSink(lstFile))
	if status >= interp.ExitError {
		return fmt.Errorf("run completed with errors (exit status %d)", status)
	}
	return nil
}

// runInteractive reads one program from in and writes both the log and the
// listing to out; errOut only receives the exit-status line of a run that
// ended with errors. This matches gosas's single-shot "no units, no REPL
// loop" scope.
func runInteractive(in io.Reader, out, errOut io.Writer) error {
	source, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	status := execute(string(source), sink.NewConsoleSink(out), sink.NewConsoleSink(out))
	if status >= interp.ExitError {
		fmt.Fprintf(errOut, "run completed with errors (exit status %d)\n", status)
	}
	return nil
}

func execute(source string, log, listing sink.Sink) interp.ExitStatus {
	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			log.Writeln(sink.LevelError, "ERROR: "+e.String())
		}
		return interp.ExitParseFailure
	}

	ip := interp.New(catalog.New(), log, listing)
	return ip.Run(prog, source)
}
