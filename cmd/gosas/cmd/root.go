package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gosas",
	Short: "A SAS-subset batch interpreter",
	Long: `gosas runs a subset of the SAS language: DATA steps with RETAIN,
arrays, DO loops, IF/THEN/ELSE, and a BY-key MERGE, plus PROC SORT, PROC
PRINT, PROC MEANS, and PROC FREQ.

A run produces a log (NOTE/WARNING/ERROR lines, one block per step) and a
listing (PROC PRINT/MEANS/FREQ output), the way a real SAS batch job does.`,
	Version: Version,
}

// Execute runs the root command. The batch flags may be written with a
// single dash (-sas=PATH, -log=PATH, -lst=PATH); they are rewritten to the
// double-dash form cobra parses.
func Execute() error {
	args := append([]string(nil), os.Args[1:]...)
	for i, a := range args {
		for _, name := range []string{"sas", "log", "lst"} {
			if strings.HasPrefix(a, "-"+name+"=") {
				args[i] = "-" + a
			}
		}
	}
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
