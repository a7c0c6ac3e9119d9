package cli

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

//go:embed license.txt
var licenseText string

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Print license information and the bundled third-party modules",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printLicense(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(licenseCmd)
}

func printLicense(w io.Writer) {
	fmt.Fprint(w, licenseText)

	info, ok := debug.ReadBuildInfo()
	if !ok || len(info.Deps) == 0 {
		return
	}
	fmt.Fprintln(w, "\nThird-party modules (see each module for its license):")
	for _, dep := range info.Deps {
		fmt.Fprintf(w, "  %s %s\n", dep.Path, dep.Version)
	}
}
