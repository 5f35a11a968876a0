package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/surge/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a configuration file without running it",
	Long: `Validate loads a configuration file, checks it against the schema,
and verifies that the rate pattern and workloads are well formed. It
reports every problem it finds, not just the first one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateConfig(args[0], os.Stdout)
	},
}

// validateConfig loads and builds the config at path, printing a short
// summary on success. Build runs too so rate parameters and workload
// definitions get the same scrutiny they would at run time.
func validateConfig(path string, w io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	rc, pattern, scenarios, err := config.Build(cfg)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(w, "%s %s is valid\n", green("✓"), path)
	fmt.Fprintf(w, "  pattern:   %s\n", pattern.Name())
	fmt.Fprintf(w, "  workloads: %d\n", len(scenarios))
	fmt.Fprintf(w, "  duration:  %s (+%s warmup)\n", rc.Duration, rc.Warmup)
	return nil
}
