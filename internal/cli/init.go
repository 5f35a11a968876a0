package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/surge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file",
	Long: `Init writes a commented starter configuration to the given path,
or to surge.yaml in the current directory. The file is a complete,
runnable example: point settings.base_url at your service and go.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "surge.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		return writeStarterConfig(path, force, os.Stdout)
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
}

// writeStarterConfig saves the sample config to path unless a file is
// already there.
func writeStarterConfig(path string, force bool, w io.Writer) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := config.Save(config.Sample(), path); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote starter configuration to %s\n", path)
	fmt.Fprintf(w, "run it with: surge run %s\n", path)
	return nil
}
