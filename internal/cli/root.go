package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/paths"
)

// rigDir and verbose are the global persistent flag values.
var (
	rigDir  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rig",
	Short: "Test rig for a managed application instance",
	Long: "rig launches, recycles, and retires the single application instance\n" +
		"integration tests run against. It keeps launches clean and treats\n" +
		"teardown as best effort.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set RIG_DIR so every path helper picks up the override.
		if rigDir != "" {
			if err := os.Setenv(paths.EnvRigDir, rigDir); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rigDir, "rig-dir", "", "base directory for rig data (overrides ~/.rig)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "mirror log output to stderr")
}

func Execute() error {
	return rootCmd.Execute()
}
