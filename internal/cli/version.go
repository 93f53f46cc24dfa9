package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, commit, and build date of rig.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("🔩 " + version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
