package cli

import (
	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard for the managed instance",
	Long:  "Open a terminal dashboard that follows the recorded instance: liveness, endpoint state, open work, and resource usage.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
