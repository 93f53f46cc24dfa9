package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/statefile"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the recorded instance",
	Long: "Stop the instance recorded by a previous 'rig up' or 'rig exec --keep'.\n" +
		"Teardown is best effort: a polite shutdown request first, signals after.",
	Args: cobra.NoArgs,
	RunE: runDown,
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig()
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := statefile.NewStore()
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}

	rec, err := store.Load()
	if errors.Is(err, statefile.ErrNoInstance) {
		fmt.Println("🔩 No instance recorded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read instance state: %w", err)
	}

	stopRecorded(rec, cfg.StopGrace())
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear instance state: %w", err)
	}

	fmt.Printf("🔩 Instance stopped (pid %d)\n", rec.PID)
	return nil
}

func init() {
	rootCmd.AddCommand(downCmd)
}
