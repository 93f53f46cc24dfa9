package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/driver"
	"github.com/tessro/rig/internal/proc"
	"github.com/tessro/rig/internal/statefile"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recorded instance's status",
	Long:  "Display the recorded instance and whether it still answers its automation endpoint.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := statefile.NewStore()
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}

	rec, err := store.Load()
	if errors.Is(err, statefile.ErrNoInstance) {
		fmt.Println("🔩 No instance recorded")
		fmt.Println("Launch one with: rig up")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read instance state: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	state, err := driver.New(rec.Endpoint).FetchState(ctx)
	if err != nil {
		if proc.Alive(rec.PID) {
			fmt.Printf("🔩 Instance recorded but not answering (pid %d, endpoint %s)\n", rec.PID, rec.Endpoint)
		} else {
			fmt.Printf("🔩 Recorded instance is gone (was pid %d)\n", rec.PID)
			fmt.Println("Clear the record with: rig down")
		}
		return nil
	}

	uptime := time.Since(state.StartedAt).Truncate(time.Second)
	fmt.Printf("🔩 Instance running (pid %d, uptime %s)\n\n", rec.PID, uptime)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LAUNCH\tVERSION\tENDPOINT\tOPEN WORK")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", rec.LaunchID, state.Version, rec.Endpoint, state.OpenWork)
	_ = w.Flush()

	if rec.LogPath != "" {
		fmt.Printf("\nApp log: %s\n", rec.LogPath)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
