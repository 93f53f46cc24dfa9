package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/instance"
)

var upFresh bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Launch the managed instance and leave it running",
	Long: "Launch the managed application instance and return once it answers its\n" +
		"automation endpoint. The instance keeps running after rig exits; stop it\n" +
		"with 'rig down'.",
	Args: cobra.NoArgs,
	RunE: runUp,
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if rec, alive := recordedInstance(ctx); alive {
		if !upFresh {
			fmt.Printf("🔩 Instance already up (pid %d, endpoint %s)\n", rec.PID, rec.Endpoint)
			return nil
		}
		stopRecorded(rec, cfg.StopGrace())
	}

	mgrCfg, err := managerConfig(cfg)
	if err != nil {
		return err
	}
	mgr, err := instance.New(mgrCfg)
	if err != nil {
		return err
	}

	h, err := mgr.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("launch instance: %w", err)
	}

	fmt.Printf("🔩 Instance up: version %s, pid %d, endpoint %s\n", h.Version(), h.PID(), h.Endpoint())
	if h.LogPath() != "" {
		fmt.Printf("   App log: %s\n", h.LogPath())
	}
	fmt.Println("   Stop it with: rig down")
	return nil
}

func init() {
	upCmd.Flags().BoolVar(&upFresh, "fresh", false, "Replace an already-running instance")
	rootCmd.AddCommand(upCmd)
}
