package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/instance"
	"github.com/tessro/rig/internal/observability"
)

var (
	execFresh       bool
	execFreshEach   bool
	execRuns        int
	execKeep        bool
	execMetricsAddr string
)

var execCmd = &cobra.Command{
	Use:   "exec [flags] -- <command> [args...]",
	Short: "Run a command against a managed instance",
	Long: "Launch (or reuse) the managed application instance, export its endpoint\n" +
		"to the command's environment, and run the command. With --runs the command\n" +
		"repeats, reusing the instance between runs when it stays healthy.",
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := loadConfig()
	if err != nil {
		return err
	}
	defer cleanup()

	addr := execMetricsAddr
	if addr == "" {
		addr = cfg.MetricsAddr()
	}
	if addr != "" {
		srv := observability.StartServer(addr)
		defer srv.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if rec, alive := recordedInstance(ctx); alive {
		return fmt.Errorf("an instance from a previous run is still up (pid %d, %s); run 'rig down' first",
			rec.PID, rec.Endpoint)
	}

	mgrCfg, err := managerConfig(cfg)
	if err != nil {
		return err
	}
	mgr, err := instance.New(mgrCfg)
	if err != nil {
		return err
	}
	if !execKeep {
		defer mgr.Close()
	}

	failures := 0
	for run := 1; run <= execRuns; run++ {
		var h *instance.Handle
		if execFreshEach || (run == 1 && execFresh) {
			h, err = mgr.AcquireFresh(ctx)
		} else {
			h, err = mgr.Acquire(ctx)
		}
		if err != nil {
			return fmt.Errorf("acquire instance: %w", err)
		}

		if execRuns > 1 {
			fmt.Printf("🔩 Run %d/%d against instance %s (pid %d)\n", run, execRuns, h.LaunchID(), h.PID())
		}

		if err := runAgainst(ctx, h, args); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "🔩 Run %d/%d failed: %v\n", run, execRuns, err)
		}
	}

	if execKeep {
		fmt.Println("🔩 Instance left running; stop it with: rig down")
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d runs failed", failures, execRuns)
	}
	return nil
}

// runAgainst executes one command with the instance's coordinates exported.
func runAgainst(ctx context.Context, h *instance.Handle, args []string) error {
	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = append(os.Environ(), instanceEnv(h.Endpoint(), h.LaunchID(), h.Version(), h.PID())...)

	err := c.Run()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return fmt.Errorf("exit status %d", exit.ExitCode())
	}
	return err
}

func init() {
	execCmd.Flags().BoolVar(&execFresh, "fresh", false, "Replace any held instance before the first run")
	execCmd.Flags().BoolVar(&execFreshEach, "fresh-each", false, "Replace the instance before every run")
	execCmd.Flags().IntVar(&execRuns, "runs", 1, "How many times to run the command")
	execCmd.Flags().BoolVar(&execKeep, "keep", false, "Leave the instance running afterwards")
	execCmd.Flags().StringVar(&execMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address for the session")
	rootCmd.AddCommand(execCmd)
}
