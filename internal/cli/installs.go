package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tessro/rig/internal/locate"
)

var installsCmd = &cobra.Command{
	Use:   "installs",
	Short: "Manage registered app installs",
	Long:  "Commands for the registry that maps release versions to installed executables.",
}

var installsAddExe string

var installsAddCmd = &cobra.Command{
	Use:   "add <version> <dir>",
	Short: "Register an install",
	Long:  "Register an installed release so rig can resolve its executable by version.",
	Args:  cobra.ExactArgs(2),
	RunE:  runInstallsAdd,
}

var installsRemoveCmd = &cobra.Command{
	Use:   "remove <version>",
	Short: "Remove an install from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstallsRemove,
}

var installsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered installs",
	Args:  cobra.NoArgs,
	RunE:  runInstallsList,
}

func runInstallsAdd(cmd *cobra.Command, args []string) error {
	version, dir := args[0], args[1]

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", absDir)
		}
		return fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", absDir)
	}

	loc, err := locate.New()
	if err != nil {
		return fmt.Errorf("open installs registry: %w", err)
	}
	if err := loc.Add(version, absDir, installsAddExe); err != nil {
		return fmt.Errorf("add install: %w", err)
	}

	install, err := loc.Resolve(version)
	if err != nil {
		fmt.Printf("🔩 Registered %s at %s\n", version, absDir)
		fmt.Printf("   Warning: executable not resolvable yet: %v\n", err)
		return nil
	}

	fmt.Printf("🔩 Registered %s\n", version)
	fmt.Printf("   Executable: %s\n", install.Exe)
	return nil
}

func runInstallsRemove(cmd *cobra.Command, args []string) error {
	loc, err := locate.New()
	if err != nil {
		return fmt.Errorf("open installs registry: %w", err)
	}
	if err := loc.Remove(args[0]); err != nil {
		return fmt.Errorf("remove install: %w", err)
	}
	fmt.Printf("🔩 Removed %s\n", args[0])
	return nil
}

func runInstallsList(cmd *cobra.Command, args []string) error {
	loc, err := locate.New()
	if err != nil {
		return fmt.Errorf("open installs registry: %w", err)
	}

	installs := loc.List()
	if len(installs) == 0 {
		fmt.Println("No installs registered.")
		fmt.Println("Register one with: rig installs add <version> <dir>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tEXECUTABLE\tDIR")
	for _, in := range installs {
		exe := in.Exe
		if exe == "" {
			exe = "(unresolved)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", in.Version, exe, in.Dir)
	}
	_ = w.Flush()
	return nil
}

func init() {
	installsAddCmd.Flags().StringVar(&installsAddExe, "exe", "", "Executable name inside the install dir (default: from release.yaml)")

	installsCmd.AddCommand(installsAddCmd)
	installsCmd.AddCommand(installsRemoveCmd)
	installsCmd.AddCommand(installsListCmd)
	rootCmd.AddCommand(installsCmd)
}
