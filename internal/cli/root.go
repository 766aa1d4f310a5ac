package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/models"
	"github.com/spf13/cobra"
)

// errInconsistent makes verify exit non-zero without printing usage
var errInconsistent = errors.New("backup is inconsistent")

// NewRootCmd builds the smartdebt command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "smartdebt",
		Short: "Offline tools for SmartDebt backups",
		Long: `Offline tools for SmartDebt backup files.
Verify a backup's balances, export it to CSV, Excel or PDF, or load it
into the configured storage backend without running the API server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("tz", "Asia/Ho_Chi_Minh", "Time zone for dates in exports")

	root.AddCommand(newVerifyCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	return root
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInconsistent) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// readBackup loads a backup file and checks it has both containers
func readBackup(path string) (models.AppState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.AppState{}, fmt.Errorf("read backup: %w", err)
	}
	candidate, err := ledger.DecodeCandidate(data)
	if err != nil {
		return models.AppState{}, err
	}
	return ledger.ReplaceState(candidate)
}

func location(cmd *cobra.Command) (*time.Location, error) {
	name, _ := cmd.Flags().GetString("tz")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}
