package cli

import (
	"context"
	"fmt"

	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/sjperalta/smartdebt-api/internal/repository"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import BACKUP",
		Short: "Replace the stored ledger with a backup",
		Long: `Load a backup into the storage backend configured by the environment
(STORAGE_BACKEND and friends). The current data is replaced completely,
so --yes is required. Stop the API server first.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm replacing the current data")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	state, err := readBackup(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report := ledger.Verify(state)
	if err := report.Storable(); err != nil {
		printReport(out, report)
		return err
	}
	if !report.Consistent() {
		fmt.Fprintln(out, "Warning: backup is inconsistent, importing as is")
		printReport(out, report)
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return fmt.Errorf("this replaces all %d debtors and %d transactions in the store; rerun with --yes", len(state.Debtors), len(state.Transactions))
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	repo, err := repository.NewStateRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Save(context.Background(), state); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	fmt.Fprintf(out, "Imported %d debtors and %d transactions into the %s backend\n", len(state.Debtors), len(state.Transactions), cfg.StorageBackend)
	return nil
}
