package cli

import (
	"fmt"
	"io"

	"github.com/sjperalta/smartdebt-api/internal/ledger"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify BACKUP",
		Short: "Check a backup's balances and references",
		Long: `Recompute every debtor's balance from its transactions and report
mismatches, dangling transactions and duplicate ids. Exits non-zero
when anything is wrong. Nothing is repaired.`,
		Args: cobra.ExactArgs(1),
		RunE: runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	state, err := readBackup(args[0])
	if err != nil {
		return err
	}

	report := ledger.Verify(state)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Debtors: %d, transactions: %d\n", len(state.Debtors), len(state.Transactions))
	if report.Consistent() {
		fmt.Fprintln(out, "OK: backup is consistent")
		return nil
	}

	printReport(out, report)
	return errInconsistent
}

func printReport(out io.Writer, r ledger.Report) {
	for _, m := range r.Mismatches {
		fmt.Fprintf(out, "balance mismatch: %s (%s) stored %d, computed %d\n", m.DebtorID, m.Name, m.Stored, m.Computed)
	}
	for _, id := range r.DanglingTransactions {
		fmt.Fprintf(out, "dangling transaction: %s\n", id)
	}
	for _, id := range r.DuplicateDebtorIDs {
		fmt.Fprintf(out, "duplicate debtor id: %s\n", id)
	}
	for _, id := range r.DuplicateTransactionIDs {
		fmt.Fprintf(out, "duplicate transaction id: %s\n", id)
	}
	for _, id := range r.InvalidAmounts {
		fmt.Fprintf(out, "invalid amount: %s\n", id)
	}
	for _, id := range r.InvalidDebtorTypes {
		fmt.Fprintf(out, "invalid debtor type: %s\n", id)
	}
	for _, id := range r.InvalidTransactionTypes {
		fmt.Fprintf(out, "invalid transaction type: %s\n", id)
	}
}
