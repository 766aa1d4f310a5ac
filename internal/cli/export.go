package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/sjperalta/smartdebt-api/internal/services"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "export FORMAT BACKUP",
		Short:     "Export a backup as csv, xlsx or pdf",
		Long:      `Render the debtor table of a backup file. Without -o the file is written to stdout.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"csv", "xlsx", "pdf"},
		RunE:      runExport,
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	format, path := args[0], args[1]
	loc, err := location(cmd)
	if err != nil {
		return err
	}
	state, err := readBackup(path)
	if err != nil {
		return err
	}

	f := services.NewFormatter(loc)
	var data []byte
	switch format {
	case "csv":
		data = services.DebtorsCSV(state.Debtors, f)
	case "xlsx":
		data, err = services.DebtorsXLSX(state.Debtors, f)
	case "pdf":
		data, err = services.SummaryPDF(state, time.Now(), f)
	default:
		return fmt.Errorf("unknown format %q: use csv, xlsx or pdf", format)
	}
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d debtors)\n", output, len(state.Debtors))
	return nil
}
