package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ksim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled runs",
	Long: `List the runs stored in a SQLite journal, or the transactions of one run.

Examples:
  ksim journal --db runs.db
  ksim journal --db runs.db --run 6f1c...
  ksim journal --db runs.db --run 6f1c... --org`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

var (
	journalDBPath string
	journalRunID  string
	journalOrg    bool
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVarP(&journalDBPath, "db", "d", "./ksim.sqlite", "path to SQLite journal DB")
	journalCmd.Flags().StringVarP(&journalRunID, "run", "r", "", "run id to list")
	journalCmd.Flags().BoolVar(&journalOrg, "org", false, "print an org-mode summary of the run")
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if journalRunID == "" {
		runs, err := j.ListRuns(ctx)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		for _, r := range runs {
			fmt.Fprintln(out, r)
		}
		return nil
	}

	recs, err := j.ListTransactions(ctx, journalRunID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("run %s has no transactions", journalRunID)
	}
	if !journalOrg {
		printRecords(out, recs)
		return nil
	}

	eq, err := j.ListEquity(ctx, journalRunID)
	if err != nil {
		return fmt.Errorf("list equity: %w", err)
	}
	initial, final := 0.0, 0.0
	if len(eq) > 0 {
		initial, final = eq[0].AssetValue, eq[len(eq)-1].AssetValue
	}
	sum := journal.Summarize(recs, initial, final)
	sum.RunID = journalRunID
	org, err := sum.FormatOrg()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, org)
	return nil
}
