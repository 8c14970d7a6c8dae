package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/positivepasswordbook/ppbbridge/internal/history"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded backend calls",
	Long: `Manage the record of backend calls including listing, viewing, and deleting them.

Every call made with 'ppbbridge call', 'ppbbridge shell' or 'ppbbridge serve'
is stored as a JSON file unless history_enabled is false.`,
}

// openHistory loads the config and opens the history store
func openHistory() (*config.Config, *history.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := historyStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// historyListCmd represents the history list command
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded calls",
	Long:  `List recorded backend calls, most recent first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		onlyFailed, _ := cmd.Flags().GetBool("failed")

		_, store, err := openHistory()
		if err != nil {
			return err
		}
		records, err := store.List()
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No calls recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tDURATION\tACTIONS")
		fmt.Fprintln(w, "--\t-------\t------\t--------\t-------")

		for _, rec := range records {
			if onlyFailed && !rec.Failed() {
				continue
			}
			actions := strings.Join(rec.Actions, " ")
			if actions == "" {
				actions = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\n",
				rec.GetShortID(),
				rec.CreatedAt.Format("2006-01-02 15:04:05"),
				rec.Status(),
				rec.DurationMs,
				actions,
			)
		}
		w.Flush()

		fmt.Println("\nUse 'ppbbridge history show <id>' to view call details.")
		return nil
	},
}

// historyShowCmd represents the history show command
var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded call",
	Long: `Show the payload, output and status of a recorded call.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent call.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openHistory()
		if err != nil {
			return err
		}
		rec, err := store.FindByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding record: %w", err)
		}

		fmt.Printf("Call: %s\n", rec.ID)
		fmt.Printf("Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Backend: %s\n", rec.BackendPath)
		fmt.Printf("Status: %s\n", rec.Status())
		fmt.Printf("Duration: %dms\n", rec.DurationMs)
		if rec.Error != "" {
			fmt.Printf("Error: %s\n", rec.Error)
		}
		fmt.Printf("\nPayload:\n%s\n", rec.Payload)
		fmt.Printf("\nStdout:\n%s\n", rec.Stdout)
		if rec.Stderr != "" {
			fmt.Printf("\nStderr:\n%s\n", rec.Stderr)
		}
		return nil
	},
}

// historyDeleteCmd represents the history delete command
var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded call",
	Long: `Delete a recorded call permanently.

The ID can be a short ID (minimum 4 characters), full UUID, or "latest" for the most recent call.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		_, store, err := openHistory()
		if err != nil {
			return err
		}
		rec, err := store.FindByPrefix(args[0])
		if err != nil {
			return fmt.Errorf("finding record: %w", err)
		}

		if !yes && !confirm(fmt.Sprintf("Are you sure you want to delete call %s? [y/N]: ", rec.GetShortID())) {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		if err := store.Delete(rec.ID); err != nil {
			return fmt.Errorf("deleting record: %w", err)
		}

		fmt.Printf("Call %s deleted successfully.\n", rec.GetShortID())
		return nil
	},
}

// historyClearCmd represents the history clear command
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete old recorded calls",
	Long: `Delete old recorded calls permanently.

By default, deletes calls recorded more than history_retention_days (30) days ago.
Use --before to specify a different date, or --all to delete everything.

Examples:
  ppbbridge history clear                      # Older than the retention period
  ppbbridge history clear --before 2025-01-01  # Recorded before 2025-01-01
  ppbbridge history clear --all                # Delete all records`,
	RunE: func(cmd *cobra.Command, args []string) error {
		beforeDateStr, _ := cmd.Flags().GetString("before")
		deleteAll, _ := cmd.Flags().GetBool("all")
		yes, _ := cmd.Flags().GetBool("yes")

		cfg, store, err := openHistory()
		if err != nil {
			return err
		}

		var before time.Time
		var prompt string
		switch {
		case deleteAll:
			// Everything recorded up to now
			before = time.Now().Add(time.Second)
			prompt = "Are you sure you want to delete all recorded calls? [y/N]: "
		case beforeDateStr != "":
			before, err = parseDate(beforeDateStr)
			if err != nil {
				return fmt.Errorf("parsing date: %w", err)
			}
			prompt = fmt.Sprintf("Are you sure you want to delete calls recorded before %s? [y/N]: ", before.Format("2006-01-02"))
		default:
			before = time.Now().AddDate(0, 0, -cfg.HistoryRetentionDays)
			prompt = fmt.Sprintf("Are you sure you want to delete calls older than %d days (before %s)? [y/N]: ",
				cfg.HistoryRetentionDays, before.Format("2006-01-02"))
		}

		if !yes && !confirm(prompt) {
			fmt.Println("Deletion cancelled.")
			return nil
		}

		deleted, err := store.Prune(before)
		if err != nil {
			return fmt.Errorf("deleting records (%d deleted): %w", deleted, err)
		}

		fmt.Printf("Successfully deleted %d calls.\n", deleted)
		return nil
	},
}

// confirm asks a y/N question on stdout and reads the answer from stdin
func confirm(prompt string) bool {
	fmt.Print(prompt)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// parseDate parses a date string in various formats and returns a time.Time
// Supported formats: YYYY-MM-DD, YYYY-MM, YYYY
func parseDate(dateStr string) (time.Time, error) {
	// Try YYYY-MM-DD format
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}

	// Try YYYY-MM format (use first day of month)
	if t, err := time.Parse("2006-01", dateStr); err == nil {
		return t, nil
	}

	// Try YYYY format (use first day of year)
	if t, err := time.Parse("2006", dateStr); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD, YYYY-MM, or YYYY)", dateStr)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().Bool("failed", false, "Show only failed calls")
	historyDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	historyClearCmd.Flags().String("before", "", "Delete only calls recorded before this date (format: YYYY-MM-DD, YYYY-MM, or YYYY)")
	historyClearCmd.Flags().Bool("all", false, "Delete all recorded calls")
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
