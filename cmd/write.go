package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/spf13/cobra"
)

var writeFrom string

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Write raw bytes to a file",
	Long: `Write the bytes read from stdin (or from --from) to the given path.

The file is created or truncated. A path that does not exist yet or is not
absolute is reported in the log, but the write is attempted anyway.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		var data []byte
		if writeFrom != "" {
			data, err = os.ReadFile(writeFrom)
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		b, err := newBridge(cfg, false)
		if err != nil {
			return fmt.Errorf("creating bridge: %w", err)
		}
		if err := b.WriteFile(args[0], data); err != nil {
			return fmt.Errorf("writing file: %w", err)
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().StringVar(&writeFrom, "from", "", "Read content from this file instead of stdin")
}
