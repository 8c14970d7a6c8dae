package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/spf13/cobra"
)

var (
	baseDir        string
	ignoreExitCode bool
	noHistory      bool
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call [actions...]",
	Short: "Send actions to the backend",
	Long: `Send actions to the backend and print its output verbatim.

The backend executable is looked up under <base dir>/addons/ppb_backend
(ppb_backend_win.exe on Windows, ppb_backend_linux.bin elsewhere) and run as:

  <backend> server --server-text-arg '{"actions": [...], "timestamp": N}'

If no actions are given as arguments, they are read from stdin, one per line.

Examples:
  ppbbridge call get_data
  ppbbridge call login list --dir ~/.local/share/godot/app_userdata/ppb`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if cmd.Flags().Changed("ignore-exit-code") {
			cfg.IgnoreExitCode = ignoreExitCode
		}

		dir := cfg.BaseDir
		if cmd.Flags().Changed("dir") {
			dir = baseDir
		}
		dir, err = config.BaseDirOrCwd(dir)
		if err != nil {
			return err
		}

		actions := args
		if len(actions) == 0 {
			actions, err = readActions(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading actions from stdin: %w", err)
			}
		}

		b, err := newBridge(cfg, !noHistory)
		if err != nil {
			return fmt.Errorf("creating bridge: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		output, err := b.TextIO(ctx, actions, dir)
		fmt.Print(output)
		if err != nil {
			var exitErr *bridge.ExitError
			if errors.As(err, &exitErr) {
				return fmt.Errorf("backend failed: %w", err)
			}
			return fmt.Errorf("calling backend: %w", err)
		}
		return nil
	},
}

// readActions reads one action per non-empty line
func readActions(r io.Reader) ([]string, error) {
	var actions []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		actions = append(actions, line)
	}
	return actions, scanner.Err()
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&baseDir, "dir", "d", "", "Base directory containing addons/ppb_backend (default: base_dir from config, then current directory)")
	callCmd.Flags().BoolVar(&ignoreExitCode, "ignore-exit-code", false, "Treat a non-zero backend exit as success")
	callCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this call in the history")
}
