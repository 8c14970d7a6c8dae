package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/spf13/cobra"
)

// textIOer is the bridge call used by the interactive shell
type textIOer interface {
	TextIO(ctx context.Context, actions []string, baseDir string) (string, error)
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Send actions interactively",
	Long: `Start an interactive loop. Each line is split on whitespace and the
words are sent to the backend as one call.

Examples:
  ppbbridge shell
  ppbbridge shell --dir ~/.local/share/godot/app_userdata/ppb`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		dir := cfg.BaseDir
		if cmd.Flags().Changed("dir") {
			dir = baseDir
		}
		dir, err = config.BaseDirOrCwd(dir)
		if err != nil {
			return err
		}

		b, err := newBridge(cfg, !noHistory)
		if err != nil {
			return fmt.Errorf("creating bridge: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Fprintf(os.Stderr, "\n=== ppbbridge shell ===\n")
		fmt.Fprintf(os.Stderr, "Backend: %s\n", b.BackendPath(dir))
		fmt.Fprintf(os.Stderr, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit\n")
		fmt.Fprintf(os.Stderr, "=======================\n\n")

		if err := runShell(ctx, os.Stdin, os.Stdout, os.Stderr, b, dir); err != nil {
			return fmt.Errorf("interactive mode: %w", err)
		}
		return nil
	},
}

// runShell reads lines from in until EOF or /exit and sends each as a call
func runShell(ctx context.Context, in io.Reader, out, errOut io.Writer, b textIOer, dir string) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(errOut, "ppb> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			fmt.Fprintln(errOut, "\nGoodbye!")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleShellCommand(input, errOut, dir) {
				continue
			}
			return nil
		}

		output, err := b.TextIO(ctx, strings.Fields(input), dir)
		if output != "" {
			fmt.Fprint(out, output)
			if !strings.HasSuffix(output, "\n") {
				fmt.Fprintln(out)
			}
		}
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// handleShellCommand processes shell commands
// Returns true to continue the loop, false to exit
func handleShellCommand(input string, errOut io.Writer, dir string) bool {
	command := strings.Fields(input)[0]

	switch command {
	case "/help", "/h":
		fmt.Fprintln(errOut, "\nAvailable commands:")
		fmt.Fprintln(errOut, "  /help, /h     - Show this help message")
		fmt.Fprintln(errOut, "  /dir          - Show the base directory")
		fmt.Fprintln(errOut, "  /exit, /q     - Exit the shell")
		fmt.Fprintln(errOut, "  Ctrl+D        - Exit the shell")
		fmt.Fprintln(errOut, "")
		return true

	case "/dir":
		fmt.Fprintf(errOut, "Base directory: %s\n", dir)
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(errOut, "Goodbye!")
		return false

	default:
		fmt.Fprintf(errOut, "Unknown command: %s (type '/help' for available commands)\n", command)
		return true
	}
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().StringVarP(&baseDir, "dir", "d", "", "Base directory containing addons/ppb_backend")
	shellCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record calls in the history")
}
