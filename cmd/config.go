package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, base_dir, backend_subdir, backend, backend_args, logging, ignore_exit_code, history_enabled, history_dir, history_retention_days, listen_addr, allow_base_dir_override"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file, .env and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  ppbbridge config              # Show all configuration
  ppbbridge config backend      # Show the resolved backend executable path
  ppbbridge config history_dir  # Show only the history directory`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		historyDir := cfg.HistoryDir
		if historyDir == "" {
			if store, err := historyStore(cfg); err == nil {
				historyDir = store.Dir
			}
		}
		backendPath := "-"
		if dir, err := config.BaseDirOrCwd(cfg.BaseDir); err == nil {
			backendPath = bridge.BackendPath(dir, cfg.BackendSubdir)
		}

		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "base_dir", "basedir":
				fmt.Println(cfg.BaseDir)
			case "backend_subdir", "backendsubdir":
				fmt.Println(cfg.BackendSubdir)
			case "backend":
				fmt.Println(backendPath)
			case "backend_args", "backendargs":
				fmt.Println(strings.Join(cfg.BackendArgs, " "))
			case "logging":
				fmt.Println(cfg.Logging)
			case "ignore_exit_code", "ignoreexitcode":
				fmt.Println(cfg.IgnoreExitCode)
			case "history_enabled", "historyenabled":
				fmt.Println(cfg.HistoryEnabled)
			case "history_dir", "historydir":
				fmt.Println(historyDir)
			case "history_retention_days", "historyretentiondays":
				fmt.Println(cfg.HistoryRetentionDays)
			case "listen_addr", "listenaddr":
				fmt.Println(cfg.ListenAddr)
			case "allow_base_dir_override", "allowbasediroverride":
				fmt.Println(cfg.AllowBaseDirOverride)
			default:
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				os.Exit(1)
			}
			return
		}

		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("BaseDir: %s\n", cfg.BaseDir)
		fmt.Printf("BackendSubdir: %s\n", cfg.BackendSubdir)
		fmt.Printf("Backend: %s\n", backendPath)
		fmt.Printf("BackendArgs: %s\n", strings.Join(cfg.BackendArgs, " "))
		fmt.Printf("Logging: %v\n", cfg.Logging)
		fmt.Printf("IgnoreExitCode: %v\n", cfg.IgnoreExitCode)
		fmt.Printf("HistoryEnabled: %v\n", cfg.HistoryEnabled)
		fmt.Printf("HistoryDir: %s\n", historyDir)
		fmt.Printf("HistoryRetentionDays: %d\n", cfg.HistoryRetentionDays)
		fmt.Printf("ListenAddr: %s\n", cfg.ListenAddr)
		fmt.Printf("AllowBaseDirOverride: %v\n", cfg.AllowBaseDirOverride)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
