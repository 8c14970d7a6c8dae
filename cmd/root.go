package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/positivepasswordbook/ppbbridge/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ppbbridge",
	Short: "Bridge between a front-end and the password book backend",
	Long: `ppbbridge sends actions from a front-end to the password book backend.
Each call serializes the actions and a timestamp into a JSON payload, runs the
platform backend executable with it and prints what the backend wrote to stdout.

You can configure the tool using a TOML configuration file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ppbbridge/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	// A .env file in the working directory fills in variables that are not set yet
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error reading .env file: %v\n", err)
	}

	viper.SetEnvPrefix("PPB")
	viper.AutomaticEnv()

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "ppbbridge")

	defaultConfig := config.NewDefaultConfig("")

	viper.SetDefault("base_dir", defaultConfig.BaseDir)
	viper.SetDefault("backend_subdir", defaultConfig.BackendSubdir)
	viper.SetDefault("backend_args", defaultConfig.BackendArgs)
	viper.SetDefault("logging", defaultConfig.Logging)
	viper.SetDefault("ignore_exit_code", defaultConfig.IgnoreExitCode)
	viper.SetDefault("history_enabled", defaultConfig.HistoryEnabled)
	viper.SetDefault("history_dir", defaultConfig.HistoryDir) // Empty: next to the config file
	viper.SetDefault("history_retention_days", defaultConfig.HistoryRetentionDays)
	viper.SetDefault("listen_addr", defaultConfig.ListenAddr)
	viper.SetDefault("allow_base_dir_override", defaultConfig.AllowBaseDirOverride)

	// Bind environment variables
	viper.BindEnv("base_dir", "PPB_BASE_DIR")
	viper.BindEnv("backend_subdir", "PPB_BACKEND_SUBDIR")
	viper.BindEnv("logging", "PPB_LOGGING")
	viper.BindEnv("ignore_exit_code", "PPB_IGNORE_EXIT_CODE")
	viper.BindEnv("history_enabled", "PPB_HISTORY_ENABLED")
	viper.BindEnv("history_dir", "PPB_HISTORY_DIR")
	viper.BindEnv("listen_addr", "PPB_LISTEN_ADDR")
	viper.BindEnv("allow_base_dir_override", "PPB_ALLOW_BASE_DIR_OVERRIDE")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/ppbbridge",
			"/usr/local/etc/ppbbridge",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  PPB_BASE_DIR:", viper.GetString("base_dir"))
		fmt.Fprintln(os.Stderr, "  PPB_BACKEND_SUBDIR:", viper.GetString("backend_subdir"))
		fmt.Fprintln(os.Stderr, "  PPB_HISTORY_ENABLED:", viper.GetBool("history_enabled"))
		fmt.Fprintln(os.Stderr, "  PPB_IGNORE_EXIT_CODE:", viper.GetBool("ignore_exit_code"))
	}
}
