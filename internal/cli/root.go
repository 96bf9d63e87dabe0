// Package cli wires configuration, logging and the release-signal pipeline
// into cobra commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/farheen-shaikh530/releasehub/internal/model"
)

const appVersion = "releasehub v0.1.0"

var (
	cfgFile     string
	verbose     bool
	logJSON     bool
	metricsFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "releasehub",
	Short: "Releasehub - release-signal fact store",
	Long: `Releasehub captures vendor release-signal feeds, refines them into
sentences and per-vendor latest-version facts, and answers narrow questions
("what is the latest version of X") from that store.

When the evidence is insufficient it abstains instead of guessing.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.releasehub/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "JSON log output")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus counters to this file on exit")
	rootCmd.PersistentFlags().String("db", "", "DuckDB file (overrides paths.db_path)")
	rootCmd.PersistentFlags().String("cache-dir", "", "feed cache directory (overrides paths.cache_dir)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// legacyEnv maps config keys to the bare environment names older
// deployments set. RELEASEHUB_* names take precedence.
var legacyEnv = map[string]string{
	"feeds.component_url": "OS_API",
	"feeds.reddit_url":    "REDDIT_API",
	"feeds.vendor_url":    "VENDOR_API",
	"paths.cache_dir":     "CACHE_DIR",
	"llm.api_key":         "OPENAI_API_KEY",
	"llm.base_url":        "OLLAMA_BASE_URL",
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".releasehub"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match RELEASEHUB_*
	viper.SetEnvPrefix("RELEASEHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnv(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindEnv registers every config key so RELEASEHUB_<SECTION>_<KEY> reaches
// Unmarshal, plus the legacy names
func bindEnv(v *viper.Viper) {
	for _, key := range configKeys() {
		envKey := "RELEASEHUB_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if legacy, ok := legacyEnv[key]; ok {
			_ = v.BindEnv(key, envKey, legacy)
			continue
		}
		_ = v.BindEnv(key, envKey)
	}
}

// configKeys lists the dotted keys of model.Config
func configKeys() []string {
	keys := []string{"llm.api_key"} // not serialized
	var tree map[string]any
	raw, _ := yaml.Marshal(model.DefaultConfig())
	_ = yaml.Unmarshal(raw, &tree)
	for section, v := range tree {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for field := range fields {
			keys = append(keys, section+"."+field)
		}
	}
	for key := range legacyEnv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return slices.Compact(keys)
}

// loadConfig layers file, environment and flags over the defaults
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := decodeInto(viper.GetViper(), cfg); err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Paths.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("cache-dir") {
		cfg.Paths.CacheDir, _ = flags.GetString("cache-dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeInto overlays every key v knows about onto cfg. Keys v has no
// value for keep cfg's defaults.
func decodeInto(v *viper.Viper, cfg *model.Config) error {
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// newLogger builds a console logger, or JSON with --log-json
func newLogger() (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if logJSON {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.DisableStacktrace = true
	}
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}
