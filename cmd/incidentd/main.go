// Command incidentd polls a Waze Partner Hub feed, accumulates deduplicated
// incidents, persists the master/latest views, and serves them with a
// heatmap page over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trafficpulse/waze-incident-service/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "incidentd",
	Short: "Accumulates Waze traffic incidents and serves them as a heatmap",
	Long: `incidentd polls a Waze Partner Hub feed on a fixed interval, merges new
incident reports into a growing duplicate-free store, persists the store after
every cycle (local files or S3), and serves the data plus a heatmap page over HTTP.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		// Config errors already print a message; suppress cobra's usage dump
		// for runtime failures below.
		cmd.SilenceUsage = true
		return run(cfg)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json)")
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("json")
		v.SetConfigName("config")
	}

	// Keys map to env vars verbatim: waze_api_url <- WAZE_API_URL, etc.
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
