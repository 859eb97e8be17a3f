package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "vcsengine",
		Short: "vcsengine - real-time video capture processing engine",
		Long: `vcsengine drives a video capture device through a configurable
pipeline: mode detection, anti-tear reconstruction, a user-defined
filter graph, and aspect-aware scaling, publishing the result over a
status bus for a GUI observer and an optional recorder.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/vcsengine/config.yaml)")
	rootCmd.PersistentFlags().Int("status-port", 0, "status bus HTTP/WS port (default is 8787)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("driver", "", "capture driver (gst, simulated)")

	viper.BindPFlag("status_port", rootCmd.PersistentFlags().Lookup("status-port"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("driver_model", rootCmd.PersistentFlags().Lookup("driver"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}
