package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurral/feedengine/internal/config"
	applog "github.com/kurral/feedengine/internal/log"
)

var (
	cfgPath string
	cfg     config.Config
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "feedengine",
	Short: "Kurral feed ranking, fact-check policy, and reputation engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
		applog.Setup(cfg.App.LogLevel, cfg.App.LogConsole)
		return nil
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the feedengine version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config yaml")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(statusCmd)
}
