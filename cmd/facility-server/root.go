package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "facility-server",
		Short:         "Facility reception dashboard server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML file overlaid on the FACILITY_* environment")

	load := func() (config.Config, error) {
		cfg := config.FromEnv()
		if cfgFile == "" {
			return cfg, nil
		}
		return config.LoadFile(cfgFile, cfg)
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newHashPasswordCmd(),
		newWatchCmd(load),
	)
	return root
}

func newLogger() *log.Logger {
	return log.New(os.Stdout, "facility-server ", log.LstdFlags|log.LUTC)
}
