package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vet-records/internal/platform/config"
	"vet-records/internal/platform/logger"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	log     logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "vetdb",
	Short:         "Veterinary records API",
	Long:          `Registro de dueños, mascotas, citas y facturas sobre PostgreSQL o SQLite.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = c
		log = logger.New(logger.Options{
			Level:  logger.ParseLevel(cfg.Log.Level),
			Format: logger.ParseFormat(cfg.Log.Format),
			App:    cfg.App.Name,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (yaml); .env y variables VET_* se leen siempre")
}
