package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdrrmo/fieldsync/pkg/cache"
	"github.com/mdrrmo/fieldsync/pkg/config"
)

// Cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the durable snapshot cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached assigned-incident snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		incidents, ok := store.LoadAssigned(cfg.TeamID)
		if !ok {
			fmt.Printf("No usable snapshot for team %d\n", cfg.TeamID)
			return nil
		}

		fmt.Printf("Cached snapshot for team %d (%d incidents):\n", cfg.TeamID, len(incidents))
		for _, in := range incidents {
			fmt.Printf("  %s  %-12s  %s\n", in.ID, in.Status, in.ReporterName())
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached snapshot for the configured team",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		store.ClearAssigned(cfg.TeamID)
		fmt.Printf("✓ Snapshot cleared for team %d\n", cfg.TeamID)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheCmd.PersistentFlags().StringP("config", "c", "fieldsync.yaml", "Path to YAML config file")
}

func openCache(cmd *cobra.Command) (*config.Config, *cache.Store, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %v", err)
	}
	return cfg, store, nil
}
