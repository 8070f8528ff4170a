/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kindlewave/blobcask/pkg/config"
	"github.com/kindlewave/blobcask/pkg/store"
)

type contextKey string

const (
	storeContextKey  contextKey = "store"
	configContextKey contextKey = "config"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "blobcaskd",
	Short: "blobcaskd - content-addressed blob store",
	Long: `blobcaskd stores blobs as append-only put/delete messages on a
single log file, indexed by id in a pebble-backed side index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")

		cfg, err := loadOrBootstrapConfig(configPath, dataDir)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		bs := store.New(store.Config{DataDir: cfg.DataDir}, slog.Default())
		if _, err := bs.Open(); err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), storeContextKey, bs)
		ctx = context.WithValue(ctx, configContextKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		bs, ok := cmd.Context().Value(storeContextKey).(*store.BlobStore)
		if !ok {
			return nil
		}
		return bs.Close()
	},
}

func loadOrBootstrapConfig(configPath, dataDir string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	if config.ConfigExists(configPath) {
		return config.LoadConfig(configPath)
	}
	return config.BootstrapConfig(configPath, dataDir)
}

func storeFromContext(cmd *cobra.Command) (*store.BlobStore, error) {
	bs, ok := cmd.Context().Value(storeContextKey).(*store.BlobStore)
	if !ok {
		return nil, fmt.Errorf("store not found in command context")
	}
	return bs, nil
}

func configFromContext(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configContextKey).(*config.Config)
	if !ok {
		return nil, fmt.Errorf("config not found in command context")
	}
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the store (overrides the config file)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML config file (default: "+config.GetDefaultConfigPath()+")")
}
