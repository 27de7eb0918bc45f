package main

import (
	"context"

	"github.com/fekuna/omnipos-warehouse/config"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initStoreCmd = &cobra.Command{
	Use:   "init-store",
	Short: "Write header rows to every empty collection",
	Long: `Writes the canonical header row to each collection (Categories,
ProductTypes, Phones, Products) that does not have one yet. Collections that
already hold data are left untouched, so the command is safe to re-run.`,
	RunE: runInitStore,
}

func runInitStore(cmd *cobra.Command, args []string) error {
	cfg := config.LoadEnv()
	log := newLogger(cfg)
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStore, err := openStore(ctx, &cfg.Store, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := rowstore.Init(ctx, store); err != nil {
		return err
	}
	log.Info("row store initialized", zap.String("driver", cfg.Store.Driver))
	return nil
}
