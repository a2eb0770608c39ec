// Command import-catalog loads category ranges and cost definitions from CSV
// files into the configured document store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/clubtoros/toros-backend/internal/catalog"
	"github.com/clubtoros/toros-backend/internal/config"
	"github.com/clubtoros/toros-backend/internal/models"
	"github.com/clubtoros/toros-backend/internal/repositories"
	"github.com/clubtoros/toros-backend/internal/repositories/mongodb"
	mongoclient "github.com/clubtoros/toros-backend/pkg/mongodb"
)

func main() {
	categories := pflag.String("categories", "", "CSV file with category ranges")
	playerCosts := pflag.String("player-costs", "", "CSV file with player costs")
	cheerCosts := pflag.String("cheerleader-costs", "", "CSV file with cheerleader costs")
	dryRun := pflag.Bool("dry-run", false, "validate the files without storing anything")
	pflag.Parse()

	if *categories == "" && *playerCosts == "" && *cheerCosts == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := mongoclient.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.ConnectTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	store := mongodb.NewDocumentStore(client.Database())
	importer := catalog.NewImporter(
		repositories.NewSeasonRepository(store),
		repositories.NewCategoryRepository(store),
		repositories.NewCostRepository(store),
	)
	importer.DryRun = *dryRun

	failed := false
	run := func(label, path string, fn func(*os.File) (*catalog.Result, error)) {
		if path == "" {
			return
		}
		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			failed = true
			return
		}
		defer f.Close()

		result, err := fn(f)
		if err != nil {
			slog.Error("Import failed", "file", path, "error", err)
			failed = true
			return
		}
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Printf("%s (%s):\n%s\n", label, path, out)
		if len(result.Errors) > 0 {
			failed = true
		}
	}

	run("categories", *categories, func(f *os.File) (*catalog.Result, error) {
		return importer.ImportCategories(ctx, f)
	})
	run("player costs", *playerCosts, func(f *os.File) (*catalog.Result, error) {
		return importer.ImportCosts(ctx, models.KindPlayer, f)
	})
	run("cheerleader costs", *cheerCosts, func(f *os.File) (*catalog.Result, error) {
		return importer.ImportCosts(ctx, models.KindCheerleader, f)
	})

	if err := client.Disconnect(context.Background()); err != nil {
		slog.Warn("Error disconnecting from MongoDB", "error", err)
	}
	if failed {
		os.Exit(1)
	}
}
