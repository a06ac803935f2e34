// Package main runs the text-to-recipe extraction batch. Input texts come
// from a JSON file (an array of strings) or from the completed pages of the
// crawl store; the structured recipes are written as one JSON array.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pantrylab/recipehub/internal/app/domain/crawl"
	extractdomain "github.com/pantrylab/recipehub/internal/app/domain/extract"
	extractsvc "github.com/pantrylab/recipehub/internal/app/services/extract"
	"github.com/pantrylab/recipehub/internal/app/storage/sqlite"
	"github.com/pantrylab/recipehub/internal/cli"
	"github.com/pantrylab/recipehub/internal/config"
	"github.com/pantrylab/recipehub/pkg/logger"
)

func main() {
	input := flag.String("input", "", "JSON file holding an array of recipe texts")
	fromDB := flag.Bool("from-db", false, "read completed pages from the crawl store instead of -input")
	output := flag.String("output", "recipes.json", "output file for the extracted recipes")
	model := flag.String("model", "", "Gemini model name (default from GEMINI_MODEL)")
	flag.Parse()

	if *input == "" && !*fromDB {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	appLog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	modelName := *model
	if modelName == "" {
		modelName = cfg.Gemini.Model
	}

	generator, err := extractsvc.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, modelName, appLog)
	if err != nil {
		log.Fatalf("configure Gemini: %v", err)
	}
	svc := extractsvc.New(generator, appLog)

	texts, err := loadTexts(ctx, *input, *fromDB, cfg.Crawler.DBPath)
	if err != nil {
		log.Fatalf("load input: %v", err)
	}
	if len(texts) == 0 {
		log.Println("No input texts; nothing to do")
		return
	}

	log.Printf("Extracting %d texts with %s...", len(texts), modelName)
	bar := cli.NewProgressBar(len(texts), "extract")
	svc.WithProgress(func(done, _ int) {
		bar.Set(done)
	})

	recipes, runErr := svc.Run(ctx, texts)
	bar.Finish()

	if len(recipes) > 0 {
		if err := writeRecipes(*output, recipes); err != nil {
			log.Fatalf("write output: %v", err)
		}
		cli.Success(fmt.Sprintf("Wrote %d recipes to %s", len(recipes), *output))
	}
	if skipped := len(texts) - len(recipes); skipped > 0 {
		cli.Warning(fmt.Sprintf("%d texts could not be parsed; see the log for details", skipped))
	}
	if runErr != nil {
		log.Fatalf("extraction interrupted: %v", runErr)
	}
}

func loadTexts(ctx context.Context, inputPath string, fromDB bool, dbPath string) ([]string, error) {
	if fromDB {
		return loadCrawledPages(ctx, dbPath)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", inputPath, err)
	}
	return texts, nil
}

func loadCrawledPages(ctx context.Context, dbPath string) ([]string, error) {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	pages, err := store.ListPagesByStatus(ctx, crawl.StatusCompleted)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		if page.ContentMarkdown != "" {
			texts = append(texts, page.ContentMarkdown)
		}
	}
	return texts, nil
}

// writeRecipes writes the batch without escaping the Vietnamese text.
func writeRecipes(path string, recipes []extractdomain.Recipe) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(recipes)
}
