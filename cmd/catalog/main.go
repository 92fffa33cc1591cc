package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/maltedev/amazon-catalog-scraper/internal/browser"
	"github.com/maltedev/amazon-catalog-scraper/internal/catalog"
	"github.com/maltedev/amazon-catalog-scraper/internal/config"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
	"github.com/maltedev/amazon-catalog-scraper/internal/ratelimit"
)

func main() {
	var (
		query    = flag.String("query", "", "Search query to crawl")
		pages    = flag.Int("pages", 0, "Maximum number of search pages (default from config)")
		asin     = flag.String("asin", "", "ASIN of a single product to extract")
		url      = flag.String("url", "", "Amazon product URL to extract (ASIN is derived)")
		output   = flag.String("output", "text", "Output format: text, json")
		headless = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *query == "" && *asin == "" && *url == "" {
		fmt.Println("Nothing to do. Use -query, -asin, or -url.")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	extractor, err := catalog.NewExtractor(b, catalog.Options{
		SiteRoot:        cfg.Catalog.SiteRoot,
		Currency:        cfg.Catalog.Currency,
		DetailCacheSize: cfg.Catalog.DetailCacheSize,
		Logger:          logger,
		RateLimiter:     ratelimit.NewAdaptiveRateLimiter(cfg.Catalog.RateLimitMin, cfg.Catalog.RateLimitMax),
	})
	if err != nil {
		logger.Error("failed to initialize extractor", "error", err)
		os.Exit(1)
	}

	var result models.ExtractionResult

	switch {
	case *query != "":
		maxPages := *pages
		if maxPages <= 0 {
			maxPages = cfg.Catalog.MaxPages
		}
		result = extractor.SearchProducts(ctx, *query, maxPages)
	default:
		target := *asin
		if target == "" {
			target, err = catalog.ExtractASIN(*url)
			if err != nil {
				logger.Error("failed to parse product URL", "url", *url, "error", err)
				os.Exit(1)
			}
		}
		result = extractor.GetProductDetails(ctx, target)
	}

	if err := outputResult(result, *output); err != nil {
		logger.Error("failed to output result", "error", err)
		os.Exit(1)
	}

	if !result.Success {
		os.Exit(1)
	}
}

func outputResult(result models.ExtractionResult, format string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !result.Success {
		fmt.Printf("Extraction failed: %s\n", result.Error)
		return nil
	}

	if result.Data != nil {
		fmt.Printf("Query: %s\n", result.Data.Query)
		if result.Data.TotalResults != nil {
			fmt.Printf("Total results: %d\n", *result.Data.TotalResults)
		}
		if result.Data.Pagination != nil {
			fmt.Printf("Pages fetched: %d\n", result.Data.Pagination.PagesFetched)
		}
		fmt.Printf("Products: %d\n", len(result.Data.Products))
		fmt.Println("---")
		for _, p := range result.Data.Products {
			printProduct(p)
		}
		return nil
	}

	if result.Product != nil {
		printProduct(result.Product)
	}
	return nil
}

func printProduct(p *models.Product) {
	fmt.Printf("ASIN: %s\n", p.ASIN)
	fmt.Printf("Title: %s\n", p.Title)
	if p.Price != nil && p.Price.Current != nil {
		fmt.Printf("Price: %.2f %s\n", *p.Price.Current, p.Price.Currency)
	}
	if p.Rating != nil && p.Rating.Rating != nil {
		rating := fmt.Sprintf("%.1f", *p.Rating.Rating)
		if p.Rating.ReviewCount != nil {
			rating += fmt.Sprintf(" (%d reviews)", *p.Rating.ReviewCount)
		}
		fmt.Printf("Rating: %s\n", rating)
	}
	if p.Availability != "" {
		fmt.Printf("Availability: %s\n", p.Availability)
	}
	if p.Brand != "" {
		fmt.Printf("Brand: %s\n", p.Brand)
	}
	if len(p.Features) > 0 {
		fmt.Printf("Features: %s\n", strings.Join(p.Features, "; "))
	}
	fmt.Printf("URL: %s\n", p.URL)
	fmt.Println("---")
}
