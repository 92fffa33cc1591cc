package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
	"github.com/maltedev/amazon-catalog-scraper/internal/ratelimit"
)

var ErrInvalidURL = errors.New("invalid Amazon URL")

const (
	defaultSiteRoot        = "https://www.amazon.com"
	defaultCurrency        = "USD"
	defaultDetailCacheSize = 256
)

var asinURLPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?amazon\.[a-z.]+/.*?/?dp/([A-Z0-9]{10})`)

// ContentFetcher is the retrieval collaborator: it returns the fully
// rendered markup for a URL. Any failure is fatal to the current
// request; retries belong to the collaborator.
type ContentFetcher interface {
	FetchRenderedContent(ctx context.Context, url string) (string, error)
}

// Extractor turns rendered Amazon pages into structured catalog
// records. It owns no mutable state across requests apart from the
// detail cache, so concurrent requests are independent.
type Extractor struct {
	fetcher   ContentFetcher
	selectors Selectors
	detail    detailSelectors
	siteRoot  string
	currency  string
	logger    *slog.Logger
	metrics   *Metrics
	limiter   ratelimit.RateLimiter
	cache     *lru.Cache[string, *models.Product]
}

type Options struct {
	SiteRoot        string
	Currency        string
	Selectors       *Selectors
	DetailCacheSize int
	Logger          *slog.Logger
	Metrics         *Metrics
	RateLimiter     ratelimit.RateLimiter
}

func NewExtractor(fetcher ContentFetcher, opts Options) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("content fetcher is required")
	}

	if opts.SiteRoot == "" {
		opts.SiteRoot = defaultSiteRoot
	}
	if opts.Currency == "" {
		opts.Currency = defaultCurrency
	}
	if opts.DetailCacheSize <= 0 {
		opts.DetailCacheSize = defaultDetailCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	selectors := DefaultSelectors()
	if opts.Selectors != nil {
		selectors = *opts.Selectors
	}

	cache, err := lru.New[string, *models.Product](opts.DetailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create detail cache: %w", err)
	}

	return &Extractor{
		fetcher:   fetcher,
		selectors: selectors,
		detail:    defaultDetailSelectors(),
		siteRoot:  strings.TrimSuffix(opts.SiteRoot, "/"),
		currency:  opts.Currency,
		logger:    opts.Logger.With("component", "catalog"),
		metrics:   opts.Metrics,
		limiter:   opts.RateLimiter,
		cache:     cache,
	}, nil
}

// SearchProducts crawls search pages for query sequentially up to
// maxPages, stopping early on the first page that yields no records.
// Only a retrieval failure produces an unsuccessful envelope; a page
// with fewer products than expected is a normal result.
func (e *Extractor) SearchProducts(ctx context.Context, query string, maxPages int) models.ExtractionResult {
	if maxPages < 1 {
		maxPages = 1
	}

	start := time.Now()
	e.logger.Info("searching products", "query", query, "max_pages", maxPages)

	var (
		allProducts  = make([]*models.Product, 0)
		totalResults *int
		pagesFetched int
		stopReason   = models.StopMaxPages
	)

	for page := 1; page <= maxPages; page++ {
		pageURL := e.searchPageURL(query, page)

		html, err := e.fetch(ctx, pageURL)
		if err != nil {
			e.metrics.IncRequest("search", "error")
			e.logger.Error("search failed", "query", query, "page", page, "error", err)
			return failedResult(err, time.Since(start))
		}

		products, stats, err := e.extractPage(html)
		if err != nil {
			e.metrics.IncRequest("search", "error")
			return failedResult(fmt.Errorf("failed to parse page %d: %w", page, err), time.Since(start))
		}

		pagesFetched++
		e.metrics.IncPage("search")

		if page == 1 {
			totalResults = e.extractTotalResults(html)
		}

		allProducts = append(allProducts, products...)
		e.logger.Info("processed search page",
			"page", page,
			"containers", stats.Containers,
			"extracted", stats.Extracted,
			"dropped", stats.Dropped,
		)

		// An empty page is read as end-of-results and stops the crawl.
		// The two zero cases are logged apart so markup drift is
		// distinguishable from a genuinely exhausted result set.
		if len(products) == 0 {
			if stats.Containers == 0 {
				stopReason = models.StopNoContainers
				e.logger.Warn("no item containers matched", "query", query, "page", page)
			} else {
				stopReason = models.StopAllDropped
				e.logger.Warn("all items on page dropped", "query", query, "page", page, "containers", stats.Containers)
			}
			break
		}
	}

	result := &models.SearchResult{
		Query:        query,
		TotalResults: totalResults,
		Products:     allProducts,
		SearchURL:    e.canonicalSearchURL(query),
		Pagination: &models.Pagination{
			PagesFetched: pagesFetched,
			MaxPages:     maxPages,
			StopReason:   stopReason,
		},
	}

	e.metrics.IncRequest("search", "success")
	e.logger.Info("search completed", "query", query, "products", len(allProducts), "pages", pagesFetched)

	return models.ExtractionResult{
		Success:        true,
		Data:           result,
		ProcessingTime: time.Since(start).Seconds(),
	}
}

// GetProductDetails fetches and extracts one product page by ASIN.
// Results are cached, keyed by ASIN.
func (e *Extractor) GetProductDetails(ctx context.Context, asin string) models.ExtractionResult {
	start := time.Now()

	if cached, ok := e.cache.Get(asin); ok {
		e.metrics.IncRequest("details", "cache_hit")
		return models.ExtractionResult{
			Success:        true,
			Product:        cached,
			ProcessingTime: time.Since(start).Seconds(),
		}
	}

	e.logger.Info("getting product details", "asin", asin)

	html, err := e.fetch(ctx, e.DetailURL(asin))
	if err != nil {
		e.metrics.IncRequest("details", "error")
		e.logger.Error("details fetch failed", "asin", asin, "error", err)
		return failedResult(err, time.Since(start))
	}

	product, err := e.extractDetail(html, asin)
	if err != nil {
		e.metrics.IncRequest("details", "error")
		return failedResult(err, time.Since(start))
	}

	e.metrics.IncPage("details")
	e.metrics.IncRequest("details", "success")
	e.cache.Add(asin, product)

	return models.ExtractionResult{
		Success:        true,
		Product:        product,
		ProcessingTime: time.Since(start).Seconds(),
	}
}

// fetch waits on the rate limiter, asks the retrieval collaborator for
// rendered content and feeds the outcome back to adaptive limiters.
func (e *Extractor) fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	fetchStart := time.Now()
	html, err := e.fetcher.FetchRenderedContent(ctx, pageURL)
	e.metrics.ObserveFetch(time.Since(fetchStart))

	if feedback, ok := e.limiter.(interface {
		RecordSuccess()
		RecordError()
	}); ok {
		if err != nil {
			feedback.RecordError()
		} else {
			feedback.RecordSuccess()
		}
	}

	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	return html, nil
}

func (e *Extractor) searchPageURL(query string, page int) string {
	return fmt.Sprintf("%s/s?k=%s&page=%d", e.siteRoot, url.QueryEscape(query), page)
}

func (e *Extractor) canonicalSearchURL(query string) string {
	return fmt.Sprintf("%s/s?k=%s", e.siteRoot, url.QueryEscape(query))
}

func (e *Extractor) DetailURL(asin string) string {
	return fmt.Sprintf("%s/dp/%s", e.siteRoot, asin)
}

func failedResult(err error, elapsed time.Duration) models.ExtractionResult {
	return models.ExtractionResult{
		Success:        false,
		Error:          err.Error(),
		ProcessingTime: elapsed.Seconds(),
	}
}

// ExtractASIN pulls the ASIN out of a product URL.
func ExtractASIN(rawURL string) (string, error) {
	matches := asinURLPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return "", ErrInvalidURL
	}
	return matches[1], nil
}

// CleanURL strips tracking parameters from an Amazon URL, keeping only
// the ones that change what the page shows.
func CleanURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || !strings.Contains(parsed.Host, "amazon.") {
		return rawURL
	}

	params := parsed.Query()
	essential := url.Values{}
	for _, key := range []string{"k", "i", "bbn", "rh", "node", "page"} {
		if v := params.Get(key); v != "" {
			essential.Set(key, v)
		}
	}

	parsed.RawQuery = essential.Encode()
	parsed.Fragment = ""
	return parsed.String()
}
