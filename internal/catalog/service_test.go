package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-catalog-scraper/internal/models"
)

// fakeFetcher serves canned markup keyed by URL and records every
// request it sees.
type fakeFetcher struct {
	pages    map[string]string
	err      error
	requests []string
}

func (f *fakeFetcher) FetchRenderedContent(_ context.Context, url string) (string, error) {
	f.requests = append(f.requests, url)
	if f.err != nil {
		return "", f.err
	}
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return html, nil
}

func newTestExtractor(t *testing.T, fetcher ContentFetcher) *Extractor {
	t.Helper()
	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	e, err := NewExtractor(fetcher, Options{})
	require.NoError(t, err)
	return e
}

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("stops at an empty page and never fetches past it", func(t *testing.T) {
		var pageOneItems []string
		for i := 1; i <= 10; i++ {
			pageOneItems = append(pageOneItems, searchItem(fmt.Sprintf("B00000000%d", i%10), fmt.Sprintf("Item %d", i)))
		}

		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/s?k=laptop&page=1": searchPage(pageOneItems...),
			"https://www.amazon.com/s?k=laptop&page=2": `<html><body><div class="s-no-results"></div></body></html>`,
		}}
		e := newTestExtractor(t, fetcher)

		result := e.SearchProducts(ctx, "laptop", 5)

		require.True(t, result.Success)
		require.NotNil(t, result.Data)
		assert.Len(t, result.Data.Products, 10)

		require.Len(t, fetcher.requests, 2)
		assert.Equal(t, "https://www.amazon.com/s?k=laptop&page=1", fetcher.requests[0])
		assert.Equal(t, "https://www.amazon.com/s?k=laptop&page=2", fetcher.requests[1])

		require.NotNil(t, result.Data.Pagination)
		assert.Equal(t, 2, result.Data.Pagination.PagesFetched)
		assert.Equal(t, models.StopNoContainers, result.Data.Pagination.StopReason)
	})

	t.Run("collects across pages up to max", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/s?k=laptop&page=1": searchPage(searchItem("B000000001", "One")),
			"https://www.amazon.com/s?k=laptop&page=2": searchPage(searchItem("B000000002", "Two")),
		}}
		e := newTestExtractor(t, fetcher)

		result := e.SearchProducts(ctx, "laptop", 2)

		require.True(t, result.Success)
		require.Len(t, result.Data.Products, 2)
		assert.Equal(t, "One", result.Data.Products[0].Title)
		assert.Equal(t, "Two", result.Data.Products[1].Title)
		assert.Equal(t, models.StopMaxPages, result.Data.Pagination.StopReason)
	})

	t.Run("distinguishes all-dropped from no-containers", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/s?k=laptop&page=1": searchPage(
				`<div data-component-type="s-search-result"><h2><a><span>No identifier</span></a></h2></div>`,
			),
		}}
		e := newTestExtractor(t, fetcher)

		result := e.SearchProducts(ctx, "laptop", 3)

		require.True(t, result.Success)
		assert.Empty(t, result.Data.Products)
		assert.Equal(t, models.StopAllDropped, result.Data.Pagination.StopReason)
	})

	t.Run("retrieval failure is the only fatal outcome", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("browser crashed")}
		e := newTestExtractor(t, fetcher)

		result := e.SearchProducts(ctx, "laptop", 2)

		assert.False(t, result.Success)
		assert.Nil(t, result.Data)
		assert.Contains(t, result.Error, "browser crashed")
	})

	t.Run("query is escaped in URLs", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/s?k=usb+c+cable&page=1": searchPage(searchItem("B000000001", "Cable")),
		}}
		e := newTestExtractor(t, fetcher)

		result := e.SearchProducts(ctx, "usb c cable", 1)

		require.True(t, result.Success)
		assert.Equal(t, "https://www.amazon.com/s?k=usb+c+cable", result.Data.SearchURL)
	})

	t.Run("total results read from the first page", func(t *testing.T) {
		page := `<html><body>
			<div data-component-type="s-result-info-bar"><div class="a-section"><span>1-16 of 437 results</span></div></div>
			` + searchItem("B000000001", "Only") + `
		</body></html>`
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/s?k=laptop&page=1": page,
		}}
		e := newTestExtractor(t, fetcher)

		result := e.SearchProducts(ctx, "laptop", 1)

		require.True(t, result.Success)
		require.NotNil(t, result.Data.TotalResults)
		assert.Equal(t, 437, *result.Data.TotalResults)
	})

	t.Run("cancelled context aborts before fetching", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		e := newTestExtractor(t, fetcher)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		result := e.SearchProducts(cancelled, "laptop", 1)

		assert.False(t, result.Success)
		assert.Empty(t, fetcher.requests)
	})
}

const detailPage = `<html><body>
	<span id="productTitle"> Anker USB C Charger </span>
	<span class="a-price"><span class="a-offscreen">$49.99</span></span>
	<a id="bylineInfo">Visit the Anker Store</a>
	<div id="availability"><span> In Stock </span></div>
	<span id="acrCustomerReviewText">12,345 ratings</span>
	<span data-hook="rating-out-of-text">4.7 out of 5</span>
	<div id="feature-bullets"><ul>
		<li><span class="a-list-item">Fast charging</span></li>
		<li><span class="a-list-item">Compact design</span></li>
	</ul></div>
	<img id="landingImage" src="https://m.media-amazon.com/images/I/charger.jpg">
</body></html>`

func TestGetProductDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts a detail page", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/dp/B0ANKER001": detailPage,
		}}
		e := newTestExtractor(t, fetcher)

		result := e.GetProductDetails(ctx, "B0ANKER001")

		require.True(t, result.Success)
		require.NotNil(t, result.Product)
		p := result.Product

		assert.Equal(t, "B0ANKER001", p.ASIN)
		assert.Equal(t, "Anker USB C Charger", p.Title)
		assert.Equal(t, "Anker", p.Brand)
		assert.Equal(t, "In Stock", p.Availability)

		require.NotNil(t, p.Price)
		require.NotNil(t, p.Price.Current)
		assert.InDelta(t, 49.99, *p.Price.Current, 0.001)

		require.NotNil(t, p.Rating)
		require.NotNil(t, p.Rating.Rating)
		assert.InDelta(t, 4.7, *p.Rating.Rating, 0.001)
		require.NotNil(t, p.Rating.ReviewCount)
		assert.Equal(t, 12345, *p.Rating.ReviewCount)

		assert.Equal(t, []string{"Fast charging", "Compact design"}, p.Features)
		require.Len(t, p.Images, 1)
		assert.Equal(t, "https://m.media-amazon.com/images/I/charger.jpg", p.Images[0].URL)
		assert.False(t, p.FreeShipping)
	})

	t.Run("free delivery message sets free shipping", func(t *testing.T) {
		page := `<html><body>
			<span id="productTitle">Thing</span>
			<div id="mir-layout-DELIVERY_BLOCK">FREE delivery Tuesday, September 8</div>
		</body></html>`
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/dp/B0SHIP0001": page,
		}}
		e := newTestExtractor(t, fetcher)

		result := e.GetProductDetails(ctx, "B0SHIP0001")

		require.True(t, result.Success)
		require.NotNil(t, result.Product)
		assert.True(t, result.Product.FreeShipping)
	})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/dp/B0ANKER001": detailPage,
		}}
		e := newTestExtractor(t, fetcher)

		first := e.GetProductDetails(ctx, "B0ANKER001")
		second := e.GetProductDetails(ctx, "B0ANKER001")

		require.True(t, first.Success)
		require.True(t, second.Success)
		assert.Equal(t, first.Product, second.Product)
		assert.Len(t, fetcher.requests, 1)
	})

	t.Run("fetch failure produces an unsuccessful envelope", func(t *testing.T) {
		fetcher := &fakeFetcher{err: errors.New("navigation timeout")}
		e := newTestExtractor(t, fetcher)

		result := e.GetProductDetails(ctx, "B0ANKER001")

		assert.False(t, result.Success)
		assert.Nil(t, result.Product)
		assert.Contains(t, result.Error, "navigation timeout")
	})

	t.Run("bare page still yields a record", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]string{
			"https://www.amazon.com/dp/B0EMPTY001": `<html><body><div id="dp-container"></div></body></html>`,
		}}
		e := newTestExtractor(t, fetcher)

		result := e.GetProductDetails(ctx, "B0EMPTY001")

		require.True(t, result.Success)
		require.NotNil(t, result.Product)
		assert.Equal(t, "B0EMPTY001", result.Product.ASIN)
		assert.Equal(t, "Product B0EMPTY001", result.Product.Title)
	})
}

func TestExtractASIN(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{
			name:     "plain dp URL",
			url:      "https://www.amazon.com/dp/B08N5WRWNW",
			expected: "B08N5WRWNW",
		},
		{
			name:     "dp URL with product slug",
			url:      "https://www.amazon.com/Echo-Dot-4th-Gen/dp/B08N5WRWNW?th=1",
			expected: "B08N5WRWNW",
		},
		{
			name:     "other marketplace",
			url:      "https://amazon.co.uk/some-product/dp/B0EXAMPLE1",
			expected: "B0EXAMPLE1",
		},
		{
			name:    "not a product URL",
			url:     "https://www.amazon.com/s?k=laptop",
			wantErr: true,
		},
		{
			name:    "not amazon at all",
			url:     "https://example.com/dp/B08N5WRWNW",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asin, err := ExtractASIN(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, asin)
		})
	}
}

func TestCleanURL(t *testing.T) {
	t.Run("strips tracking parameters", func(t *testing.T) {
		dirty := "https://www.amazon.com/s?k=laptop&page=2&ref=sr_pg_2&qid=1700000000&sprefix=lap%2Caps%2C123"
		assert.Equal(t, "https://www.amazon.com/s?k=laptop&page=2", CleanURL(dirty))
	})

	t.Run("drops fragments", func(t *testing.T) {
		assert.Equal(t, "https://www.amazon.com/dp/B08N5WRWNW", CleanURL("https://www.amazon.com/dp/B08N5WRWNW?ref=nav#reviews"))
	})

	t.Run("non-amazon URLs pass through", func(t *testing.T) {
		raw := "https://example.com/page?utm_source=x"
		assert.Equal(t, raw, CleanURL(raw))
	})
}
