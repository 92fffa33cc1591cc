package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
)

// PageStats separates "no containers matched" from "containers matched
// but every item was dropped", which the stop condition alone cannot
// tell apart.
type PageStats struct {
	Containers int
	Extracted  int
	Dropped    int
	HasNext    bool
}

// extractPage parses one rendered search page and runs the item
// extractor over every result container in document order. A container
// that fails to produce a record is skipped; the page continues.
func (e *Extractor) extractPage(html string) ([]*models.Product, PageStats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, PageStats{}, err
	}

	var (
		products []*models.Product
		stats    PageStats
	)

	doc.Find(itemContainerSelector).Each(func(_ int, sel *goquery.Selection) {
		stats.Containers++
		product := e.extractItem(sel)
		if product == nil {
			stats.Dropped++
			return
		}
		products = append(products, product)
		stats.Extracted++
		e.metrics.IncExtracted()
	})

	stats.HasNext = e.selectors.NextPage.matches(doc.Selection)

	return products, stats, nil
}

// extractTotalResults reads the optional result-count banner, e.g.
// "1-48 of over 2,000 results". Absent when the page does not expose
// one or no count parses.
func (e *Extractor) extractTotalResults(html string) *int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	text, ok := e.selectors.ResultCount.resolveText(doc.Selection)
	if !ok {
		return nil
	}

	// The banner lists the window first ("1-48 of ..."); the last
	// number run is the total.
	matches := countPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	if count, parsed := parseCount(matches[len(matches)-1]); parsed {
		return &count
	}
	return nil
}
