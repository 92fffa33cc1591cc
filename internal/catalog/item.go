package catalog

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
)

// maxAvailabilityLen guards against picking up long marketing copy
// through the broad availability selectors.
const maxAvailabilityLen = 50

// extractItem builds one product record from a listing container. It
// returns nil when the container carries no ASIN; that is the only
// rejection condition. Every other field resolves independently, so a
// broken field leaves its slot absent instead of failing the item.
func (e *Extractor) extractItem(sel *goquery.Selection) *models.Product {
	asin := strings.TrimSpace(sel.AttrOr(asinAttr, ""))
	if asin == "" {
		e.logger.Debug("container without asin dropped")
		e.metrics.IncDropped()
		return nil
	}

	product := models.NewProduct(asin)
	product.URL = fmt.Sprintf("%s/dp/%s", e.siteRoot, asin)

	if title, ok := e.selectors.Title.resolveText(sel); ok {
		product.Title = title
	} else {
		product.Title = fmt.Sprintf("Product %s", asin)
		e.fieldMiss("title", asin)
	}

	// Price is two-stage: the cascade yields raw text, the money
	// normalizer re-extracts the numeric part. Either stage can fail
	// without affecting the rest of the record.
	if raw, ok := e.selectors.Price.resolveText(sel); ok {
		if amount, ok := parseMoney(raw); ok {
			product.Price = &models.Price{Current: &amount, Currency: e.currency}
		} else {
			e.fieldMiss("price", asin)
		}
	} else {
		e.fieldMiss("price", asin)
	}

	product.Rating = e.extractListRating(sel, asin)

	if src, ok := e.selectors.Image.resolveAttr(sel, "src"); ok {
		product.Images = append(product.Images, models.Image{URL: src, IsPrimary: true})
	} else {
		e.fieldMiss("image", asin)
	}

	if avail, ok := e.selectors.Availability.resolveText(sel); ok && len(avail) < maxAvailabilityLen {
		product.Availability = avail
	}

	product.PrimeEligible = e.selectors.PrimeEligible.matches(sel)
	product.FreeShipping = e.selectors.FreeShipping.matches(sel)

	return product
}

// extractListRating resolves the star caption from the aria-label (the
// visible node is often empty) and falls back to element text. The
// review count rides along on the same Rating struct.
func (e *Extractor) extractListRating(sel *goquery.Selection, asin string) *models.Rating {
	caption, ok := e.selectors.Rating.resolveAttr(sel, "aria-label")
	if !ok {
		caption, ok = e.selectors.Rating.resolveText(sel)
	}

	var rating *models.Rating
	if ok {
		if val, parsed := parseRating(caption); parsed {
			rating = &models.Rating{Rating: &val, RatingText: caption}
		}
	}
	if rating == nil {
		e.fieldMiss("rating", asin)
	}

	if raw, ok := e.selectors.ReviewCount.resolveText(sel); ok {
		if count, parsed := parseCount(raw); parsed {
			if rating == nil {
				rating = &models.Rating{}
			}
			rating.ReviewCount = &count
		}
	}

	return rating
}

func (e *Extractor) fieldMiss(field, asin string) {
	e.metrics.IncFieldMiss(field)
	e.logger.Debug("field not resolved", "field", field, "asin", asin)
}
