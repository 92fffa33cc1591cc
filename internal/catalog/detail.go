package catalog

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
)

// extractDetail builds a product record from a single-product page.
// The ASIN is caller-supplied, so the record always materializes; it
// returns an error only when the markup is not parseable at all.
func (e *Extractor) extractDetail(html, asin string) (*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	product := models.NewProduct(asin)
	product.URL = fmt.Sprintf("%s/dp/%s", e.siteRoot, asin)

	root := doc.Selection

	if title, ok := e.detail.Title.resolveText(root); ok {
		product.Title = title
	} else {
		product.Title = fmt.Sprintf("Product %s", asin)
		e.fieldMiss("title", asin)
	}

	if raw, ok := e.detail.Price.resolveText(root); ok {
		if amount, parsed := parseMoney(raw); parsed {
			product.Price = &models.Price{Current: &amount, Currency: e.currency}
		}
	}

	product.Rating = e.extractDetailRating(root)
	product.Brand = e.extractBrand(root)
	product.Category, _ = e.detail.Category.resolveText(root)
	product.Seller, _ = e.detail.Seller.resolveText(root)

	if avail, ok := e.detail.Availability.resolveText(root); ok {
		product.Availability = avail
	}

	product.Features = extractFeatures(doc)
	product.Specifications = extractSpecifications(doc)
	product.Images = extractDetailImages(doc)
	product.PrimeEligible = doc.Find(".a-icon-prime, #primeBadge").Length() > 0
	if msg, ok := e.detail.Delivery.resolveText(root); ok {
		product.FreeShipping = strings.Contains(msg, "FREE")
	}

	return product, nil
}

func (e *Extractor) extractDetailRating(root *goquery.Selection) *models.Rating {
	var rating *models.Rating

	if caption, ok := e.detail.Rating.resolveText(root); ok {
		if val, parsed := parseRating(caption); parsed {
			rating = &models.Rating{Rating: &val, RatingText: caption}
		}
	}

	if raw, ok := e.detail.ReviewCount.resolveText(root); ok {
		if count, parsed := parseCount(raw); parsed {
			if rating == nil {
				rating = &models.Rating{}
			}
			rating.ReviewCount = &count
		}
	}

	return rating
}

func (e *Extractor) extractBrand(root *goquery.Selection) string {
	brand, ok := e.detail.Brand.resolveText(root)
	if !ok {
		return ""
	}
	brand = strings.TrimPrefix(brand, "Brand: ")
	brand = strings.TrimPrefix(brand, "Visit the ")
	brand = strings.TrimSuffix(brand, " Store")
	return strings.TrimSpace(brand)
}

func extractFeatures(doc *goquery.Document) []string {
	var features []string
	doc.Find("#feature-bullets span.a-list-item").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" && !strings.Contains(text, "See more product details") {
			features = append(features, text)
		}
	})
	return features
}

// extractSpecifications harvests key/value rows from the detail-bullet
// and tech-spec sections. Later duplicates of a key are ignored.
func extractSpecifications(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)

	doc.Find("#detailBullets_feature_div li .a-list-item").Each(func(_ int, s *goquery.Selection) {
		parts := s.Find("span.a-text-bold")
		if parts.Length() == 0 {
			return
		}
		key := strings.TrimSpace(strings.Trim(parts.First().Text(), " :‏‎"))
		value := strings.TrimSpace(parts.First().NextFiltered("span").Text())
		if key != "" && value != "" {
			if _, exists := specs[key]; !exists {
				specs[key] = value
			}
		}
	})

	doc.Find("#productDetails_techSpec_section_1 tr, #productDetails_detailBullets_sections1 tr").Each(func(_ int, s *goquery.Selection) {
		key := strings.TrimSpace(s.Find("th").Text())
		value := strings.TrimSpace(s.Find("td").Text())
		if key != "" && value != "" {
			if _, exists := specs[key]; !exists {
				specs[key] = value
			}
		}
	})

	if len(specs) == 0 {
		return nil
	}
	return specs
}

func extractDetailImages(doc *goquery.Document) []models.Image {
	images := make([]models.Image, 0)

	doc.Find("#altImages ul li img").Each(func(i int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || src == "" {
			return
		}
		// Thumbnails link to downscaled variants; swap in the large one.
		full := strings.Replace(src, "_AC_US40_", "_AC_SL1500_", 1)
		full = strings.Replace(full, "_AC_SR38,50_", "_AC_SL1500_", 1)
		images = append(images, models.Image{
			URL:       full,
			AltText:   s.AttrOr("alt", ""),
			IsPrimary: i == 0,
		})
	})

	if len(images) == 0 {
		if src, exists := doc.Find("#landingImage").Attr("src"); exists {
			images = append(images, models.Image{URL: src, IsPrimary: true})
		}
	}

	return images
}
