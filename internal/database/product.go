package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogProduct is the stored form of one extracted record. Optional
// extraction fields map to nullable columns; the list-valued fields
// are kept as JSON.
type CatalogProduct struct {
	ASIN           string          `db:"asin"`
	Title          string          `db:"title"`
	Brand          sql.NullString  `db:"brand"`
	Category       sql.NullString  `db:"category"`
	Seller         sql.NullString  `db:"seller"`
	URL            string          `db:"url"`
	Price          sql.NullFloat64 `db:"price"`
	Currency       sql.NullString  `db:"currency"`
	Rating         sql.NullFloat64 `db:"rating"`
	ReviewCount    sql.NullInt32   `db:"review_count"`
	Availability   sql.NullString  `db:"availability"`
	PrimeEligible  bool            `db:"prime_eligible"`
	FreeShipping   bool            `db:"free_shipping"`
	Images         json.RawMessage `db:"images"`
	Features       json.RawMessage `db:"features"`
	Specifications json.RawMessage `db:"specifications"`
	Query          sql.NullString  `db:"query"`
	ExtractedAt    time.Time       `db:"extracted_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// FromModel converts an extracted record for storage. query is the
// search it came from, empty for detail lookups.
func FromModel(p *models.Product, query string) *CatalogProduct {
	cp := &CatalogProduct{
		ASIN:          p.ASIN,
		Title:         p.Title,
		URL:           p.URL,
		PrimeEligible: p.PrimeEligible,
		FreeShipping:  p.FreeShipping,
		ExtractedAt:   time.Now(),
	}

	setNullString(&cp.Brand, p.Brand)
	setNullString(&cp.Category, p.Category)
	setNullString(&cp.Seller, p.Seller)
	setNullString(&cp.Availability, p.Availability)
	setNullString(&cp.Query, query)

	if p.Price != nil && p.Price.Current != nil {
		cp.Price = sql.NullFloat64{Float64: *p.Price.Current, Valid: true}
		setNullString(&cp.Currency, p.Price.Currency)
	}

	if p.Rating != nil {
		if p.Rating.Rating != nil {
			cp.Rating = sql.NullFloat64{Float64: *p.Rating.Rating, Valid: true}
		}
		if p.Rating.ReviewCount != nil {
			cp.ReviewCount = sql.NullInt32{Int32: int32(*p.Rating.ReviewCount), Valid: true}
		}
	}

	if len(p.Images) > 0 {
		data, _ := json.Marshal(p.Images)
		cp.Images = json.RawMessage(data)
	}
	if len(p.Features) > 0 {
		data, _ := json.Marshal(p.Features)
		cp.Features = json.RawMessage(data)
	}
	if len(p.Specifications) > 0 {
		data, _ := json.Marshal(p.Specifications)
		cp.Specifications = json.RawMessage(data)
	}

	return cp
}

func setNullString(dst *sql.NullString, value string) {
	if value != "" {
		dst.String = value
		dst.Valid = true
	}
}

// UpsertProduct inserts or refreshes a catalog product by ASIN.
func (db *DB) UpsertProduct(ctx context.Context, p *CatalogProduct) error {
	query := `
		INSERT INTO catalog_products (
			asin, title, brand, category, seller, url,
			price, currency, rating, review_count, availability,
			prime_eligible, free_shipping, images, features,
			specifications, query, extracted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18
		)
		ON CONFLICT (asin) DO UPDATE SET
			title = EXCLUDED.title,
			brand = COALESCE(EXCLUDED.brand, catalog_products.brand),
			category = COALESCE(EXCLUDED.category, catalog_products.category),
			seller = COALESCE(EXCLUDED.seller, catalog_products.seller),
			url = EXCLUDED.url,
			price = COALESCE(EXCLUDED.price, catalog_products.price),
			currency = COALESCE(EXCLUDED.currency, catalog_products.currency),
			rating = COALESCE(EXCLUDED.rating, catalog_products.rating),
			review_count = COALESCE(EXCLUDED.review_count, catalog_products.review_count),
			availability = COALESCE(EXCLUDED.availability, catalog_products.availability),
			prime_eligible = EXCLUDED.prime_eligible,
			free_shipping = EXCLUDED.free_shipping,
			images = COALESCE(EXCLUDED.images, catalog_products.images),
			features = COALESCE(EXCLUDED.features, catalog_products.features),
			specifications = COALESCE(EXCLUDED.specifications, catalog_products.specifications),
			query = COALESCE(EXCLUDED.query, catalog_products.query),
			extracted_at = EXCLUDED.extracted_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at`

	err := db.pool.QueryRow(ctx, query,
		p.ASIN, p.Title, p.Brand, p.Category, p.Seller, p.URL,
		p.Price, p.Currency, p.Rating, p.ReviewCount, p.Availability,
		p.PrimeEligible, p.FreeShipping, p.Images, p.Features,
		p.Specifications, p.Query, p.ExtractedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// UpsertProductWithTx is the transactional variant used together with
// the outbox insert.
func (db *DB) UpsertProductWithTx(ctx context.Context, tx pgx.Tx, p *CatalogProduct) error {
	query := `
		INSERT INTO catalog_products (
			asin, title, brand, category, seller, url,
			price, currency, rating, review_count, availability,
			prime_eligible, free_shipping, images, features,
			specifications, query, extracted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18
		)
		ON CONFLICT (asin) DO UPDATE SET
			title = EXCLUDED.title,
			price = COALESCE(EXCLUDED.price, catalog_products.price),
			rating = COALESCE(EXCLUDED.rating, catalog_products.rating),
			review_count = COALESCE(EXCLUDED.review_count, catalog_products.review_count),
			extracted_at = EXCLUDED.extracted_at,
			updated_at = CURRENT_TIMESTAMP`

	_, err := tx.Exec(ctx, query,
		p.ASIN, p.Title, p.Brand, p.Category, p.Seller, p.URL,
		p.Price, p.Currency, p.Rating, p.ReviewCount, p.Availability,
		p.PrimeEligible, p.FreeShipping, p.Images, p.Features,
		p.Specifications, p.Query, p.ExtractedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// GetProduct loads one stored product by ASIN.
func (db *DB) GetProduct(ctx context.Context, asin string) (*CatalogProduct, error) {
	query := `
		SELECT
			asin, title, brand, category, seller, url,
			price, currency, rating, review_count, availability,
			prime_eligible, free_shipping, images, features,
			specifications, query, extracted_at, created_at, updated_at
		FROM catalog_products
		WHERE asin = $1`

	p := &CatalogProduct{}
	err := db.pool.QueryRow(ctx, query, asin).Scan(
		&p.ASIN, &p.Title, &p.Brand, &p.Category, &p.Seller, &p.URL,
		&p.Price, &p.Currency, &p.Rating, &p.ReviewCount, &p.Availability,
		&p.PrimeEligible, &p.FreeShipping, &p.Images, &p.Features,
		&p.Specifications, &p.Query, &p.ExtractedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// ListProducts returns recently extracted products, newest first.
func (db *DB) ListProducts(ctx context.Context, limit int) ([]*CatalogProduct, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			asin, title, brand, category, seller, url,
			price, currency, rating, review_count, availability,
			prime_eligible, free_shipping, images, features,
			specifications, query, extracted_at, created_at, updated_at
		FROM catalog_products
		ORDER BY extracted_at DESC
		LIMIT $1`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*CatalogProduct
	for rows.Next() {
		p := &CatalogProduct{}
		err := rows.Scan(
			&p.ASIN, &p.Title, &p.Brand, &p.Category, &p.Seller, &p.URL,
			&p.Price, &p.Currency, &p.Rating, &p.ReviewCount, &p.Availability,
			&p.PrimeEligible, &p.FreeShipping, &p.Images, &p.Features,
			&p.Specifications, &p.Query, &p.ExtractedAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}
