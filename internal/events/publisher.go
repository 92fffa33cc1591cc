package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maltedev/amazon-catalog-scraper/internal/database"
	"github.com/maltedev/amazon-catalog-scraper/internal/models"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeProductExtracted is published when an extraction run
	// produced a catalog record.
	EventTypeProductExtracted EventType = "PRODUCT_EXTRACTED"
)

// ProductExtractedPayload is the event body pushed through the outbox.
type ProductExtractedPayload struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	ASIN      string         `json:"asin"`
	Title     string         `json:"title"`
	Brand     string         `json:"brand,omitempty"`
	URL       string         `json:"url"`
	Category  string         `json:"category,omitempty"`
	Price     *models.Price  `json:"price,omitempty"`
	Rating    *models.Rating `json:"rating,omitempty"`
	Images    []models.Image `json:"images,omitempty"`
	Features  []string       `json:"features,omitempty"`
	Query     string         `json:"query,omitempty"`
	Source    string         `json:"source"`
}

// Publisher persists extracted products and their events atomically
// using the transactional outbox pattern.
type Publisher struct {
	db     *database.DB
	outbox *database.OutboxRepository
	logger *slog.Logger
}

func NewPublisher(db *database.DB, logger *slog.Logger) *Publisher {
	return &Publisher{
		db:     db,
		outbox: database.NewOutboxRepository(db),
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishProductExtracted stores the product and enqueues a
// PRODUCT_EXTRACTED event in the same transaction, so the stored row
// and the emitted event can never diverge.
func (p *Publisher) PublishProductExtracted(ctx context.Context, product *models.Product, query string) error {
	payload := &ProductExtractedPayload{
		EventID:   uuid.New().String(),
		EventType: string(EventTypeProductExtracted),
		Timestamp: time.Now(),
		ASIN:      product.ASIN,
		Title:     product.Title,
		Brand:     product.Brand,
		URL:       product.URL,
		Category:  product.Category,
		Price:     product.Price,
		Rating:    product.Rating,
		Images:    product.Images,
		Features:  product.Features,
		Query:     query,
		Source:    "scraper",
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	stored := database.FromModel(product, query)

	err = p.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := p.db.UpsertProductWithTx(ctx, tx, stored); err != nil {
			return err
		}

		event := &database.OutboxEvent{
			AggregateType: "catalog_product",
			AggregateID:   product.ASIN,
			EventType:     string(EventTypeProductExtracted),
			Payload:       payloadJSON,
		}
		return p.outbox.InsertWithTx(ctx, tx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to publish product extracted event: %w", err)
	}

	p.logger.Debug("product event queued", "asin", product.ASIN, "event_id", payload.EventID)
	return nil
}
