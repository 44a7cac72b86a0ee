// Package store persists served predictions to ClickHouse for analytics.
// Writes are best-effort; the prediction pipeline never depends on it.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart-retail/pkg/api"
)

// PredictionEvent is one served prediction.
type PredictionEvent struct {
	ID             uuid.UUID       `ch:"id"`
	ProductName    string          `ch:"product_name"`
	Brand          string          `ch:"brand"`
	Category       string          `ch:"category"`
	ProductType    string          `ch:"product_type"`
	ModelType      string          `ch:"model_type"`
	Confidence     string          `ch:"confidence"`
	PredictedPrice decimal.Decimal `ch:"predicted_price"`
	Currency       string          `ch:"currency"`
	Explained      bool            `ch:"explained"`
	CreatedAt      time.Time       `ch:"created_at"`
}

// BucketStats aggregates recent predictions for one product bucket.
type BucketStats struct {
	ProductType string          `json:"product_type"`
	Count       uint64          `json:"count"`
	AvgPrice    float64         `json:"avg_price"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
}

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "smart_retail",
		Username: "default",
	}
}

// Store records prediction events in ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore connects to ClickHouse with the given configuration.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the events table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS prediction_events (
			id              UUID,
			product_name    String,
			brand           LowCardinality(String),
			category        LowCardinality(String),
			product_type    LowCardinality(String),
			model_type      LowCardinality(String),
			confidence      LowCardinality(String),
			predicted_price Decimal(18, 2),
			currency        LowCardinality(String),
			explained       UInt8,
			created_at      DateTime
		)
		ENGINE = MergeTree()
		ORDER BY (product_type, created_at)
	`
	return s.conn.Exec(ctx, query)
}

// RecordPrediction builds an event from a served prediction and inserts it.
func (s *Store) RecordPrediction(ctx context.Context, desc api.ProductDescription, result api.PredictionResult, explained bool) error {
	query := `
		INSERT INTO prediction_events (
			id, product_name, brand, category, product_type, model_type,
			confidence, predicted_price, currency, explained, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		uuid.New(),
		desc.ProductName,
		desc.Brand,
		desc.Category,
		string(result.ProductType),
		string(result.ModelType),
		string(result.Confidence),
		decimal.NewFromFloat(result.PredictedPrice),
		result.Currency,
		boolToUInt8(explained),
		time.Now(),
	)
}

// RecentBucketStats aggregates predictions served within the window,
// grouped by product bucket. It backs the trends endpoint's live section.
func (s *Store) RecentBucketStats(ctx context.Context, window time.Duration) ([]BucketStats, error) {
	query := `
		SELECT product_type,
			   count() AS cnt,
			   avg(predicted_price) AS avg_price,
			   min(predicted_price) AS min_price,
			   max(predicted_price) AS max_price
		FROM prediction_events
		WHERE created_at >= ?
		GROUP BY product_type
		ORDER BY cnt DESC
	`
	rows, err := s.conn.Query(ctx, query, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to query bucket stats: %w", err)
	}
	defer rows.Close()

	var stats []BucketStats
	for rows.Next() {
		var st BucketStats
		if err := rows.Scan(&st.ProductType, &st.Count, &st.AvgPrice, &st.MinPrice, &st.MaxPrice); err != nil {
			return nil, fmt.Errorf("failed to scan bucket stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
