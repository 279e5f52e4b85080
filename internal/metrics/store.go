package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shopping-lists/internal/metrics/metrics_db"
)

// Interaction records one request answered by the assistant or the
// text-generation endpoint.
type Interaction struct {
	Channel   string
	Intent    string
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of interactions to SQLite.
type Store struct {
	queries *metricsdb.Queries
	db      *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		queries: metricsdb.New(db),
		db:      db,
	}
}

// Record saves an interaction to the database.
func (s *Store) Record(i Interaction) error {
	ts := i.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	err := s.queries.InsertInteraction(context.Background(), metricsdb.InsertInteractionParams{
		Channel:   i.Channel,
		Intent:    i.Intent,
		LatencyMs: i.LatencyMS,
		Timestamp: ts.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}
	return nil
}

// DailyUsage is the number of interactions per intent for a single day.
type DailyUsage struct {
	Date         string
	Intent       string
	Count        int
	AvgLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days).UnixMilli()
	rows, err := s.queries.GetDailyUsage(context.Background(), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}

	var results []DailyUsage
	for _, r := range rows {
		u := DailyUsage{
			Intent: r.Intent,
			Count:  int(r.Count),
		}

		switch day := r.Day.(type) {
		case string:
			u.Date = day
		case []byte:
			u.Date = string(day)
		default:
			u.Date = "Unknown"
		}

		if r.AvgLatencyMs.Valid {
			u.AvgLatencyMS = int64(r.AvgLatencyMs.Float64)
		}

		results = append(results, u)
	}
	return results, nil
}

// Cleanup removes interactions older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UnixMilli()
	n, err := s.queries.CleanupInteractions(context.Background(), threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up interactions: %w", err)
	}
	return n, nil
}
