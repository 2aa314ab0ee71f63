package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"feedbacktriage/internal/feedback"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("missing database dsn")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FeedbackRecord is one processed submission as persisted.
type FeedbackRecord struct {
	ID             string
	Text           string
	Category       feedback.Category
	Urgency        feedback.Urgency
	Confidence     *float64
	ProcessingTime float64
	Provider       string
	ClientID       string
	CreatedAt      time.Time
}

// HistoryFilter narrows and pages a history listing. Zero values mean
// no filtering; Limit defaults to 50.
type HistoryFilter struct {
	Category feedback.Category
	Urgency  feedback.Urgency
	Limit    int
	Offset   int
}

// DashboardStats aggregates everything the dashboard endpoint serves.
type DashboardStats struct {
	Total               int
	Categories          map[feedback.Category]int
	UrgencyDistribution map[feedback.Urgency]int
	AvgProcessingTime   *float64
	Recent              []FeedbackRecord
}

func (s *Store) SaveFeedback(ctx context.Context, rec FeedbackRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO feedback_history (id, feedback_text, category, urgency_score, confidence_score, processing_time, llm_provider, client_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.Text, string(rec.Category), int(rec.Urgency), rec.Confidence, rec.ProcessingTime, rec.Provider, rec.ClientID, rec.CreatedAt)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListFeedback returns one page of history, newest first, plus the total
// count under the same filter so callers can signal whether more pages
// remain.
func (s *Store) ListFeedback(ctx context.Context, filter HistoryFilter) ([]FeedbackRecord, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	where := ""
	var args []any
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Urgency != 0 {
		args = append(args, int(filter.Urgency))
		where += fmt.Sprintf(" AND urgency_score = $%d", len(args))
	}

	var total int
	countQuery := `SELECT count(*) FROM feedback_history WHERE true` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, feedback_text, category, urgency_score, confidence_score, processing_time, llm_provider, client_id, created_at
		FROM feedback_history WHERE true` + where
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []FeedbackRecord
	for rows.Next() {
		rec, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// Stats computes the dashboard aggregates in one round trip per shape:
// totals, per-category counts, urgency distribution, mean processing time
// and the ten most recent records.
func (s *Store) Stats(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{
		Categories:          make(map[feedback.Category]int),
		UrgencyDistribution: make(map[feedback.Urgency]int),
	}

	var avg sql.NullFloat64
	row := s.db.QueryRowContext(ctx, `SELECT count(*), avg(processing_time) FROM feedback_history`)
	if err := row.Scan(&stats.Total, &avg); err != nil {
		return stats, err
	}
	if avg.Valid {
		stats.AvgProcessingTime = &avg.Float64
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, count(*) FROM feedback_history GROUP BY category`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return stats, err
		}
		stats.Categories[feedback.Category(category)] = count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	urgencyRows, err := s.db.QueryContext(ctx, `SELECT urgency_score, count(*) FROM feedback_history GROUP BY urgency_score`)
	if err != nil {
		return stats, err
	}
	defer urgencyRows.Close()
	for urgencyRows.Next() {
		var urgency, count int
		if err := urgencyRows.Scan(&urgency, &count); err != nil {
			return stats, err
		}
		stats.UrgencyDistribution[feedback.Urgency(urgency)] = count
	}
	if err := urgencyRows.Err(); err != nil {
		return stats, err
	}

	recent, _, err := s.ListFeedback(ctx, HistoryFilter{Limit: 10})
	if err != nil {
		return stats, err
	}
	stats.Recent = recent

	return stats, nil
}

func scanFeedback(rows *sql.Rows) (FeedbackRecord, error) {
	var rec FeedbackRecord
	var category string
	var urgency int
	var confidence sql.NullFloat64
	if err := rows.Scan(&rec.ID, &rec.Text, &category, &urgency, &confidence, &rec.ProcessingTime, &rec.Provider, &rec.ClientID, &rec.CreatedAt); err != nil {
		return rec, err
	}
	rec.Category = feedback.Category(category)
	rec.Urgency = feedback.Urgency(urgency)
	if confidence.Valid {
		rec.Confidence = &confidence.Float64
	}
	return rec, nil
}
