package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tokenscout/internal/contracts"
)

// Report kinds stored in scout.analysis_reports
const (
	KindEvaluation = "evaluation"
	KindDiligence  = "diligence"
)

// ReportRecord is one persisted S3/S4 analysis
type ReportRecord struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"session_id"`
	TokenKey  string          `json:"token_key"`
	Symbol    string          `json:"symbol"`
	Chain     string          `json:"chain"`
	Kind      string          `json:"kind"`
	Score     float64         `json:"score"`
	Verdict   string          `json:"verdict"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReportStore persists analyses and session snapshots
// ⭐ SSOT: 분석 결과 저장/조회는 여기서만
type ReportStore struct {
	pool *pgxpool.Pool
}

// NewReportStore creates a new report store
func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// SaveEvaluation stores an S3 result
func (s *ReportStore) SaveEvaluation(ctx context.Context, sessionID string, c *contracts.Candidate, r *contracts.EvaluationResult) error {
	rec, err := evaluationRecord(sessionID, c, r)
	if err != nil {
		return err
	}
	return s.insert(ctx, rec)
}

// SaveDiligence stores an S4 result
func (s *ReportStore) SaveDiligence(ctx context.Context, sessionID string, c *contracts.Candidate, r *contracts.DDResult) error {
	rec, err := diligenceRecord(sessionID, c, r)
	if err != nil {
		return err
	}
	return s.insert(ctx, rec)
}

func (s *ReportStore) insert(ctx context.Context, rec *ReportRecord) error {
	query := `
		INSERT INTO scout.analysis_reports (
			session_id, token_key, symbol, chain, kind, score, verdict, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.SessionID, rec.TokenKey, rec.Symbol, rec.Chain,
		rec.Kind, rec.Score, rec.Verdict, []byte(rec.Payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s report: %w", rec.Kind, err)
	}

	return nil
}

// SaveSnapshot stores an exported session snapshot
func (s *ReportStore) SaveSnapshot(ctx context.Context, sessionID, configHash string, payload []byte) error {
	query := `
		INSERT INTO scout.session_snapshots (session_id, config_hash, payload)
		VALUES ($1, $2, $3)
	`

	if _, err := s.pool.Exec(ctx, query, sessionID, configHash, payload); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// LatestReports returns the newest report of kind for every token key,
// best score first
func (s *ReportStore) LatestReports(ctx context.Context, kind string, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, session_id, token_key, symbol, chain, kind, score, verdict, payload, created_at
		FROM (
			SELECT DISTINCT ON (token_key) *
			FROM scout.analysis_reports
			WHERE kind = $1
			ORDER BY token_key, created_at DESC
		) latest
		ORDER BY score DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	records := make([]ReportRecord, 0)
	for rows.Next() {
		var rec ReportRecord
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// LatestReport returns the newest report of kind for one token key
func (s *ReportStore) LatestReport(ctx context.Context, tokenKey, kind string) (*ReportRecord, error) {
	query := `
		SELECT id, session_id, token_key, symbol, chain, kind, score, verdict, payload, created_at
		FROM scout.analysis_reports
		WHERE token_key = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var rec ReportRecord
	err := scanRecord(s.pool.QueryRow(ctx, query, tokenKey, kind), &rec)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func scanRecord(row pgx.Row, rec *ReportRecord) error {
	var payload []byte
	err := row.Scan(
		&rec.ID, &rec.SessionID, &rec.TokenKey, &rec.Symbol, &rec.Chain,
		&rec.Kind, &rec.Score, &rec.Verdict, &payload, &rec.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to scan report: %w", err)
	}
	rec.Payload = payload
	return nil
}

func evaluationRecord(sessionID string, c *contracts.Candidate, r *contracts.EvaluationResult) (*ReportRecord, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	return &ReportRecord{
		SessionID: sessionID,
		TokenKey:  r.Key,
		Symbol:    r.Symbol,
		Chain:     c.Chain,
		Kind:      KindEvaluation,
		Score:     r.TotalScore,
		Verdict:   string(r.Recommendation),
		Payload:   payload,
	}, nil
}

func diligenceRecord(sessionID string, c *contracts.Candidate, r *contracts.DDResult) (*ReportRecord, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal DD report: %w", err)
	}
	return &ReportRecord{
		SessionID: sessionID,
		TokenKey:  r.Key,
		Symbol:    r.Symbol,
		Chain:     c.Chain,
		Kind:      KindDiligence,
		Score:     r.WeightedScore,
		Verdict:   string(r.Recommendation),
		Payload:   payload,
	}, nil
}
