package contracts

import "context"

// SecurityProvider fetches contract security data.
// Implementations never fail: any error yields UnverifiedReport().
// ⭐ SSOT: 보안 리포트 조회 인터페이스
type SecurityProvider interface {
	FetchReport(ctx context.Context, address, chain string) SecurityReport
}

// ReportSink persists finished analyses (S3/S4) outside the session
// ⭐ SSOT: 분석 결과 영속화 인터페이스
type ReportSink interface {
	SaveEvaluation(ctx context.Context, sessionID string, c *Candidate, r *EvaluationResult) error
	SaveDiligence(ctx context.Context, sessionID string, c *Candidate, r *DDResult) error
}
