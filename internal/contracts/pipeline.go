package contracts

import "time"

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 스냅샷, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S1 → S2 → S3 → S4
//   Discovery  Screening  Evaluation  Diligence

// Stage represents a pipeline stage or session operation
type Stage string

const (
	// StageDiscovery S1: 후보 토큰 수집
	// 책임: 프로바이더 병렬 호출, 정규화, 중복 제거, 필터링
	// 위치: internal/s1_discovery/
	StageDiscovery Stage = "S1_DISCOVERY"

	// StageScreening S2: 업사이드 점수 + 레드플래그
	// 책임: 보안 리포트 확보, 0-10 점수, 통과/탈락
	// 위치: internal/s2_screening/
	StageScreening Stage = "S2_SCREENING"

	// StageEvaluation S3: 5개 카테고리 50점 평가
	// 책임: Team/Community/Tokenomics/Product/Market 점수와 근거
	// 위치: internal/s3_evaluation/
	StageEvaluation Stage = "S3_EVALUATION"

	// StageDiligence S4: 10개 항목 실사 체크리스트
	// 책임: 통과율, 가중 점수, 최종 추천과 비중
	// 위치: internal/s4_diligence/
	StageDiligence Stage = "S4_DILIGENCE"

	// Session operations outside the four stages
	StageWatchlist Stage = "WATCHLIST"
	StageAlert     Stage = "ALERT"
	StageExport    Stage = "EXPORT"
	StageReset     Stage = "RESET"
	StageConfig    Stage = "CONFIG"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S1", "S2")
func (s Stage) ShortName() string {
	switch s {
	case StageDiscovery:
		return "S1"
	case StageScreening:
		return "S2"
	case StageEvaluation:
		return "S3"
	case StageDiligence:
		return "S4"
	case StageWatchlist:
		return "WL"
	case StageAlert:
		return "AL"
	case StageExport:
		return "EX"
	case StageReset:
		return "RS"
	case StageConfig:
		return "CF"
	default:
		return "UNKNOWN"
	}
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageDiscovery:
		return "후보 수집"
	case StageScreening:
		return "스크리닝"
	case StageEvaluation:
		return "카테고리 평가"
	case StageDiligence:
		return "실사 체크리스트"
	case StageWatchlist:
		return "관심 목록"
	case StageAlert:
		return "외부 알림 수신"
	case StageExport:
		return "세션 스냅샷"
	case StageReset:
		return "세션 초기화"
	case StageConfig:
		return "설정 변경"
	default:
		return "알 수 없음"
	}
}

// AllStages returns the four analytical stages in order
func AllStages() []Stage {
	return []Stage{
		StageDiscovery,
		StageScreening,
		StageEvaluation,
		StageDiligence,
	}
}

// IsValidStage checks if a stage string is one of the analytical stages
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PhaseResult is the uniform envelope every session operation returns.
// Callers branch on Success; failures carry the error text.
type PhaseResult struct {
	Success  bool          `json:"success"`
	Phase    Stage         `json:"phase"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Succeeded builds a successful envelope
func Succeeded(phase Stage, started time.Time) PhaseResult {
	return PhaseResult{Success: true, Phase: phase, Duration: time.Since(started)}
}

// Failed builds a failed envelope carrying err's text
func Failed(phase Stage, started time.Time, err error) PhaseResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PhaseResult{Success: false, Phase: phase, Error: msg, Duration: time.Since(started)}
}
