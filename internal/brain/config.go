package brain

import (
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
	"github.com/wonny/tokenscout/internal/pipelineconfig"
)

// ConfigResult is the outcome of a config change
type ConfigResult struct {
	contracts.PhaseResult
	Config      pipelineconfig.Options `json:"config"`
	IgnoredKeys []string               `json:"ignored_keys,omitempty"`
}

// ExportResult carries the session snapshot
type ExportResult struct {
	contracts.PhaseResult
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Config returns a copy of the session config
func (o *Orchestrator) Config() pipelineconfig.Options {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config.Clone()
}

// SetConfig merges override into the session config. Unknown keys are
// reported back; an invalid result leaves the config unchanged.
func (o *Orchestrator) SetConfig(override map[string]interface{}) *ConfigResult {
	started := time.Now()
	res := &ConfigResult{}

	o.mu.Lock()
	merged, ignored := pipelineconfig.Merge(o.config, override)
	err := pipelineconfig.Validate(merged)
	if err == nil {
		o.config = merged.Clone()
	}
	res.Config = o.config.Clone()
	o.mu.Unlock()

	res.IgnoredKeys = ignored
	if err != nil {
		res.PhaseResult = contracts.Failed(contracts.StageConfig, started, err)
		return res
	}
	res.PhaseResult = contracts.Succeeded(contracts.StageConfig, started)

	o.logger.WithFields(map[string]interface{}{
		"market_cap": res.Config.MarketCap,
		"risk":       res.Config.Risk,
		"timeline":   res.Config.Timeline,
		"ignored":    ignored,
	}).Info("Pipeline config updated")
	return res
}

// Export returns a snapshot of config, stats, pools and caches
func (o *Orchestrator) Export() (res *ExportResult) {
	started := time.Now()
	res = &ExportResult{}
	defer o.settle(contracts.StageExport, started, &res.PhaseResult)

	o.mu.Lock()
	res.Snapshot = o.session.snapshot(o.config, o.now())
	o.mu.Unlock()

	res.PhaseResult = contracts.Succeeded(contracts.StageExport, started)
	return res
}

// Reset discards the session and starts a new one. Config is kept.
func (o *Orchestrator) Reset() contracts.PhaseResult {
	started := time.Now()

	o.mu.Lock()
	previous := o.session.ID
	o.session = newSession(o.now())
	next := o.session.ID
	o.mu.Unlock()

	o.metrics.SetSessionSizes(0, 0)
	o.logger.WithFields(map[string]interface{}{
		"previous_session": previous,
		"session":          next,
	}).Info("Session reset")

	return contracts.Succeeded(contracts.StageReset, started)
}
