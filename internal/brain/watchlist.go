package brain

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/tokenscout/internal/contracts"
)

// WatchlistResult is the outcome of a watchlist change
type WatchlistResult struct {
	contracts.PhaseResult
	Entry     *contracts.WatchlistEntry  `json:"entry,omitempty"`
	Watchlist []contracts.WatchlistEntry `json:"watchlist"`
}

// AddToWatchlist adds a known token. The score is the evaluation total
// when evaluated, else the screening score.
func (o *Orchestrator) AddToWatchlist(identifier, notes string) (res *WatchlistResult) {
	started := time.Now()
	res = &WatchlistResult{}
	defer o.settle(contracts.StageWatchlist, started, &res.PhaseResult)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		res.PhaseResult = contracts.Failed(contracts.StageWatchlist, started, ErrEmptyIdentifier)
		return res
	}

	var err error
	o.withLock(func(s *Session) {
		c, ok := s.findCandidate(identifier)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrNotFound, identifier)
			return
		}
		if s.watchIndex(c.Key()) >= 0 {
			err = fmt.Errorf("%w: %s", ErrDuplicate, c.Symbol)
			return
		}

		entry := contracts.WatchlistEntry{
			Key:     c.Key(),
			Symbol:  c.Symbol,
			Name:    c.Name,
			AddedAt: o.now(),
			Notes:   notes,
		}
		if c.Screening != nil {
			entry.Score = c.Screening.Score
		}
		if eval, ok := s.evaluations[entry.Key]; ok {
			entry.Score = eval.TotalScore
		}
		if dd, ok := s.diligence[entry.Key]; ok {
			entry.DDPassed = dd.Passed
		}

		s.watchlist = append(s.watchlist, entry)
		res.Entry = &entry
		res.Watchlist = append([]contracts.WatchlistEntry{}, s.watchlist...)
	})
	if err != nil {
		res.PhaseResult = contracts.Failed(contracts.StageWatchlist, started, err)
		return res
	}

	res.PhaseResult = contracts.Succeeded(contracts.StageWatchlist, started)
	o.logger.WithFields(map[string]interface{}{
		"symbol": res.Entry.Symbol,
		"size":   len(res.Watchlist),
	}).Info("Added to watchlist")
	return res
}

// RemoveFromWatchlist removes an entry by key or symbol
func (o *Orchestrator) RemoveFromWatchlist(identifier string) (res *WatchlistResult) {
	started := time.Now()
	res = &WatchlistResult{}
	defer o.settle(contracts.StageWatchlist, started, &res.PhaseResult)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		res.PhaseResult = contracts.Failed(contracts.StageWatchlist, started, ErrEmptyIdentifier)
		return res
	}

	var err error
	o.withLock(func(s *Session) {
		i := s.watchIndex(identifier)
		if i < 0 {
			err = fmt.Errorf("%w: %s", ErrNotFound, identifier)
			return
		}
		entry := s.watchlist[i]
		s.watchlist = append(s.watchlist[:i:i], s.watchlist[i+1:]...)
		res.Entry = &entry
		res.Watchlist = append([]contracts.WatchlistEntry{}, s.watchlist...)
	})
	if err != nil {
		res.PhaseResult = contracts.Failed(contracts.StageWatchlist, started, err)
		return res
	}

	res.PhaseResult = contracts.Succeeded(contracts.StageWatchlist, started)
	return res
}

// Watchlist returns a copy of the watchlist in insertion order
func (o *Orchestrator) Watchlist() []contracts.WatchlistEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]contracts.WatchlistEntry{}, o.session.watchlist...)
}
