package services

import (
	"sort"
	"time"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
)

// HeuristicMatchWindow is how far apart the creation timestamps of a local and
// an external record may be for the heuristic rule to consider them the same
// economic event.
const HeuristicMatchWindow = 5 * time.Minute

// MatchTransactions pairs local and external records 1:1 with no hidden
// mutable state: exact-reference matches first, then a heuristic pass on
// minor-unit amount plus timestamp proximity. A record is used at most once.
// When the heuristic finds more than one candidate the engine does not guess:
// the local record and every candidate land in the Ambiguous set and appear in
// neither the matched nor the orphan sets.
//
// Inputs are sorted by creation time then id before matching, so re-running
// over the same closed window yields an identical result.
func MatchTransactions(locals []domain.Transaction, externals []domain.ExternalTransaction) domain.MatchResult {
	sortedLocals := make([]domain.Transaction, len(locals))
	copy(sortedLocals, locals)
	sort.Slice(sortedLocals, func(i, j int) bool {
		if !sortedLocals[i].CreatedAt.Equal(sortedLocals[j].CreatedAt) {
			return sortedLocals[i].CreatedAt.Before(sortedLocals[j].CreatedAt)
		}
		return sortedLocals[i].TransactionID < sortedLocals[j].TransactionID
	})

	sortedExternals := make([]domain.ExternalTransaction, len(externals))
	copy(sortedExternals, externals)
	sort.Slice(sortedExternals, func(i, j int) bool {
		if !sortedExternals[i].CreatedAt.Equal(sortedExternals[j].CreatedAt) {
			return sortedExternals[i].CreatedAt.Before(sortedExternals[j].CreatedAt)
		}
		return sortedExternals[i].ExternalID < sortedExternals[j].ExternalID
	})

	// Index externals by their own id and by their linked intent id for the
	// exact-reference pass.
	byReference := make(map[string]int, len(sortedExternals))
	for i, ext := range sortedExternals {
		byReference[ext.ExternalID] = i
		if ext.IntentID != nil && *ext.IntentID != "" {
			byReference[*ext.IntentID] = i
		}
	}

	result := domain.MatchResult{}
	localConsumed := make([]bool, len(sortedLocals))
	externalConsumed := make([]bool, len(sortedExternals))

	// Pass 1: exact reference match.
	for i, local := range sortedLocals {
		if local.ExternalRef == nil || *local.ExternalRef == "" {
			continue
		}
		idx, ok := byReference[*local.ExternalRef]
		if !ok || externalConsumed[idx] {
			continue
		}
		result.Matches = append(result.Matches, domain.MatchedPair{
			Local:    local,
			External: sortedExternals[idx],
		})
		localConsumed[i] = true
		externalConsumed[idx] = true
	}

	// Bucket the remaining externals by minor-unit amount to bound the
	// heuristic pass; semantics are identical to scanning every pair.
	byAmount := make(map[int64][]int)
	for i := range sortedExternals {
		if !externalConsumed[i] {
			byAmount[sortedExternals[i].AmountMinor] = append(byAmount[sortedExternals[i].AmountMinor], i)
		}
	}

	// Pass 2: heuristic match on amount and timestamp proximity.
	for i, local := range sortedLocals {
		if localConsumed[i] {
			continue
		}
		var candidates []int
		for _, idx := range byAmount[local.AmountMinorUnits()] {
			ext := sortedExternals[idx]
			if externalConsumed[idx] || ext.CurrencyCode != local.CurrencyCode {
				continue
			}
			delta := ext.CreatedAt.Sub(local.CreatedAt)
			if delta < 0 {
				delta = -delta
			}
			if delta <= HeuristicMatchWindow {
				candidates = append(candidates, idx)
			}
		}

		switch len(candidates) {
		case 0:
			// Stays unmatched; classified as an orphan below.
		case 1:
			idx := candidates[0]
			result.Matches = append(result.Matches, domain.MatchedPair{
				Local:    local,
				External: sortedExternals[idx],
			})
			localConsumed[i] = true
			externalConsumed[idx] = true
		default:
			ambiguous := domain.AmbiguousMatch{Local: local}
			for _, idx := range candidates {
				ambiguous.Candidates = append(ambiguous.Candidates, sortedExternals[idx])
				externalConsumed[idx] = true
			}
			result.Ambiguous = append(result.Ambiguous, ambiguous)
			localConsumed[i] = true
		}
	}

	for i, local := range sortedLocals {
		if !localConsumed[i] {
			result.OrphansLocal = append(result.OrphansLocal, local)
		}
	}
	for i, ext := range sortedExternals {
		if !externalConsumed[i] {
			result.OrphansExternal = append(result.OrphansExternal, ext)
		}
	}

	return result
}
