package match

import (
	"sort"
	"strings"

	"github.com/everstacklabs/modelfuse/internal/source/modelsdev"
)

// candidate is one capability model with its normalized views precomputed.
// Every cascade strategy compares against one of these views, so computing
// them once per index build keeps the scan passes cheap.
type candidate struct {
	providerID string
	modelID    string
	model      *modelsdev.Model

	lower           string // model ID lowercased
	strippedVersion string // version suffix removed
	normalizedSeps  string // dots converted to dashes
	strippedPrefix  string // provider/ prefix removed
}

// Index is the lookup side of the match cascade: one capability snapshot,
// organized for exact per-provider lookup and deterministic full scans.
// Build it once per merge run; it is immutable afterwards and safe for
// concurrent readers.
type Index struct {
	// candidates sorted by provider ID then model ID. Scanning in this
	// order makes strategy outcomes reproducible even when several
	// candidates satisfy the same predicate.
	candidates []candidate

	// byProvider maps provider ID to lowercased model ID to candidate
	// position, for the exact-match fast path.
	byProvider map[string]map[string]int
}

// BuildIndex constructs an Index from a capability snapshot.
func BuildIndex(snapshot modelsdev.Snapshot) *Index {
	idx := &Index{
		byProvider: make(map[string]map[string]int, len(snapshot)),
	}

	providerIDs := make([]string, 0, len(snapshot))
	for id := range snapshot {
		providerIDs = append(providerIDs, id)
	}
	sort.Strings(providerIDs)

	for _, pid := range providerIDs {
		provider := snapshot[pid]

		modelIDs := make([]string, 0, len(provider.Models))
		for id := range provider.Models {
			modelIDs = append(modelIDs, id)
		}
		sort.Strings(modelIDs)

		byModel := make(map[string]int, len(modelIDs))
		for _, mid := range modelIDs {
			model := provider.Models[mid]
			lower := strings.ToLower(mid)
			idx.candidates = append(idx.candidates, candidate{
				providerID:      pid,
				modelID:         mid,
				model:           &model,
				lower:           lower,
				strippedVersion: StripVersionSuffix(lower),
				normalizedSeps:  NormalizeVersionSeparators(lower),
				strippedPrefix:  StripProviderPrefix(lower),
			})
			if _, seen := byModel[lower]; !seen {
				byModel[lower] = len(idx.candidates) - 1
			}
		}
		idx.byProvider[pid] = byModel
	}

	return idx
}

// Len returns the total number of indexed models.
func (idx *Index) Len() int { return len(idx.candidates) }

// lookupExact finds a model by lowercased ID within one provider.
func (idx *Index) lookupExact(providerID, lowerSlug string) *candidate {
	byModel, ok := idx.byProvider[providerID]
	if !ok {
		return nil
	}
	pos, ok := byModel[lowerSlug]
	if !ok {
		return nil
	}
	return &idx.candidates[pos]
}

// scan returns the first candidate, in sorted order, satisfying pred.
func (idx *Index) scan(pred func(*candidate) bool) *candidate {
	for i := range idx.candidates {
		if pred(&idx.candidates[i]) {
			return &idx.candidates[i]
		}
	}
	return nil
}
