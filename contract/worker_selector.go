package contract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"jobledger/ledger"
	"jobledger/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var workerLogger = flogging.MustGetLogger("jobledger.workers")

// assignmentIndex is declared in META-INF/statedb/couchdb/indexes/indexAssignment.json.
var assignmentIndex = []string{"_design/indexAssignmentDoc", "indexAssignment"}

// WorkerSelector picks the workers a job is distributed to.
type WorkerSelector struct {
	Ledger ledger.Ledger
	Helper ledger.Helper
	// SampleFactor is how many candidates per requested worker are read
	// before thinning. Values below 1 are treated as 1.
	SampleFactor int
}

// NewWorkerSelector creates a selector over one transaction's ledger view.
func NewWorkerSelector(l ledger.Ledger, h ledger.Helper, sampleFactor int) *WorkerSelector {
	return &WorkerSelector{Ledger: l, Helper: h, SampleFactor: sampleFactor}
}

type candidate struct {
	id       string
	identity model.Identity
}

// ParseWorkerCount parses the count argument of a selection request.
func ParseWorkerCount(raw string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 0 {
		return 0, fmt.Errorf("%w: worker count '%s' must be a non-negative integer", ErrInvalidArgument, raw)
	}
	return count, nil
}

// SelectWorkers returns up to count identities other than the caller, the
// longest idle first, and stamps each with the current ledger time.
//
// Candidates are ordered by lastAssignment, then registryDate, then id. When the
// sample holds more than count candidates, every stride-th one is taken
// so concurrent selections spread over the idle population instead of all
// hitting the single stalest set.
func (s *WorkerSelector) SelectWorkers(count int) ([]model.WorkerRef, error) {
	refs := []model.WorkerRef{}
	if count < 0 {
		return nil, fmt.Errorf("%w: worker count must be non-negative, got %d", ErrInvalidArgument, count)
	}
	if count == 0 {
		return refs, nil
	}

	callerID, err := s.Helper.CallerID()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller id: %w", err)
	}

	factor := s.SampleFactor
	if factor < 1 {
		factor = 1
	}
	sampleSize := count * factor

	q := ledger.Query{
		ExcludeKeys: []string{callerID},
		Exists:      []string{"lastAssignment", "registryDate"},
		Sort: []ledger.SortField{
			{Field: "lastAssignment", Order: ledger.Asc},
			{Field: "registryDate", Order: ledger.Asc},
			{Field: ledger.KeyField, Order: ledger.Asc},
		},
		Limit:    sampleSize,
		UseIndex: assignmentIndex,
	}
	it, err := s.Ledger.Query(q)
	if err != nil {
		return nil, fmt.Errorf("failed to query worker candidates: %w", err)
	}
	results, err := ledger.Collect(it, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read worker candidates: %w", err)
	}

	sample := make([]candidate, 0, len(results))
	for _, kv := range results {
		if kv.Key == callerID {
			continue
		}
		var identity model.Identity
		if err := json.Unmarshal(kv.Value, &identity); err != nil {
			workerLogger.Warningf("SelectWorkers: failed to unmarshal candidate '%s': %v. Skipping.", kv.Key, err)
			continue
		}
		sample = append(sample, candidate{id: kv.Key, identity: identity})
	}

	selected := make([]candidate, 0, count)
	for _, i := range strideIndices(len(sample), count) {
		selected = append(selected, sample[i])
	}
	if len(selected) == 0 {
		workerLogger.Infof("SelectWorkers: no eligible workers for caller '%s'", callerID)
		return refs, nil
	}

	now, err := s.Helper.Timestamp()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignment time: %w", err)
	}
	for _, c := range selected {
		if err := s.markAssigned(c, now); err != nil {
			return nil, err
		}
		refs = append(refs, model.WorkerRef{ID: c.id, PublicKey: c.identity.PublicKey})
	}

	workerLogger.Infof("SelectWorkers: assigned %d of %d requested workers (sample %d) for caller '%s' at %d",
		len(refs), count, len(sample), callerID, now)
	return refs, nil
}

// markAssigned advances lastAssignment strictly, even within one ledger tick.
func (s *WorkerSelector) markAssigned(c candidate, now int64) error {
	next := now
	if next <= c.identity.LastAssignment {
		next = c.identity.LastAssignment + 1
	}
	c.identity.LastAssignment = next

	b, err := json.Marshal(c.identity)
	if err != nil {
		return fmt.Errorf("failed to marshal worker '%s': %w", c.id, err)
	}
	if err := s.Ledger.PutState(c.id, b); err != nil {
		return fmt.Errorf("failed to save assignment for worker '%s': %w", c.id, err)
	}
	return nil
}

// strideIndices picks count positions out of n ordered ones. With n <= count
// every position is kept. Otherwise it takes every ceil(n/count)-th position
// and tops up with the earliest skipped ones when the stride falls short.
// The result is ascending.
func strideIndices(n, count int) []int {
	if count <= 0 || n <= 0 {
		return nil
	}
	if n <= count {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}

	stride := (n + count - 1) / count
	picked := make(map[int]bool, count)
	indices := make([]int, 0, count)
	for i := 0; i < n && len(indices) < count; i += stride {
		picked[i] = true
		indices = append(indices, i)
	}
	for i := 0; i < n && len(indices) < count; i++ {
		if !picked[i] {
			picked[i] = true
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices
}
