package ledger

import (
	"encoding/json"
	"fmt"
)

// SortOrder is the direction of a sort field in a rich query.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// KeyField names the document key in selectors and sorts.
const KeyField = "_id"

// SortField orders query results by one JSON field of the stored value.
type SortField struct {
	Field string
	Order SortOrder
}

// Query is a rich selector over JSON values. StubLedger renders it as a
// CouchDB Mango query; other implementations evaluate it directly.
type Query struct {
	// ExcludeKeys drops documents whose ledger key is listed.
	ExcludeKeys []string
	// Exists keeps only documents that carry every listed field.
	Exists []string
	Sort   []SortField
	// Limit caps the number of results when > 0.
	Limit int
	// UseIndex names a CouchDB design document and index, e.g.
	// ["_design/indexAssignmentDoc", "indexAssignment"].
	UseIndex []string
}

// MarshalJSON renders q as a Mango query document.
func (q Query) MarshalJSON() ([]byte, error) {
	selector := map[string]interface{}{}
	if len(q.ExcludeKeys) > 0 {
		selector[KeyField] = map[string]interface{}{"$nin": q.ExcludeKeys}
	}
	for _, f := range q.Exists {
		selector[f] = map[string]interface{}{"$exists": true}
	}

	doc := map[string]interface{}{"selector": selector}
	if len(q.Sort) > 0 {
		sort := make([]map[string]string, 0, len(q.Sort))
		for _, s := range q.Sort {
			order := s.Order
			if order == "" {
				order = Asc
			}
			sort = append(sort, map[string]string{s.Field: string(order)})
		}
		doc["sort"] = sort
	}
	if q.Limit > 0 {
		doc["limit"] = q.Limit
	}
	if len(q.UseIndex) > 0 {
		doc["use_index"] = q.UseIndex
	}
	return json.Marshal(doc)
}

// String returns the Mango rendering of q, or a placeholder on failure.
func (q Query) String() string {
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Sprintf("<invalid query: %v>", err)
	}
	return string(b)
}
