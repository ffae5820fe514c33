package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryMarshalJSON(t *testing.T) {
	q := Query{
		ExcludeKeys: []string{"me"},
		Exists:      []string{"lastAssignment"},
		Sort: []SortField{
			{Field: "lastAssignment", Order: Asc},
			{Field: "registryDate"},
		},
		Limit:    6,
		UseIndex: []string{"_design/indexAssignmentDoc", "indexAssignment"},
	}

	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"selector": {
			"_id": {"$nin": ["me"]},
			"lastAssignment": {"$exists": true}
		},
		"sort": [{"lastAssignment": "asc"}, {"registryDate": "asc"}],
		"limit": 6,
		"use_index": ["_design/indexAssignmentDoc", "indexAssignment"]
	}`, string(b))
	assert.Equal(t, string(b), q.String())
}

func TestQueryMarshalJSON_Empty(t *testing.T) {
	b, err := json.Marshal(Query{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"selector": {}}`, string(b))
}
