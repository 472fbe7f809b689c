package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.mongodb.org/mongo-driver/bson"
)

// ChangedFields returns the top-level document fields whose persisted value
// differs between before and after. The identifier is never reported.
//
// Both users are rendered as canonical extended JSON keyed by bson field name
// so the merge patch keys are exactly the document paths.
func ChangedFields(before, after *User) ([]string, error) {
	if before == nil || after == nil {
		return nil, ErrNilUser
	}

	beforeJSON, err := bson.MarshalExtJSON(before, true, false)
	if err != nil {
		return nil, fmt.Errorf("marshal persisted user: %w", err)
	}
	afterJSON, err := bson.MarshalExtJSON(after, true, false)
	if err != nil {
		return nil, fmt.Errorf("marshal modified user: %w", err)
	}

	patch, err := jsonpatch.CreateMergePatch(beforeJSON, afterJSON)
	if err != nil {
		return nil, fmt.Errorf("create merge patch: %w", err)
	}

	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, fmt.Errorf("decode merge patch: %w", err)
	}

	fields := make([]string, 0, len(changes))
	for k := range changes {
		if k == FieldID {
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields, nil
}
