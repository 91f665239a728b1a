package item

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Create is the write-shape accepted by POST /items.
type Create struct {
	Name string
}

// Read is the read-shape returned to clients. It has the same fields as Item
// so a row converts with Read(row).
type Read struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewRead(it Item) Read {
	return Read(it)
}

func NewReads(items []Item) []Read {
	out := make([]Read, 0, len(items))
	for _, it := range items {
		out = append(out, Read(it))
	}
	return out
}

var (
	bodyLoc = []string{"body"}
	nameLoc = []string{"body", "name"}
)

// DecodeCreate parses a JSON request body into a Create. Unknown fields are
// ignored. The name is kept exactly as sent.
func DecodeCreate(data []byte) (Create, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Create{}, newValidationError(nil, bodyLoc, "field required", "value_error.missing")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Create{}, newValidationError(err, bodyLoc, "value is not a valid dict", "type_error.dict")
		}
		return Create{}, newValidationError(err, bodyLoc, "Expecting value: "+err.Error(), "value_error.jsondecode")
	}
	if fields == nil {
		return Create{}, newValidationError(nil, bodyLoc, "field required", "value_error.missing")
	}

	raw, ok := fields["name"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return Create{}, newValidationError(ErrNameRequired, nameLoc, "field required", "value_error.missing")
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return Create{}, newValidationError(err, nameLoc, "str type expected", "type_error.str")
	}

	in := Create{Name: name}
	if err := in.Validate(); err != nil {
		return Create{}, err
	}
	return in, nil
}

func (c Create) Validate() error {
	if c.Name == "" {
		return newValidationError(ErrNameRequired, nameLoc, "ensure this value has at least 1 characters", "value_error.any_str.min_length")
	}
	return nil
}
