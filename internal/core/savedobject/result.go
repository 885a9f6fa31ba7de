package savedobject

import "encoding/json"

// BulkResult is the per-item outcome of a bulk operation: exactly one of
// Object and Err is set.
type BulkResult struct {
	Object *SavedObject
	Err    *Error

	// ID and Type identify the item when Err is set.
	ID   string
	Type string
}

// Success wraps a saved object.
func Success(obj *SavedObject) BulkResult {
	return BulkResult{Object: obj, ID: obj.ID, Type: obj.Type}
}

// Failure wraps a typed error for the item (typ, id).
func Failure(typ, id string, err error) BulkResult {
	return BulkResult{Err: AsError(err), ID: id, Type: typ}
}

// IsError reports whether the item failed.
func (r BulkResult) IsError() bool {
	return r.Err != nil
}

// MarshalJSON renders successes as the saved object and failures as {id, type, error}.
func (r BulkResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			ID    string `json:"id"`
			Type  string `json:"type"`
			Error *Error `json:"error"`
		}{r.ID, r.Type, r.Err})
	}
	return json.Marshal(r.Object)
}

// BulkResponse is returned by BulkCreate, BulkGet and BulkUpdate.
type BulkResponse struct {
	SavedObjects []BulkResult `json:"saved_objects"`
}
