package savedobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_KindPredicates(t *testing.T) {
	cause := errors.New("connection reset")
	storage := NewStorageFailure("failed to get saved object", cause)
	wrapped := fmt.Errorf("bulk item: %w", NewConflict("dashboard", "d1"))

	assert.True(t, IsBadRequest(NewBadRequest("bad %s", "id")))
	assert.True(t, IsUnsupportedType(NewUnsupportedType("secret")))
	assert.True(t, IsNotFound(NewNotFound("dashboard", "d1")))
	assert.True(t, IsConflict(wrapped))
	assert.True(t, IsStorageFailure(storage))
	assert.ErrorIs(t, storage, cause)
	assert.False(t, IsNotFound(wrapped))

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, KindStorageFailure, KindOf(errors.New("untyped")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestError_StatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewBadRequest("x").StatusCode())
	assert.Equal(t, http.StatusBadRequest, NewUnsupportedType("secret").StatusCode())
	assert.Equal(t, http.StatusNotFound, NewNotFound("a", "b").StatusCode())
	assert.Equal(t, http.StatusConflict, NewConflict("a", "b").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, NewStorageFailure("op", nil).StatusCode())
}

func TestIsObjectRemoved(t *testing.T) {
	removed := NewNotFound("index-pattern", "p1")
	removed.Removed = true

	assert.True(t, IsObjectRemoved(removed))
	assert.False(t, IsObjectRemoved(NewNotFound("index-pattern", "p1")))
}

func TestError_MarshalJSON(t *testing.T) {
	conflict := NewConflict("dashboard", "d1")
	conflict.NotOverwritable = true

	raw, err := json.Marshal(conflict)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"statusCode": 409,
		"error": "Conflict",
		"message": "Saved object [dashboard/d1] conflict",
		"metadata": {"isNotOverwritable": true}
	}`, string(raw))
}

func TestBulkResult_MarshalJSON(t *testing.T) {
	ok := Success(&SavedObject{ID: "d1", Type: "dashboard", Attributes: Attributes{"title": "Sales"}})
	failed := Failure("dashboard", "d2", NewNotFound("dashboard", "d2"))

	raw, err := json.Marshal(BulkResponse{SavedObjects: []BulkResult{ok, failed}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"saved_objects": [
		{"id": "d1", "type": "dashboard", "attributes": {"title": "Sales"}, "references": null},
		{"id": "d2", "type": "dashboard", "error": {
			"statusCode": 404,
			"error": "Not Found",
			"message": "Saved object [dashboard/d2] not found"
		}}
	]}`, string(raw))
	assert.False(t, ok.IsError())
	assert.True(t, failed.IsError())
}
