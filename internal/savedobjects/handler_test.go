package savedobjects

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httperr "github.com/aevon-lab/metastore/internal/core/errors"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	repositorymocks "github.com/aevon-lab/metastore/internal/mocks/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repositorymocks.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repositorymocks.NewRepository(t)
	svc := NewService(repo, 1)

	r := gin.New()
	svc.RegisterRoutes(r)
	return r, repo
}

func doRequest(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) httperr.ErrorResponse {
	t.Helper()
	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestNewService_PanicsOnNilRepository(t *testing.T) {
	require.Panics(t, func() { NewService(nil, 1) })
}

func TestHandleCreate_Success(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("Create", mock.Anything, "dashboard", mock.MatchedBy(func(attrs savedobject.Attributes) bool {
		return attrs["title"] == "Sales"
	}), savedobject.CreateOptions{
		Namespace:  "space-a",
		ID:         "d1",
		Overwrite:  true,
		References: []savedobject.Reference{{Name: "ref_0", Type: "index-pattern", ID: "p1"}},
	}).Return(&savedobject.SavedObject{
		ID:         "d1",
		Type:       "dashboard",
		Namespaces: []string{"space-a"},
		Version:    "WzEsMV0=",
		Attributes: savedobject.Attributes{"title": "Sales"},
		References: []savedobject.Reference{{Name: "ref_0", Type: "index-pattern", ID: "p1"}},
	}, nil).Once()

	body := `{"attributes":{"title":"Sales"},"references":[{"name":"ref_0","type":"index-pattern","id":"p1"}]}`
	resp := doRequest(r, http.MethodPost, "/api/saved_objects/dashboard/d1?overwrite=true&namespace=space-a", body)

	require.Equal(t, http.StatusOK, resp.Code)
	var obj savedobject.SavedObject
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &obj))
	assert.Equal(t, "d1", obj.ID)
	assert.Equal(t, "WzEsMV0=", obj.Version)
	assert.Equal(t, []string{"space-a"}, obj.Namespaces)
}

func TestHandleCreate_GeneratedID(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("Create", mock.Anything, "dashboard", mock.Anything, mock.MatchedBy(func(opts savedobject.CreateOptions) bool {
		return opts.ID == "" && !opts.Overwrite
	})).Return(&savedobject.SavedObject{ID: "generated", Type: "dashboard", Attributes: savedobject.Attributes{}}, nil).Once()

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/dashboard", `{"attributes":{}}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"id":"generated"`)
}

func TestHandleCreate_InvalidJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/dashboard/d1", `{"attributes": [bad json`)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, httperr.HttpInvalidJsonError, decodeError(t, resp).ErrorType)
}

func TestHandleCreate_MissingAttributes(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/dashboard/d1", `{"references":[]}`)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, httperr.HttpInvalidJsonError, decodeError(t, resp).ErrorType)
}

func TestHandleCreate_BodyTooLarge(t *testing.T) {
	r, _ := newTestRouter(t)

	large := `{"attributes":{"blob":"` + strings.Repeat("x", 1024*1024+10) + `"}}`
	resp := doRequest(r, http.MethodPost, "/api/saved_objects/dashboard/d1", large)

	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Equal(t, msgBodyTooLarge, decodeError(t, resp).Message)
}

func TestHandleCreate_ConflictNotOverwritable(t *testing.T) {
	r, repo := newTestRouter(t)

	conflict := savedobject.NewConflict("dashboard", "d1")
	conflict.NotOverwritable = true
	repo.On("Create", mock.Anything, "dashboard", mock.Anything, mock.Anything).Return(nil, conflict).Once()

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/dashboard/d1", `{"attributes":{}}`)

	require.Equal(t, http.StatusConflict, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, httperr.HttpConflictError, body.ErrorType)
	assert.Equal(t, map[string]interface{}{"type": "dashboard", "id": "d1", "isNotOverwritable": true}, body.Details)
}

func TestHandleGet_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantType  string
		wantInMsg string
	}{
		{"not found", savedobject.NewNotFound("dashboard", "d1"), http.StatusNotFound, httperr.HttpNotFoundError, ""},
		{"unsupported type", savedobject.NewUnsupportedType("secret"), http.StatusBadRequest, httperr.HttpUnsupportedTypeError, ""},
		{"bad request", savedobject.NewBadRequest("bad id"), http.StatusBadRequest, httperr.HttpBadRequestError, "bad id"},
		{"storage failure", savedobject.NewStorageFailure("failed to get saved object", errors.New("disk gone")), http.StatusInternalServerError, httperr.HttpStorageError, "failed to get saved object"},
		{"untyped error", errors.New("boom"), http.StatusInternalServerError, httperr.HttpStorageError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := newTestRouter(t)
			repo.On("Get", mock.Anything, "dashboard", "d1", savedobject.BaseOptions{Namespace: "space-a"}).
				Return(nil, tt.err).Once()

			resp := doRequest(r, http.MethodGet, "/api/saved_objects/dashboard/d1?namespace=space-a", "")

			require.Equal(t, tt.wantCode, resp.Code)
			body := decodeError(t, resp)
			assert.Equal(t, tt.wantType, body.ErrorType)
			if tt.wantInMsg != "" {
				assert.Contains(t, body.Message, tt.wantInMsg)
			}
			assert.NotContains(t, resp.Body.String(), "disk gone")
		})
	}
}

func TestHandleUpdate_PassesVersionAndReferences(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("Update", mock.Anything, "dashboard", "d1", savedobject.Attributes{"title": "New"}, savedobject.UpdateOptions{
		Version:    "WzEsMV0=",
		References: []savedobject.Reference{},
	}).Return(&savedobject.SavedObject{ID: "d1", Type: "dashboard", Version: "WzIsMV0=", Attributes: savedobject.Attributes{"title": "New"}}, nil).Once()

	resp := doRequest(r, http.MethodPut, "/api/saved_objects/dashboard/d1", `{"attributes":{"title":"New"},"version":"WzEsMV0=","references":[]}`)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"version":"WzIsMV0="`)
}

func TestHandleDelete(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("Delete", mock.Anything, "dashboard", "d1", savedobject.DeleteOptions{Namespace: "space-a"}).Return(nil).Once()

	resp := doRequest(r, http.MethodDelete, "/api/saved_objects/dashboard/d1?namespace=space-a", "")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{}`, resp.Body.String())
}

func TestHandleDeleteByNamespace(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("DeleteByNamespace", mock.Anything, "space-a").Return(3, nil).Once()

	resp := doRequest(r, http.MethodDelete, "/api/saved_objects/_namespace/space-a", "")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"namespace":"space-a","objects_updated":3}`, resp.Body.String())
}

func TestHandleFind_BindsQuery(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("Find", mock.Anything, savedobject.FindOptions{
		Type:         []string{"dashboard", "visualization"},
		Namespaces:   []string{"space-a"},
		Search:       "sal*",
		SearchFields: []string{"title"},
		Page:         2,
		PerPage:      5,
		SortField:    "updated_at",
		SortOrder:    savedobject.SortDesc,
	}).Return(&savedobject.FindResponse{
		Page:    2,
		PerPage: 5,
		Total:   6,
		SavedObjects: []savedobject.FindResult{
			{SavedObject: savedobject.SavedObject{ID: "d6", Type: "dashboard", Attributes: savedobject.Attributes{"title": "Sales 6"}}},
		},
	}, nil).Once()

	target := "/api/saved_objects/_find?type=dashboard&type=visualization&namespace=space-a" +
		"&search=sal*&search_fields=title&page=2&per_page=5&sort_field=updated_at&sort_order=desc"
	resp := doRequest(r, http.MethodGet, target, "")

	require.Equal(t, http.StatusOK, resp.Code)
	var found savedobject.FindResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &found))
	assert.Equal(t, 6, found.Total)
	require.Len(t, found.SavedObjects, 1)
	assert.Equal(t, "d6", found.SavedObjects[0].ID)
}

func TestHandleFind_NoNamespaceMeansDefault(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("Find", mock.Anything, mock.MatchedBy(func(opts savedobject.FindOptions) bool {
		return opts.Namespaces == nil
	})).Return(savedobject.EmptyFindResponse(savedobject.FindOptions{}), nil).Once()

	resp := doRequest(r, http.MethodGet, "/api/saved_objects/_find?type=dashboard", "")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"page":1,"per_page":20,"total":0,"saved_objects":[]}`, resp.Body.String())
}

func TestHandleFind_InvalidPage(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := doRequest(r, http.MethodGet, "/api/saved_objects/_find?type=dashboard&page=abc", "")

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, httperr.HttpBadRequestError, decodeError(t, resp).ErrorType)
}

func TestHandleBulkGet_MixedResults(t *testing.T) {
	r, repo := newTestRouter(t)

	objects := []savedobject.BulkGetObject{{Type: "dashboard", ID: "d1"}, {Type: "dashboard", ID: "missing"}}
	repo.On("BulkGet", mock.Anything, objects, savedobject.BaseOptions{}).Return([]savedobject.BulkResult{
		savedobject.Success(&savedobject.SavedObject{ID: "d1", Type: "dashboard", Attributes: savedobject.Attributes{}}),
		savedobject.Failure("dashboard", "missing", savedobject.NewNotFound("dashboard", "missing")),
	}, nil).Once()

	body, err := json.Marshal(objects)
	require.NoError(t, err)
	resp := doRequest(r, http.MethodPost, "/api/saved_objects/_bulk_get", string(body))

	require.Equal(t, http.StatusOK, resp.Code)
	var decoded struct {
		SavedObjects []map[string]interface{} `json:"saved_objects"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &decoded))
	require.Len(t, decoded.SavedObjects, 2)
	assert.Equal(t, "d1", decoded.SavedObjects[0]["id"])
	assert.NotContains(t, decoded.SavedObjects[0], "error")
	itemErr, ok := decoded.SavedObjects[1]["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(http.StatusNotFound), itemErr["statusCode"])
}

func TestHandleBulkCreate_PassesOverwrite(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("BulkCreate", mock.Anything, mock.MatchedBy(func(objs []savedobject.BulkCreateObject) bool {
		return len(objs) == 1 && objs[0].Type == "dashboard" && objs[0].ID == "d1"
	}), savedobject.CreateOptions{Namespace: "space-a", Overwrite: true}).Return([]savedobject.BulkResult{
		savedobject.Success(&savedobject.SavedObject{ID: "d1", Type: "dashboard", Attributes: savedobject.Attributes{}}),
	}, nil).Once()

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/_bulk_create?overwrite=true&namespace=space-a",
		`[{"type":"dashboard","id":"d1","attributes":{}}]`)

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestHandleBulkUpdate(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("BulkUpdate", mock.Anything, mock.MatchedBy(func(objs []savedobject.BulkUpdateObject) bool {
		return len(objs) == 1 && objs[0].Namespace == "space-b"
	}), savedobject.BaseOptions{Namespace: "space-a"}).Return([]savedobject.BulkResult{
		savedobject.Failure("dashboard", "d1", savedobject.NewConflict("dashboard", "d1")),
	}, nil).Once()

	resp := doRequest(r, http.MethodPut, "/api/saved_objects/_bulk_update?namespace=space-a",
		`[{"type":"dashboard","id":"d1","attributes":{"title":"x"},"namespace":"space-b"}]`)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"statusCode":409`)
}

func TestHandleCheckConflicts(t *testing.T) {
	r, repo := newTestRouter(t)

	conflict := savedobject.NewConflict("dashboard", "d1")
	repo.On("CheckConflicts", mock.Anything, []savedobject.CheckConflictsObject{{Type: "dashboard", ID: "d1"}}, savedobject.BaseOptions{}).
		Return(&savedobject.CheckConflictsResponse{Errors: []savedobject.ConflictError{{ID: "d1", Type: "dashboard", Error: conflict}}}, nil).Once()

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/_check_conflicts", `[{"type":"dashboard","id":"d1"}]`)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"errors":[{"id":"d1","type":"dashboard"`)
}

func TestHandleIncrementCounter(t *testing.T) {
	t.Run("without body", func(t *testing.T) {
		r, repo := newTestRouter(t)
		repo.On("IncrementCounter", mock.Anything, "usage", "u1", "hits", savedobject.IncrementCounterOptions{}).
			Return(&savedobject.SavedObject{ID: "u1", Type: "usage", Attributes: savedobject.Attributes{"hits": 2}}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/saved_objects/usage/u1/_increment/hits", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"hits":2`)
	})

	t.Run("with migration version", func(t *testing.T) {
		r, repo := newTestRouter(t)
		repo.On("IncrementCounter", mock.Anything, "usage", "u1", "hits", savedobject.IncrementCounterOptions{
			Namespace:        "space-a",
			MigrationVersion: map[string]string{"usage": "7.0.0"},
		}).Return(&savedobject.SavedObject{ID: "u1", Type: "usage", Attributes: savedobject.Attributes{"hits": 1}}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/saved_objects/usage/u1/_increment/hits?namespace=space-a",
			bytes.NewReader([]byte(`{"migrationVersion":{"usage":"7.0.0"}}`)))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestHandleAddToNamespaces(t *testing.T) {
	r, repo := newTestRouter(t)

	repo.On("AddToNamespaces", mock.Anything, "index-pattern", "p1", []string{"space-b"}, savedobject.NamespacesOptions{Namespace: "space-a"}).
		Return(&savedobject.NamespacesResponse{Namespaces: []string{"space-a", "space-b"}}, nil).Once()

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/index-pattern/p1/_add_to_namespaces?namespace=space-a",
		`{"namespaces":["space-b"]}`)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"namespaces":["space-a","space-b"]}`, resp.Body.String())
}

func TestHandleDeleteFromNamespaces_RemovedObject(t *testing.T) {
	r, repo := newTestRouter(t)

	removed := savedobject.NewNotFound("index-pattern", "p1")
	removed.Removed = true
	repo.On("DeleteFromNamespaces", mock.Anything, "index-pattern", "p1", []string{"space-a"}, savedobject.NamespacesOptions{}).
		Return(nil, removed).Once()

	resp := doRequest(r, http.MethodPost, "/api/saved_objects/index-pattern/p1/_delete_from_namespaces",
		`{"namespaces":["space-a"]}`)

	require.Equal(t, http.StatusNotFound, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, httperr.HttpNotFoundError, body.ErrorType)
	details, ok := body.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, details["removed"])
}
