package savedobjects

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	httperr "github.com/aevon-lab/metastore/internal/core/errors"
	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgBodyTooLarge   = "Request body exceeds maximum allowed size"
	msgInvalidQuery   = "Invalid query parameters"
)

// apiError carries the structured HTTP error shape from a helper back to the handler.
type apiError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *apiError) Error() string {
	return e.message
}

// namespaceQuery is the caller namespace shared by every object route.
type namespaceQuery struct {
	Namespace string `form:"namespace"`
}

type createRequest struct {
	Attributes        savedobject.Attributes  `json:"attributes" binding:"required"`
	References        []savedobject.Reference `json:"references"`
	MigrationVersion  map[string]string       `json:"migrationVersion"`
	OriginID          string                  `json:"originId"`
	InitialNamespaces []string                `json:"initialNamespaces"`
	Version           string                  `json:"version"`
}

type updateRequest struct {
	Attributes savedobject.Attributes  `json:"attributes" binding:"required"`
	Version    string                  `json:"version"`
	References []savedobject.Reference `json:"references"`
}

type namespacesRequest struct {
	Namespaces []string `json:"namespaces"`
}

type incrementRequest struct {
	MigrationVersion map[string]string `json:"migrationVersion"`
}

type findQuery struct {
	Type         []string `form:"type"`
	Namespaces   []string `form:"namespaces"`
	Search       string   `form:"search"`
	SearchFields []string `form:"search_fields"`
	Fields       []string `form:"fields"`
	Page         int      `form:"page"`
	PerPage      int      `form:"per_page"`
	SortField    string   `form:"sort_field"`
	SortOrder    string   `form:"sort_order"`
	Namespace    string   `form:"namespace"`
}

// HandleCreate handles POST /api/saved_objects/:type[/:id]?overwrite=&namespace=
func (s *Service) HandleCreate(c *gin.Context) {
	var query struct {
		Namespace string `form:"namespace"`
		Overwrite bool   `form:"overwrite"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var req createRequest
	if apiErr := s.bindJSON(c, &req); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	obj, err := s.repo.Create(c.Request.Context(), c.Param("type"), req.Attributes, savedobject.CreateOptions{
		Namespace:         query.Namespace,
		ID:                c.Param("id"),
		Overwrite:         query.Overwrite,
		Version:           req.Version,
		MigrationVersion:  req.MigrationVersion,
		References:        req.References,
		OriginID:          req.OriginID,
		InitialNamespaces: req.InitialNamespaces,
	})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}

	slog.Info("Saved object created", "type", obj.Type, "id", obj.ID, "namespace", query.Namespace)
	c.JSON(http.StatusOK, obj)
}

// HandleGet handles GET /api/saved_objects/:type/:id
func (s *Service) HandleGet(c *gin.Context) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	obj, err := s.repo.Get(c.Request.Context(), c.Param("type"), c.Param("id"), savedobject.BaseOptions{Namespace: query.Namespace})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, obj)
}

// HandleUpdate handles PUT /api/saved_objects/:type/:id
func (s *Service) HandleUpdate(c *gin.Context) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var req updateRequest
	if apiErr := s.bindJSON(c, &req); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	obj, err := s.repo.Update(c.Request.Context(), c.Param("type"), c.Param("id"), req.Attributes, savedobject.UpdateOptions{
		Namespace:  query.Namespace,
		Version:    req.Version,
		References: req.References,
	})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, obj)
}

// HandleDelete handles DELETE /api/saved_objects/:type/:id
func (s *Service) HandleDelete(c *gin.Context) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	err := s.repo.Delete(c.Request.Context(), c.Param("type"), c.Param("id"), savedobject.DeleteOptions{Namespace: query.Namespace})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// HandleDeleteByNamespace handles DELETE /api/saved_objects/_namespace/:namespace
func (s *Service) HandleDeleteByNamespace(c *gin.Context) {
	ns := c.Param("namespace")
	touched, err := s.repo.DeleteByNamespace(c.Request.Context(), ns)
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}

	slog.Info("Namespace deleted", "namespace", ns, "objects_updated", touched)
	c.JSON(http.StatusOK, gin.H{"namespace": ns, "objects_updated": touched})
}

// HandleFind handles GET /api/saved_objects/_find
// Query parameters: type (repeated), namespaces (repeated), search, search_fields,
// fields, page, per_page, sort_field, sort_order, namespace
func (s *Service) HandleFind(c *gin.Context) {
	var query findQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	opts := savedobject.FindOptions{
		Type:         query.Type,
		Namespaces:   query.Namespaces,
		Search:       query.Search,
		SearchFields: query.SearchFields,
		Fields:       query.Fields,
		Page:         query.Page,
		PerPage:      query.PerPage,
		SortField:    query.SortField,
		SortOrder:    savedobject.SortOrder(query.SortOrder),
	}
	// The single caller namespace is shorthand for namespaces=[namespace].
	if opts.Namespaces == nil && query.Namespace != "" {
		opts.Namespaces = []string{query.Namespace}
	}

	resp, err := s.repo.Find(c.Request.Context(), opts)
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleBulkGet handles POST /api/saved_objects/_bulk_get
func (s *Service) HandleBulkGet(c *gin.Context) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var objects []savedobject.BulkGetObject
	if apiErr := s.bindJSON(c, &objects); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	results, err := s.repo.BulkGet(c.Request.Context(), objects, savedobject.BaseOptions{Namespace: query.Namespace})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, savedobject.BulkResponse{SavedObjects: results})
}

// HandleBulkCreate handles POST /api/saved_objects/_bulk_create?overwrite=&namespace=
func (s *Service) HandleBulkCreate(c *gin.Context) {
	var query struct {
		Namespace string `form:"namespace"`
		Overwrite bool   `form:"overwrite"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var objects []savedobject.BulkCreateObject
	if apiErr := s.bindJSON(c, &objects); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	results, err := s.repo.BulkCreate(c.Request.Context(), objects, savedobject.CreateOptions{
		Namespace: query.Namespace,
		Overwrite: query.Overwrite,
	})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, savedobject.BulkResponse{SavedObjects: results})
}

// HandleBulkUpdate handles PUT /api/saved_objects/_bulk_update
func (s *Service) HandleBulkUpdate(c *gin.Context) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var objects []savedobject.BulkUpdateObject
	if apiErr := s.bindJSON(c, &objects); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	results, err := s.repo.BulkUpdate(c.Request.Context(), objects, savedobject.BaseOptions{Namespace: query.Namespace})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, savedobject.BulkResponse{SavedObjects: results})
}

// HandleCheckConflicts handles POST /api/saved_objects/_check_conflicts
func (s *Service) HandleCheckConflicts(c *gin.Context) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var objects []savedobject.CheckConflictsObject
	if apiErr := s.bindJSON(c, &objects); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	resp, err := s.repo.CheckConflicts(c.Request.Context(), objects, savedobject.BaseOptions{Namespace: query.Namespace})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleIncrementCounter handles POST /api/saved_objects/:type/:id/_increment/:field
// The body is optional.
func (s *Service) HandleIncrementCounter(c *gin.Context) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var req incrementRequest
	if c.Request.ContentLength != 0 {
		if apiErr := s.bindJSON(c, &req); apiErr != nil {
			writeError(c, apiErr)
			return
		}
	}

	obj, err := s.repo.IncrementCounter(c.Request.Context(), c.Param("type"), c.Param("id"), c.Param("field"), savedobject.IncrementCounterOptions{
		Namespace:        query.Namespace,
		MigrationVersion: req.MigrationVersion,
	})
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, obj)
}

// HandleAddToNamespaces handles POST /api/saved_objects/:type/:id/_add_to_namespaces
func (s *Service) HandleAddToNamespaces(c *gin.Context) {
	s.handleNamespaces(c, false)
}

// HandleDeleteFromNamespaces handles POST /api/saved_objects/:type/:id/_delete_from_namespaces
// A 404 whose details carry removed=true means the object lost its last
// namespace and was deleted.
func (s *Service) HandleDeleteFromNamespaces(c *gin.Context) {
	s.handleNamespaces(c, true)
}

func (s *Service) handleNamespaces(c *gin.Context, remove bool) {
	var query namespaceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		writeError(c, invalidQuery(err))
		return
	}

	var req namespacesRequest
	if apiErr := s.bindJSON(c, &req); apiErr != nil {
		writeError(c, apiErr)
		return
	}

	typ, id := c.Param("type"), c.Param("id")
	opts := savedobject.NamespacesOptions{Namespace: query.Namespace}

	var (
		resp *savedobject.NamespacesResponse
		err  error
	)
	if remove {
		resp, err = s.repo.DeleteFromNamespaces(c.Request.Context(), typ, id, req.Namespaces, opts)
	} else {
		resp, err = s.repo.AddToNamespaces(c.Request.Context(), typ, id, req.Namespaces, opts)
	}
	if err != nil {
		writeError(c, repositoryError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindJSON reads at most maxBodySizeBytes of the body and decodes it into dst.
func (s *Service) bindJSON(c *gin.Context, dst interface{}) *apiError {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return &apiError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgBodyTooLarge,
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
			details:    err.Error(),
		}
	}
	return nil
}

func invalidQuery(err error) *apiError {
	return &apiError{
		statusCode: http.StatusBadRequest,
		errorType:  httperr.HttpBadRequestError,
		message:    msgInvalidQuery,
		details:    err.Error(),
	}
}

// repositoryError maps a typed repository error to the HTTP error shape.
// Storage failures are logged and reported without their cause.
func repositoryError(err error) *apiError {
	typed := savedobject.AsError(err)

	errorType := httperr.HttpInternalError
	switch typed.Kind {
	case savedobject.KindBadRequest:
		errorType = httperr.HttpBadRequestError
	case savedobject.KindUnsupportedType:
		errorType = httperr.HttpUnsupportedTypeError
	case savedobject.KindNotFound:
		errorType = httperr.HttpNotFoundError
	case savedobject.KindConflict:
		errorType = httperr.HttpConflictError
	case savedobject.KindStorageFailure:
		slog.Error("Saved object storage failure", "error", err)
		return &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpStorageError,
			message:    typed.Message,
		}
	}

	details := map[string]interface{}{}
	if typed.Type != "" {
		details["type"] = typed.Type
	}
	if typed.ID != "" {
		details["id"] = typed.ID
	}
	if typed.NotOverwritable {
		details["isNotOverwritable"] = true
	}
	if typed.Removed {
		details["removed"] = true
	}

	apiErr := &apiError{
		statusCode: typed.StatusCode(),
		errorType:  errorType,
		message:    typed.Message,
	}
	if len(details) > 0 {
		apiErr.details = details
	}
	return apiErr
}

// writeError serializes an apiError as the JSON HTTP response.
func writeError(c *gin.Context, err *apiError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
