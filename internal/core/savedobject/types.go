package savedobject

import "time"

// TimeLayout is the millisecond ISO-8601 layout used for updated_at stamps.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Attributes is the opaque payload of a saved object. Its shape is owned by the type.
type Attributes = map[string]any

// Reference links a saved object to another saved object.
type Reference struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   string `json:"id"`
}

// SavedObject is the logical document returned to callers.
type SavedObject struct {
	ID               string            `json:"id"`
	Type             string            `json:"type"`
	Namespaces       []string          `json:"namespaces,omitempty"`
	OriginID         string            `json:"originId,omitempty"`
	UpdatedAt        string            `json:"updated_at,omitempty"`
	Version          string            `json:"version,omitempty"`
	Attributes       Attributes        `json:"attributes"`
	References       []Reference       `json:"references"`
	MigrationVersion map[string]string `json:"migrationVersion,omitempty"`
}

// SanitizedDoc is the serializer's view of a saved object. Unlike SavedObject it
// keeps the legacy single Namespace field next to Namespaces.
type SanitizedDoc struct {
	ID               string
	Type             string
	Namespace        string
	Namespaces       []string
	OriginID         string
	UpdatedAt        string
	Version          string
	Attributes       Attributes
	References       []Reference
	MigrationVersion map[string]string
}

// FindResult is a single hit of a Find call.
type FindResult struct {
	SavedObject
	Score float64 `json:"score"`
}

// FindResponse is the paged result of a Find call. Total is the full match count.
type FindResponse struct {
	Page         int          `json:"page"`
	PerPage      int          `json:"per_page"`
	Total        int          `json:"total"`
	SavedObjects []FindResult `json:"saved_objects"`
}

// EmptyFindResponse returns a response with no hits that echoes the paging options.
func EmptyFindResponse(opts FindOptions) *FindResponse {
	page, perPage := opts.Paging()
	return &FindResponse{
		Page:         page,
		PerPage:      perPage,
		Total:        0,
		SavedObjects: []FindResult{},
	}
}

// NamespacesResponse is returned by AddToNamespaces and DeleteFromNamespaces.
type NamespacesResponse struct {
	Namespaces []string `json:"namespaces"`
}

// ConflictError is one entry of a CheckConflicts response.
type ConflictError struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Error *Error `json:"error"`
}

// CheckConflictsResponse collects the conflicts found by CheckConflicts.
type CheckConflictsResponse struct {
	Errors []ConflictError `json:"errors"`
}

// Now returns the current time formatted as an updated_at stamp.
func Now() string {
	return FormatTime(time.Now())
}

// FormatTime formats t as an updated_at stamp in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses an updated_at stamp. An empty string yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}
