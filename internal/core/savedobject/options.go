package savedobject

const (
	// DefaultPage is the page echoed by Find when none is requested.
	DefaultPage = 1
	// DefaultPerPage is the page size echoed by Find when none is requested.
	DefaultPerPage = 20
	// MaxPerPage bounds the page size a single Find may request.
	MaxPerPage = 10000
)

// BaseOptions carries the caller namespace shared by most operations.
type BaseOptions struct {
	Namespace string `json:"namespace,omitempty"`
}

// CreateOptions configures Create.
type CreateOptions struct {
	Namespace         string            `json:"namespace,omitempty"`
	ID                string            `json:"id,omitempty"`
	Overwrite         bool              `json:"overwrite,omitempty"`
	Version           string            `json:"version,omitempty"`
	MigrationVersion  map[string]string `json:"migrationVersion,omitempty"`
	References        []Reference       `json:"references,omitempty"`
	OriginID          string            `json:"originId,omitempty"`
	InitialNamespaces []string          `json:"initialNamespaces,omitempty"`
}

// BulkCreateObject is one object of a BulkCreate call.
type BulkCreateObject struct {
	ID                string            `json:"id,omitempty"`
	Type              string            `json:"type"`
	Attributes        Attributes        `json:"attributes"`
	Version           string            `json:"version,omitempty"`
	References        []Reference       `json:"references,omitempty"`
	MigrationVersion  map[string]string `json:"migrationVersion,omitempty"`
	OriginID          string            `json:"originId,omitempty"`
	InitialNamespaces []string          `json:"initialNamespaces,omitempty"`
}

// BulkGetObject is one object of a BulkGet call.
type BulkGetObject struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Fields []string `json:"fields,omitempty"`
}

// UpdateOptions configures Update. Nil References keeps the stored references.
type UpdateOptions struct {
	Namespace  string      `json:"namespace,omitempty"`
	Version    string      `json:"version,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// BulkUpdateObject is one object of a BulkUpdate call.
type BulkUpdateObject struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Attributes Attributes  `json:"attributes"`
	Version    string      `json:"version,omitempty"`
	References []Reference `json:"references,omitempty"`
	Namespace  string      `json:"namespace,omitempty"`
}

// DeleteOptions configures Delete.
type DeleteOptions struct {
	Namespace string `json:"namespace,omitempty"`
}

// CheckConflictsObject is one candidate of a CheckConflicts call.
type CheckConflictsObject struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// NamespacesOptions configures AddToNamespaces and DeleteFromNamespaces.
// Namespace is the caller namespace used by the preflight check.
type NamespacesOptions struct {
	Namespace string `json:"namespace,omitempty"`
}

// IncrementCounterOptions configures IncrementCounter.
type IncrementCounterOptions struct {
	Namespace        string            `json:"namespace,omitempty"`
	MigrationVersion map[string]string `json:"migrationVersion,omitempty"`
}

// SortOrder is the direction of a Find sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FindOptions configures Find. Exactly one of Type and TypeToNamespacesMap must be set.
type FindOptions struct {
	Type                []string            `json:"type,omitempty"`
	TypeToNamespacesMap map[string][]string `json:"typeToNamespacesMap,omitempty"`
	// Namespaces nil means the default namespace; a non-nil empty slice is rejected.
	Namespaces   []string  `json:"namespaces,omitempty"`
	Search       string    `json:"search,omitempty"`
	SearchFields []string  `json:"searchFields,omitempty"`
	Fields       []string  `json:"fields,omitempty"`
	Page         int       `json:"page,omitempty"`
	PerPage      int       `json:"perPage,omitempty"`
	SortField    string    `json:"sortField,omitempty"`
	SortOrder    SortOrder `json:"sortOrder,omitempty"`
}

// Paging returns the effective page and page size.
func (o FindOptions) Paging() (page, perPage int) {
	page, perPage = o.Page, o.PerPage
	if page <= 0 {
		page = DefaultPage
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return page, perPage
}
