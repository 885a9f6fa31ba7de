package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
)

// RawDoc is the storage form of a saved object, keyed by a composite raw id.
type RawDoc struct {
	ID          string
	SeqNo       int64
	PrimaryTerm int64
	Source      RawDocSource
}

// RawDocSource is the encoded body of a raw document. Its JSON form stores the
// attributes under a key equal to the type name.
type RawDocSource struct {
	Type             string
	Namespace        string
	Namespaces       []string
	OriginID         string
	UpdatedAt        string
	References       []savedobject.Reference
	MigrationVersion map[string]string
	Attributes       savedobject.Attributes
}

const (
	keyType             = "type"
	keyNamespace        = "namespace"
	keyNamespaces       = "namespaces"
	keyOriginID         = "originId"
	keyUpdatedAt        = "updated_at"
	keyReferences       = "references"
	keyMigrationVersion = "migrationVersion"
)

// MarshalJSON writes {"type": T, T: attributes, ...}.
func (s RawDocSource) MarshalJSON() ([]byte, error) {
	if s.Type == "" {
		return nil, fmt.Errorf("raw document has no type")
	}
	m := map[string]any{
		keyType: s.Type,
	}
	if s.Namespace != "" {
		m[keyNamespace] = s.Namespace
	}
	if s.Namespaces != nil {
		m[keyNamespaces] = s.Namespaces
	}
	if s.OriginID != "" {
		m[keyOriginID] = s.OriginID
	}
	if s.UpdatedAt != "" {
		m[keyUpdatedAt] = s.UpdatedAt
	}
	refs := s.References
	if refs == nil {
		refs = []savedobject.Reference{}
	}
	m[keyReferences] = refs
	if len(s.MigrationVersion) > 0 {
		m[keyMigrationVersion] = s.MigrationVersion
	}
	attrs := s.Attributes
	if attrs == nil {
		attrs = savedobject.Attributes{}
	}
	m[s.Type] = attrs
	return json.Marshal(m)
}

// UnmarshalJSON reads the attributes only from the slot named by "type".
func (s *RawDocSource) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var out RawDocSource
	fields := []struct {
		key  string
		dest any
	}{
		{keyType, &out.Type},
		{keyNamespace, &out.Namespace},
		{keyNamespaces, &out.Namespaces},
		{keyOriginID, &out.OriginID},
		{keyUpdatedAt, &out.UpdatedAt},
		{keyReferences, &out.References},
		{keyMigrationVersion, &out.MigrationVersion},
	}
	for _, f := range fields {
		raw, ok := m[f.key]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, f.dest); err != nil {
			return fmt.Errorf("decode raw field %q: %w", f.key, err)
		}
	}
	if out.Type == "" {
		return fmt.Errorf("raw document has no type")
	}
	if raw, ok := m[out.Type]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &out.Attributes); err != nil {
			return fmt.Errorf("decode attributes of %q: %w", out.Type, err)
		}
	}
	*s = out
	return nil
}
