// Package serializer converts saved objects to and from their raw storage form and
// generates the composite raw ids shared by every backend.
package serializer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/google/uuid"
)

// Serializer is bit-compatible across backends: the same (namespace, type, id)
// always yields the same raw id.
type Serializer struct {
	registry *typeregistry.Registry
}

// New creates a serializer bound to a type registry.
func New(registry *typeregistry.Registry) *Serializer {
	return &Serializer{registry: registry}
}

// GenerateRawID builds "<namespace>:<type>:<id>" for single-namespace types in a
// non-default namespace and "<type>:<id>" otherwise. An empty id gets a random UUID.
func (s *Serializer) GenerateRawID(namespace, typ, id string) string {
	if id == "" {
		id = uuid.NewString()
	}
	return s.namespacePrefix(namespace, typ) + typ + ":" + id
}

func (s *Serializer) namespacePrefix(namespace, typ string) string {
	if namespace != "" && s.registry.IsSingleNamespace(typ) {
		return namespace + ":"
	}
	return ""
}

// IsRawSavedObject reports whether raw's id carries the prefix expected for its
// type and namespace.
func (s *Serializer) IsRawSavedObject(raw RawDoc) bool {
	typ := raw.Source.Type
	if typ == "" {
		return false
	}
	prefix := s.namespacePrefix(raw.Source.Namespace, typ) + typ + ":"
	return strings.HasPrefix(raw.ID, prefix) && len(raw.ID) > len(prefix)
}

// TrimIDPrefix recovers the logical id from a raw id.
func (s *Serializer) TrimIDPrefix(namespace, typ, rawID string) string {
	prefix := s.namespacePrefix(namespace, typ) + typ + ":"
	return strings.TrimPrefix(rawID, prefix)
}

// SavedObjectToRaw encodes a sanitized document. Namespace is kept only for
// single-namespace types and Namespaces only for multi-namespace types.
func (s *Serializer) SavedObjectToRaw(doc savedobject.SanitizedDoc) RawDoc {
	src := RawDocSource{
		Type:             doc.Type,
		OriginID:         doc.OriginID,
		UpdatedAt:        doc.UpdatedAt,
		References:       slices.Clone(doc.References),
		MigrationVersion: maps.Clone(doc.MigrationVersion),
		Attributes:       doc.Attributes,
	}
	if doc.Namespace != "" && s.registry.IsSingleNamespace(doc.Type) {
		src.Namespace = doc.Namespace
	}
	if doc.Namespaces != nil && s.registry.IsMultiNamespace(doc.Type) {
		src.Namespaces = slices.Clone(doc.Namespaces)
	}
	if src.References == nil {
		src.References = []savedobject.Reference{}
	}

	raw := RawDoc{
		ID:     s.GenerateRawID(doc.Namespace, doc.Type, doc.ID),
		Source: src,
	}
	if doc.Version != "" {
		if seqNo, term, err := DecodeVersion(doc.Version); err == nil {
			raw.SeqNo, raw.PrimaryTerm = seqNo, term
		}
	}
	return raw
}

// RawToSavedObject decodes a raw document.
func (s *Serializer) RawToSavedObject(raw RawDoc) savedobject.SanitizedDoc {
	src := raw.Source
	doc := savedobject.SanitizedDoc{
		ID:               s.TrimIDPrefix(src.Namespace, src.Type, raw.ID),
		Type:             src.Type,
		OriginID:         src.OriginID,
		UpdatedAt:        src.UpdatedAt,
		Attributes:       src.Attributes,
		References:       src.References,
		MigrationVersion: src.MigrationVersion,
	}
	if doc.References == nil {
		doc.References = []savedobject.Reference{}
	}
	if src.Namespace != "" && s.registry.IsSingleNamespace(src.Type) {
		doc.Namespace = src.Namespace
	}
	if src.Namespaces != nil && s.registry.IsMultiNamespace(src.Type) {
		doc.Namespaces = src.Namespaces
	}
	if raw.SeqNo > 0 {
		doc.Version = EncodeVersion(raw.SeqNo, raw.PrimaryTerm)
	}
	return doc
}

// EncodeVersion produces the opaque version token base64("[seqNo,primaryTerm]").
func EncodeVersion(seqNo, primaryTerm int64) string {
	b, _ := json.Marshal([]int64{seqNo, primaryTerm})
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeVersion parses a version token produced by EncodeVersion.
func DecodeVersion(version string) (seqNo, primaryTerm int64, err error) {
	b, err := base64.StdEncoding.DecodeString(version)
	if err != nil {
		return 0, 0, savedobject.NewBadRequest("Invalid version [%s]", version)
	}
	var pair []int64
	if err := json.Unmarshal(b, &pair); err != nil || len(pair) != 2 {
		return 0, 0, savedobject.NewBadRequest("Invalid version [%s]", version)
	}
	if pair[0] < 0 || pair[1] < 1 {
		return 0, 0, savedobject.NewBadRequest("Invalid version [%s]", version)
	}
	return pair[0], pair[1], nil
}

// MarshalSource encodes a raw document body.
func MarshalSource(src RawDocSource) ([]byte, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw document: %w", err)
	}
	return b, nil
}

// UnmarshalSource decodes a raw document body.
func UnmarshalSource(data []byte) (RawDocSource, error) {
	var src RawDocSource
	if err := json.Unmarshal(data, &src); err != nil {
		return RawDocSource{}, fmt.Errorf("failed to unmarshal raw document: %w", err)
	}
	return src, nil
}
