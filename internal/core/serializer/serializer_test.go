package serializer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
	"github.com/aevon-lab/metastore/internal/core/typeregistry"
	"github.com/stretchr/testify/require"
)

func newTestSerializer(t *testing.T) *Serializer {
	t.Helper()
	reg, err := typeregistry.New(
		typeregistry.Type{Name: "dashboard"},
		typeregistry.Type{Name: "visualization"},
		typeregistry.Type{Name: "index-pattern", NamespaceType: typeregistry.NamespaceMultiple},
		typeregistry.Type{Name: "config", NamespaceType: typeregistry.NamespaceAgnostic},
	)
	require.NoError(t, err)
	return New(reg)
}

func TestGenerateRawID(t *testing.T) {
	s := newTestSerializer(t)

	require.Equal(t, "dashboard:d1", s.GenerateRawID("", "dashboard", "d1"))
	require.Equal(t, "sales:dashboard:d1", s.GenerateRawID("sales", "dashboard", "d1"))
	require.Equal(t, "index-pattern:p1", s.GenerateRawID("sales", "index-pattern", "p1"))
	require.Equal(t, "config:c1", s.GenerateRawID("sales", "config", "c1"))

	generated := s.GenerateRawID("", "dashboard", "")
	require.True(t, strings.HasPrefix(generated, "dashboard:"))
	require.Len(t, strings.TrimPrefix(generated, "dashboard:"), 36)
}

func TestRoundTrip(t *testing.T) {
	s := newTestSerializer(t)

	docs := []savedobject.SanitizedDoc{
		{
			ID:               "d1",
			Type:             "dashboard",
			Namespace:        "sales",
			OriginID:         "origin-1",
			UpdatedAt:        "2026-02-08T12:00:00.000Z",
			Attributes:       savedobject.Attributes{"title": "Sales"},
			References:       []savedobject.Reference{{Name: "panel_0", Type: "visualization", ID: "v1"}},
			MigrationVersion: map[string]string{"dashboard": "1.0.0"},
		},
		{
			ID:         "p1",
			Type:       "index-pattern",
			Namespaces: []string{"default", "sales"},
			Attributes: savedobject.Attributes{"title": "logs-*"},
			References: []savedobject.Reference{},
		},
		{
			ID:         "c1",
			Type:       "config",
			Attributes: savedobject.Attributes{"buildNum": "1"},
			References: []savedobject.Reference{},
		},
	}

	for _, doc := range docs {
		t.Run(doc.Type, func(t *testing.T) {
			raw := s.SavedObjectToRaw(doc)
			require.True(t, s.IsRawSavedObject(raw))

			encoded, err := MarshalSource(raw.Source)
			require.NoError(t, err)
			decoded, err := UnmarshalSource(encoded)
			require.NoError(t, err)
			raw.Source = decoded

			require.Equal(t, doc, s.RawToSavedObject(raw))
		})
	}
}

func TestRoundTrip_VersionFromSeqNo(t *testing.T) {
	s := newTestSerializer(t)

	raw := s.SavedObjectToRaw(savedobject.SanitizedDoc{ID: "d1", Type: "dashboard", Version: EncodeVersion(4, 1)})
	require.Equal(t, int64(4), raw.SeqNo)
	require.Equal(t, int64(1), raw.PrimaryTerm)
	require.Equal(t, EncodeVersion(4, 1), s.RawToSavedObject(raw).Version)
}

func TestUnmarshalSource_TypeIsolation(t *testing.T) {
	body := []byte(`{
		"type": "dashboard",
		"dashboard": {"title": "mine"},
		"visualization": {"title": "not mine"},
		"references": []
	}`)

	src, err := UnmarshalSource(body)
	require.NoError(t, err)
	require.Equal(t, "mine", src.Attributes["title"])

	src.Type = "visualization"
	b, err := json.Marshal(src)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	require.NotContains(t, m, "dashboard")
}

func TestUnmarshalSource_RequiresType(t *testing.T) {
	_, err := UnmarshalSource([]byte(`{"dashboard": {}}`))
	require.ErrorContains(t, err, "no type")
}

func TestVersionCodec(t *testing.T) {
	v := EncodeVersion(7, 1)
	require.Equal(t, "WzcsMV0=", v)

	seqNo, term, err := DecodeVersion(v)
	require.NoError(t, err)
	require.Equal(t, int64(7), seqNo)
	require.Equal(t, int64(1), term)

	for _, bad := range []string{"not-base64!", "WzFd", "e30="} {
		_, _, err := DecodeVersion(bad)
		require.True(t, savedobject.IsBadRequest(err), bad)
	}
}
