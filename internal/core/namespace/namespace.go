// Package namespace normalises namespace strings and manipulates namespace sets.
package namespace

import (
	"slices"

	"github.com/aevon-lab/metastore/internal/core/savedobject"
)

const (
	// DefaultNamespaceString is the public name of the default namespace.
	DefaultNamespaceString = "default"
	// AllNamespacesString may be stored in a namespace set to mean "every namespace".
	// It is never a valid input namespace.
	AllNamespacesString = "*"
)

// StringToID converts a public namespace string to its internal id.
// The default namespace has no id.
func StringToID(ns string) string {
	if ns == DefaultNamespaceString {
		return ""
	}
	return ns
}

// IDToString converts an internal namespace id to its public string.
func IDToString(id string) string {
	if id == "" {
		return DefaultNamespaceString
	}
	return id
}

// Normalize validates an input namespace and returns its internal id.
func Normalize(ns string) (string, error) {
	if ns == AllNamespacesString {
		return "", savedobject.NewBadRequest(`"options.namespace" cannot be "*"`)
	}
	return StringToID(ns), nil
}

// ValidateDeleteTarget checks the namespace passed to DeleteByNamespace.
func ValidateDeleteTarget(ns string) error {
	if ns == "" || ns == AllNamespacesString {
		return savedobject.NewBadRequest("namespace is required, and must be a string that is not equal to '*'")
	}
	return nil
}

// Unique returns namespaces with duplicates removed, keeping first occurrence order.
func Unique(namespaces []string) []string {
	out := make([]string, 0, len(namespaces))
	seen := make(map[string]struct{}, len(namespaces))
	for _, ns := range namespaces {
		if _, ok := seen[ns]; ok {
			continue
		}
		seen[ns] = struct{}{}
		out = append(out, ns)
	}
	return out
}

// Remove returns the namespaces of set that are not in drop.
func Remove(set []string, drop ...string) []string {
	out := make([]string, 0, len(set))
	for _, ns := range set {
		if !slices.Contains(drop, ns) {
			out = append(out, ns)
		}
	}
	return out
}

// Includes reports whether set makes an object visible in the namespace with the given id.
func Includes(set []string, id string) bool {
	return slices.Contains(set, IDToString(id)) || slices.Contains(set, AllNamespacesString)
}

// Strings converts namespace ids to public strings.
func Strings(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = IDToString(id)
	}
	return out
}
