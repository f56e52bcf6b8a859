// Package keys builds the physical storage keys a store writes under.
//
//	<prefix><namespace>:<key>
//
// Nothing is escaped: a namespace or key containing Sep can collide with another
// (namespace, key) pair. Existing records depend on this layout, so it is kept.
package keys

import "strings"

// Sep separates namespace and key.
const Sep = ":"

// Build returns the storage key for (prefix, namespace, key).
func Build(prefix, namespace, key string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(namespace) + len(Sep) + len(key))
	b.WriteString(prefix)
	b.WriteString(namespace)
	b.WriteString(Sep)
	b.WriteString(key)
	return b.String()
}

// NamespacePrefix returns the prefix shared by every key of namespace.
func NamespacePrefix(prefix, namespace string) string {
	return prefix + namespace + Sep
}

// Under reports whether storageKey belongs to namespace under prefix.
func Under(storageKey, prefix, namespace string) bool {
	return strings.HasPrefix(storageKey, NamespacePrefix(prefix, namespace))
}

// Owned reports whether storageKey belongs to any namespace under prefix.
func Owned(storageKey, prefix string) bool {
	return strings.HasPrefix(storageKey, prefix)
}
