package docmodel

import (
	"net/url"
	"strings"
)

// DocumentationScheme is the URL scheme for topic references
const DocumentationScheme = "doc"

// ResolvedReference is a canonical, post-resolution topic reference.
// Two references are equal iff bundle identifier, path, fragment, and
// source language are all equal.
type ResolvedReference struct {
	// BundleIdentifier names the documentation bundle the reference belongs to
	BundleIdentifier string

	// Path is the absolute in-bundle path, including the leading slash
	Path string

	// Fragment is the optional URL fragment, without the '#'
	Fragment string

	// SourceLanguage is the language the referenced topic is documented in
	SourceLanguage SourceLanguage
}

// URL reconstructs the reference as a doc:// URL
func (r ResolvedReference) URL() *url.URL {
	return &url.URL{
		Scheme:   DocumentationScheme,
		Host:     r.BundleIdentifier,
		Path:     r.Path,
		Fragment: r.Fragment,
	}
}

// LastPathComponent returns the final component of the reference path
func (r ResolvedReference) LastPathComponent() string {
	trimmed := strings.TrimSuffix(r.Path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// String returns the reference's URL in string form
func (r ResolvedReference) String() string {
	return r.URL().String()
}

// UnresolvedReference is a topic reference that has not been resolved yet.
// The topic URL's host carries the bundle identifier.
type UnresolvedReference struct {
	// TopicURL is the authored reference URL
	TopicURL *url.URL
}

// BundleIdentifier returns the bundle identifier encoded in the topic URL's
// host, or "" when the URL carries none.
func (u UnresolvedReference) BundleIdentifier() string {
	if u.TopicURL == nil {
		return ""
	}
	return u.TopicURL.Host
}

// String returns the unresolved topic URL in string form
func (u UnresolvedReference) String() string {
	if u.TopicURL == nil {
		return ""
	}
	return u.TopicURL.String()
}

// TopicReference is the input to reference resolution: either an
// already-resolved reference or an unresolved one. Exactly one of the two
// fields is set.
type TopicReference struct {
	Resolved   *ResolvedReference
	Unresolved *UnresolvedReference
}

// IsResolved reports whether the reference has already been resolved
func (t TopicReference) IsResolved() bool {
	return t.Resolved != nil
}

// ResolutionResult is the outcome of resolving a topic reference: a resolved
// reference on success, or the unresolved reference paired with an error
// message on failure.
type ResolutionResult struct {
	Resolved     *ResolvedReference
	Unresolved   *UnresolvedReference
	ErrorMessage string
}

// Success wraps a resolved reference in a successful result
func Success(ref ResolvedReference) ResolutionResult {
	return ResolutionResult{Resolved: &ref}
}

// Failure pairs an unresolved reference with the failure's description
func Failure(ref UnresolvedReference, errorMessage string) ResolutionResult {
	return ResolutionResult{Unresolved: &ref, ErrorMessage: errorMessage}
}

// Succeeded reports whether the result carries a resolved reference
func (r ResolutionResult) Succeeded() bool {
	return r.Resolved != nil
}
