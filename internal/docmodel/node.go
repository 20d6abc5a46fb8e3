package docmodel

import (
	"github.com/Masterminds/semver"
)

// Kind describes what a documentation node documents
type Kind struct {
	// Name is the human-readable kind name, e.g. "Class"
	Name string

	// ID is the kind identifier, e.g. "class"
	ID string

	// IsSymbol reports whether the kind documents a programming symbol
	IsSymbol bool
}

// Node is a skeletal documentation node produced for an externally
// resolved reference.
type Node struct {
	// Reference is the resolved reference this node documents
	Reference ResolvedReference

	// Kind is the node's kind
	Kind Kind

	// SourceLanguage is the node's primary source language
	SourceLanguage SourceLanguage

	// AvailableLanguages is the set of languages the topic is available in
	AvailableLanguages []SourceLanguage

	// Name is the conceptual name, derived from the topic's title
	Name string

	// Abstract is the parsed abstract markup
	Abstract Document

	// Semantic is the sparse symbol semantic, present iff Kind.IsSymbol
	Semantic *Symbol

	// PlatformNames lists the names of the platforms the topic is available on
	PlatformNames []string
}

// DeclarationFragment is one syntax-highlighted token of a declaration
type DeclarationFragment struct {
	// Kind classifies the token, e.g. "keyword", "identifier"
	Kind string

	// Spelling is the token's text
	Spelling string

	// PreciseIdentifier links the token to another symbol, when known
	PreciseIdentifier string
}

// Symbol is a sparse symbol semantic with availability folded in.
// Only the fields an external resolver can vouch for are populated.
type Symbol struct {
	// KindIdentifier is the symbol kind identifier, e.g. "class"
	KindIdentifier string

	// KindDisplayName is the human-readable symbol kind, e.g. "Class"
	KindDisplayName string

	// Title is the symbol's title
	Title string

	// DeclarationFragments is the symbol's declaration, tokenized
	DeclarationFragments []DeclarationFragment

	// Availability is the symbol's per-platform availability table
	Availability []AvailabilityItem
}

// PlatformNameMacCatalyst is the display name the wire protocol uses for the
// Mac Catalyst platform.
const PlatformNameMacCatalyst = "Mac Catalyst"

// DomainMacCatalyst is the canonical availability domain identifier for
// Mac Catalyst.
const DomainMacCatalyst = "macCatalyst"

// AvailabilityItem is one platform's availability entry for a symbol.
// Fields an external resolver cannot vouch for stay empty.
type AvailabilityItem struct {
	// Domain is the availability domain, normally a platform name
	Domain string

	// Introduced is the version the symbol was introduced in, if known
	Introduced *semver.Version

	// Deprecated is the version the symbol was deprecated in, if known
	Deprecated *semver.Version

	// Obsoleted is the version the symbol was obsoleted in, if known
	Obsoleted *semver.Version

	// Renamed is the replacement the symbol was renamed to, if any
	Renamed string

	// IsUnconditionallyDeprecated marks a deprecation without a version
	IsUnconditionallyDeprecated bool

	// IsUnconditionallyUnavailable marks the symbol unavailable on the domain
	IsUnconditionallyUnavailable bool
}
