package wire

import (
	"docbridge/internal/docmodel"
)

// EntityKind classifies what a resolved reference documents
type EntityKind struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	IsSymbol bool   `json:"isSymbol"`
}

// Platform is one platform's availability information for a resolved symbol.
// Version fields carry the peer's raw version strings; parsing happens at
// projection time.
type Platform struct {
	Name                         string  `json:"name"`
	Introduced                   *string `json:"introduced,omitempty"`
	Deprecated                   *string `json:"deprecated,omitempty"`
	Obsoleted                    *string `json:"obsoleted,omitempty"`
	Renamed                      *string `json:"renamed,omitempty"`
	IsUnconditionallyDeprecated  bool    `json:"unconditionallyDeprecated,omitempty"`
	IsUnconditionallyUnavailable bool    `json:"unconditionallyUnavailable,omitempty"`
}

// DeclarationFragment is one syntax-highlighted token of a declaration
type DeclarationFragment struct {
	Kind              string  `json:"kind"`
	Spelling          string  `json:"spelling"`
	PreciseIdentifier *string `json:"preciseIdentifier,omitempty"`
}

// ResolvedInformation is the payload an external resolver returns for a
// successfully resolved topic or symbol.
type ResolvedInformation struct {
	// Kind classifies the resolved entity
	Kind EntityKind `json:"kind"`

	// URL is the canonical external URL the host should link to
	URL string `json:"url"`

	// Title is the entity's plain-text title
	Title string `json:"title"`

	// Abstract is the entity's abstract as plain-text markup source
	Abstract string `json:"abstract"`

	// Language is the entity's primary source language
	Language docmodel.SourceLanguage `json:"language"`

	// AvailableLanguages is the set of languages the entity is available in
	AvailableLanguages []docmodel.SourceLanguage `json:"availableLanguages"`

	// Platforms is the optional ordered per-platform availability list
	Platforms []Platform `json:"platforms"`

	// DeclarationFragments is the optional tokenized declaration
	DeclarationFragments []DeclarationFragment `json:"declarationFragments"`
}
