// Package projection turns the information an external resolver returned
// into host-facing documentation entities. Projection is pure: it depends
// only on the cached reply, never on further I/O.
package projection

import (
	"github.com/Masterminds/semver"

	"docbridge/internal/docmodel"
	"docbridge/internal/wire"
)

// Node projects a cached reply into a skeletal documentation node for the
// given reference. When the reply describes a symbol, the node carries a
// sparse symbol semantic with availability folded in.
func Node(ref docmodel.ResolvedReference, info wire.ResolvedInformation, parser docmodel.MarkupParser) docmodel.Node {
	node := docmodel.Node{
		Reference: ref,
		Kind: docmodel.Kind{
			Name:     info.Kind.Name,
			ID:       info.Kind.ID,
			IsSymbol: info.Kind.IsSymbol,
		},
		SourceLanguage:     info.Language,
		AvailableLanguages: info.AvailableLanguages,
		Name:               info.Title,
		Abstract:           parser.Parse(info.Abstract),
		PlatformNames:      platformNames(info.Platforms),
	}

	if info.Kind.IsSymbol {
		node.Semantic = Symbol(info)
	}

	return node
}

// Symbol projects a reply into a sparse symbol semantic: kind, title,
// declaration fragments, and the availability table. All other symbol
// fields stay empty.
func Symbol(info wire.ResolvedInformation) *docmodel.Symbol {
	return &docmodel.Symbol{
		KindIdentifier:       info.Kind.ID,
		KindDisplayName:      info.Kind.Name,
		Title:                info.Title,
		DeclarationFragments: declarationFragments(info.DeclarationFragments),
		Availability:         Availability(info.Platforms),
	}
}

// Availability builds the availability table from the reply's platform list.
// The table's length always equals the platform list's length.
func Availability(platforms []wire.Platform) []docmodel.AvailabilityItem {
	if platforms == nil {
		return nil
	}

	items := make([]docmodel.AvailabilityItem, 0, len(platforms))
	for _, p := range platforms {
		items = append(items, docmodel.AvailabilityItem{
			Domain:                       domainName(p.Name),
			Introduced:                   parseVersion(p.Introduced),
			Deprecated:                   parseVersion(p.Deprecated),
			Obsoleted:                    parseVersion(p.Obsoleted),
			Renamed:                      stringValue(p.Renamed),
			IsUnconditionallyDeprecated:  p.IsUnconditionallyDeprecated,
			IsUnconditionallyUnavailable: p.IsUnconditionallyUnavailable,
		})
	}
	return items
}

// domainName normalizes the Mac Catalyst display name to its canonical
// domain identifier; every other platform name passes through verbatim.
func domainName(platformName string) string {
	if platformName == docmodel.PlatformNameMacCatalyst {
		return docmodel.DomainMacCatalyst
	}
	return platformName
}

// parseVersion parses a platform version tolerantly: partial versions like
// "13.5" fill in zeros, and an unparseable version becomes absent.
func parseVersion(raw *string) *semver.Version {
	if raw == nil {
		return nil
	}
	v, err := semver.NewVersion(*raw)
	if err != nil {
		return nil
	}
	return v
}

func declarationFragments(fragments []wire.DeclarationFragment) []docmodel.DeclarationFragment {
	if fragments == nil {
		return nil
	}

	out := make([]docmodel.DeclarationFragment, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, docmodel.DeclarationFragment{
			Kind:              f.Kind,
			Spelling:          f.Spelling,
			PreciseIdentifier: stringValue(f.PreciseIdentifier),
		})
	}
	return out
}

func platformNames(platforms []wire.Platform) []string {
	if platforms == nil {
		return nil
	}

	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.Name)
	}
	return names
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
