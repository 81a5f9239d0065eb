package match

import (
	"strings"

	"github.com/everstacklabs/modelfuse/internal/source/modelsdev"
)

// Kind records which strategy produced a match. The constants are ordered
// by cascade priority. Kinds are diagnostic provenance only; they are never
// used to re-rank results.
type Kind int

const (
	// Exact is a composite provider/model key match.
	Exact Kind = iota
	// Fuzzy matched after stripping a version suffix on either side.
	Fuzzy
	// NormalizedProvider is an exact match reached through a creator alias.
	NormalizedProvider
	// NormalizedVersionSeparator matched after dot/dash conversion.
	NormalizedVersionSeparator
	// StrippedProviderPrefix matched after removing a provider/ prefix
	// from the candidate ID.
	StrippedProviderPrefix
	// ReasoningVariant matched after stripping a -reasoning or
	// -non-reasoning benchmark-configuration suffix.
	ReasoningVariant
	// ExpandedVersion matched after expanding a compressed version
	// segment such as -35- to -3-5-.
	ExpandedVersion
	// GemmaItSuffix matched after appending -it to a Gemma slug.
	GemmaItSuffix
	// EffortLevel matched after stripping an effort-level suffix for an
	// allow-listed creator.
	EffortLevel
)

var kindNames = map[Kind]string{
	Exact:                      "exact",
	Fuzzy:                      "fuzzy",
	NormalizedProvider:         "normalized_provider",
	NormalizedVersionSeparator: "normalized_version_separator",
	StrippedProviderPrefix:     "stripped_provider_prefix",
	ReasoningVariant:           "reasoning_variant",
	ExpandedVersion:            "expanded_version",
	GemmaItSuffix:              "gemma_it_suffix",
	EffortLevel:                "effort_level",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Result is a resolved cross-source identity.
type Result struct {
	ProviderID string
	ModelID    string
	Model      *modelsdev.Model
	Kind       Kind
}

func resultFrom(c *candidate, kind Kind) *Result {
	if c == nil {
		return nil
	}
	return &Result{
		ProviderID: c.providerID,
		ModelID:    c.modelID,
		Model:      c.model,
		Kind:       kind,
	}
}

// Find resolves a benchmark (creator, slug) pair against the capability
// index. Strategies run in a fixed priority order and the first hit wins;
// a strategy's sub-steps are all attempted before moving on. Returns nil
// when nothing matches, which is an ordinary outcome, not an error.
func Find(creatorSlug, slug string, idx *Index) *Result {
	provider := NormalizeCreator(creatorSlug)
	lowerSlug := strings.ToLower(slug)
	aliased := creatorSlug != "" && strings.ToLower(creatorSlug) != provider

	// 1: exact match within the (alias-resolved) provider.
	if c := idx.lookupExact(provider, lowerSlug); c != nil {
		kind := Exact
		if aliased {
			kind = NormalizedProvider
		}
		return resultFrom(c, kind)
	}

	// 2: exact match in any provider. The two sources occasionally
	// disagree about which vendor owns a model.
	if c := idx.findDirect(lowerSlug); c != nil {
		return resultFrom(c, Exact)
	}

	// 3: version suffix stripped, both directions.
	if stripped := StripVersionSuffix(lowerSlug); stripped != lowerSlug {
		if c := idx.scan(func(c *candidate) bool { return c.strippedVersion == stripped }); c != nil {
			return resultFrom(c, Fuzzy)
		}
	}
	if c := idx.scan(func(c *candidate) bool { return c.strippedVersion == lowerSlug }); c != nil {
		return resultFrom(c, Fuzzy)
	}

	// 4: version separators normalized, both directions.
	if c := idx.findBySeparators(lowerSlug); c != nil {
		return resultFrom(c, NormalizedVersionSeparator)
	}

	// 5: candidate provider/ prefix stripped.
	if c := idx.findByPrefix(lowerSlug); c != nil {
		return resultFrom(c, StrippedProviderPrefix)
	}

	// 6: reasoning-variant suffix stripped, then the direct, separator
	// and prefix views retried on the base slug.
	if base, ok := StripReasoningSuffix(lowerSlug); ok {
		if c := idx.findDirect(base); c != nil {
			return resultFrom(c, ReasoningVariant)
		}
		if c := idx.findBySeparators(base); c != nil {
			return resultFrom(c, ReasoningVariant)
		}
		if c := idx.findByPrefix(base); c != nil {
			return resultFrom(c, ReasoningVariant)
		}
	}

	// 7: compressed version expanded, then direct and separator views.
	if expanded := ExpandCompressedVersion(lowerSlug); expanded != lowerSlug {
		if c := idx.findDirect(expanded); c != nil {
			return resultFrom(c, ExpandedVersion)
		}
		if c := idx.findBySeparators(expanded); c != nil {
			return resultFrom(c, ExpandedVersion)
		}
	}

	// 8: Gemma instruction-tuned suffix appended.
	if itSlug, ok := AddItSuffix(lowerSlug); ok {
		if c := idx.findDirect(itSlug); c != nil {
			return resultFrom(c, GemmaItSuffix)
		}
	}

	// 9: effort-level suffix stripped (allow-listed creators only), then
	// direct and separator views.
	if base, ok := StripEffortSuffix(lowerSlug, creatorSlug); ok {
		if c := idx.findDirect(base); c != nil {
			return resultFrom(c, EffortLevel)
		}
		if c := idx.findBySeparators(base); c != nil {
			return resultFrom(c, EffortLevel)
		}
	}

	return nil
}

// findDirect scans for a candidate whose lowercased ID equals slug.
func (idx *Index) findDirect(slug string) *candidate {
	return idx.scan(func(c *candidate) bool { return c.lower == slug })
}

// findBySeparators compares slug and candidates with dots converted to
// dashes, in both directions: normalized slug against verbatim candidate
// IDs, then the verbatim slug against normalized candidate IDs.
func (idx *Index) findBySeparators(slug string) *candidate {
	if normalized := NormalizeVersionSeparators(slug); normalized != slug {
		if c := idx.findDirect(normalized); c != nil {
			return c
		}
	}
	return idx.scan(func(c *candidate) bool { return c.normalizedSeps == slug })
}

// findByPrefix compares slug against candidate IDs with their provider/
// prefix removed.
func (idx *Index) findByPrefix(slug string) *candidate {
	return idx.scan(func(c *candidate) bool { return c.strippedPrefix == slug })
}
