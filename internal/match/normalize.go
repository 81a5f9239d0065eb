package match

import (
	"regexp"
	"strings"
)

// Version suffix patterns. Benchmark slugs often pin a snapshot date or
// explicit version that the capability source leaves off.
var (
	reDate       = regexp.MustCompile(`-\d{8}$`)
	reDateDashed = regexp.MustCompile(`-\d{4}-\d{2}-\d{2}$`)
	reVersion    = regexp.MustCompile(`-v\d+(\.\d+)*$`)
)

// Dot between two digits, e.g. "gemini-2.5-flash".
var reVersionSeparator = regexp.MustCompile(`(\d)\.(\d)`)

// Compressed two-digit version segment, e.g. "-35-" or a trailing "-35".
var (
	reCompressedMid = regexp.MustCompile(`-(\d)(\d)-`)
	reCompressedEnd = regexp.MustCompile(`-(\d)(\d)$`)
)

// Creators whose -low/-medium/-high/-minimal suffixes always denote
// inference effort. Other vendors use the same tokens as model sizes
// (mistral-medium is a model, not a setting).
var effortSuffixCreators = map[string]bool{
	"google":    true,
	"openai":    true,
	"anthropic": true,
}

var effortSuffixes = []string{"-low", "-medium", "-high", "-minimal"}

// StripVersionSuffix removes a trailing -YYYYMMDD, -YYYY-MM-DD or -vN(.N)*
// segment. Slugs without one pass through unchanged.
func StripVersionSuffix(slug string) string {
	s := reDate.ReplaceAllString(slug, "")
	s = reDateDashed.ReplaceAllString(s, "")
	return reVersion.ReplaceAllString(s, "")
}

// NormalizeVersionSeparators converts dots to dashes between digits:
// "gemini-2.5-flash" becomes "gemini-2-5-flash". Dots elsewhere are kept.
func NormalizeVersionSeparators(slug string) string {
	return reVersionSeparator.ReplaceAllString(slug, "$1-$2")
}

// ExpandCompressedVersion splits a two-digit version segment into single
// digits: "claude-35-sonnet" becomes "claude-3-5-sonnet", "claude-21"
// becomes "claude-2-1". Single digits and longer runs are left alone.
func ExpandCompressedVersion(slug string) string {
	s := reCompressedMid.ReplaceAllString(slug, "-$1-$2-")
	return reCompressedEnd.ReplaceAllString(s, "-$1-$2")
}

// StripProviderPrefix drops everything up to and including the first '/'.
// Capability IDs are sometimes namespaced like "mistral/mistral-large-3".
func StripProviderPrefix(slug string) string {
	if i := strings.IndexByte(slug, '/'); i >= 0 {
		return slug[i+1:]
	}
	return slug
}

// StripReasoningSuffix removes a trailing -reasoning or -non-reasoning
// benchmark-configuration marker. The longer -non-reasoning form is checked
// first so "-non-reasoning" never leaves a dangling "-non". Reports whether
// a suffix was stripped.
func StripReasoningSuffix(slug string) (string, bool) {
	if base, ok := strings.CutSuffix(slug, "-non-reasoning"); ok {
		return base, true
	}
	if base, ok := strings.CutSuffix(slug, "-reasoning"); ok {
		return base, true
	}
	return slug, false
}

// StripEffortSuffix removes a trailing effort-level marker, but only for
// creators on the effort allow-list. Reports whether a suffix was stripped.
func StripEffortSuffix(slug, creatorSlug string) (string, bool) {
	if !effortSuffixCreators[strings.ToLower(creatorSlug)] {
		return slug, false
	}
	for _, suffix := range effortSuffixes {
		if base, ok := strings.CutSuffix(slug, suffix); ok {
			return base, true
		}
	}
	return slug, false
}

// AddItSuffix appends "-it" for Gemma-family slugs that lack it. The
// benchmark source names these models "gemma-3-12b" while the capability
// source lists the instruction-tuned "gemma-3-12b-it". Reports whether the
// suffix was added.
func AddItSuffix(slug string) (string, bool) {
	if strings.HasPrefix(slug, "gemma-") && !strings.HasSuffix(slug, "-it") {
		return slug + "-it", true
	}
	return slug, false
}
