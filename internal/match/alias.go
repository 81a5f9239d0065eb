package match

import "strings"

// creatorAliases maps benchmark-source creator slugs to the capability
// source's provider IDs where the two spell the same vendor differently.
var creatorAliases = map[string]string{
	"meta":       "llama",
	"meta-llama": "llama",
	"x-ai":       "xai",
	"x.ai":       "xai",
}

// NormalizeCreator resolves a creator slug to the capability source's
// provider ID. Unknown slugs pass through lowercased.
func NormalizeCreator(slug string) string {
	lower := strings.ToLower(slug)
	if canonical, ok := creatorAliases[lower]; ok {
		return canonical
	}
	return lower
}
