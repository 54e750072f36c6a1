package models

import "strings"

// aliases maps short names users type onto published model ids.
var aliases = map[string]string{
	"experimental": "gemini-experimental",
	"pro":          "gemini-1.5-pro",
	"flash":        "gemini-1.5-flash",
}

// ResolveAlias returns the mapped model id; ok=false when model is not an
// alias and is returned unchanged.
func ResolveAlias(model string) (mapped string, ok bool) {
	m := strings.TrimSpace(strings.ToLower(model))
	if target, found := aliases[m]; found {
		return target, true
	}
	return model, false
}
