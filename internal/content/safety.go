package content

import (
	"fmt"
	"strings"
)

// HarmCategory is a safety classifier category.
type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// HarmCategories lists every category in wire order.
var HarmCategories = []HarmCategory{
	HarmCategoryHarassment,
	HarmCategoryHateSpeech,
	HarmCategorySexuallyExplicit,
	HarmCategoryDangerousContent,
}

// SafetyThreshold is the block level applied to a category.
type SafetyThreshold string

const (
	BlockLowAndAbove    SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
	BlockMediumAndAbove SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh       SafetyThreshold = "BLOCK_ONLY_HIGH"
	BlockNone           SafetyThreshold = "BLOCK_NONE"
)

// ParseSafetyThreshold accepts the wire name with or without the BLOCK_
// prefix, case-insensitively.
func ParseSafetyThreshold(s string) (SafetyThreshold, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	if !strings.HasPrefix(norm, "BLOCK_") {
		norm = "BLOCK_" + norm
	}
	switch t := SafetyThreshold(norm); t {
	case BlockLowAndAbove, BlockMediumAndAbove, BlockOnlyHigh, BlockNone:
		return t, nil
	}
	return "", fmt.Errorf("unknown safety threshold %q", s)
}

// SafetySetting pairs a category with its threshold.
type SafetySetting struct {
	Category  HarmCategory
	Threshold SafetyThreshold
}

// SafetyPolicy holds exactly one setting per HarmCategory, in
// HarmCategories order.
type SafetyPolicy struct {
	settings []SafetySetting
}

// NewSafetyPolicy applies threshold to every category.
func NewSafetyPolicy(threshold SafetyThreshold) SafetyPolicy {
	settings := make([]SafetySetting, 0, len(HarmCategories))
	for _, c := range HarmCategories {
		settings = append(settings, SafetySetting{Category: c, Threshold: threshold})
	}
	return SafetyPolicy{settings: settings}
}

// DefaultSafetyPolicy blocks only high-probability harm in every category.
func DefaultSafetyPolicy() SafetyPolicy {
	return NewSafetyPolicy(BlockOnlyHigh)
}

// With returns a copy of the policy with category set to threshold.
func (p SafetyPolicy) With(category HarmCategory, threshold SafetyThreshold) SafetyPolicy {
	base := p.Settings()
	for i := range base {
		if base[i].Category == category {
			base[i].Threshold = threshold
		}
	}
	return SafetyPolicy{settings: base}
}

// Settings returns the per-category settings. A zero policy yields the
// defaults.
func (p SafetyPolicy) Settings() []SafetySetting {
	if len(p.settings) == 0 {
		return DefaultSafetyPolicy().settings
	}
	out := make([]SafetySetting, len(p.settings))
	copy(out, p.settings)
	return out
}
