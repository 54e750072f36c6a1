package content

import "strings"

// FinishReason is the server's classification of why generation stopped.
type FinishReason string

const (
	FinishReasonUnspecified       FinishReason = "FINISH_REASON_UNSPECIFIED"
	FinishReasonStop              FinishReason = "STOP"
	FinishReasonMaxTokens         FinishReason = "MAX_TOKENS"
	FinishReasonSafety            FinishReason = "SAFETY"
	FinishReasonRecitation        FinishReason = "RECITATION"
	FinishReasonOther             FinishReason = "OTHER"
	FinishReasonBlocklist         FinishReason = "BLOCKLIST"
	FinishReasonProhibitedContent FinishReason = "PROHIBITED_CONTENT"
	FinishReasonSPII              FinishReason = "SPII"
)

// ParseFinishReason maps a wire value; empty input is Unspecified and any
// value not listed above is Other.
func ParseFinishReason(s string) FinishReason {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch r := FinishReason(s); r {
	case "":
		return FinishReasonUnspecified
	case FinishReasonUnspecified, FinishReasonStop, FinishReasonMaxTokens,
		FinishReasonSafety, FinishReasonRecitation, FinishReasonOther,
		FinishReasonBlocklist, FinishReasonProhibitedContent, FinishReasonSPII:
		return r
	}
	return FinishReasonOther
}

// ConsideredSuccessful reports whether the reply should be kept. Only a
// natural stop or a length cut-off qualifies.
func (r FinishReason) ConsideredSuccessful() bool {
	return r == FinishReasonStop || r == FinishReasonMaxTokens
}
