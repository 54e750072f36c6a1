package vertex

import (
	"encoding/json"
	"fmt"

	"vertexchat-go/internal/content"
	apperrors "vertexchat-go/internal/errors"
)

// GenerationResponse is the first candidate of a generateContent reply.
type GenerationResponse struct {
	Content      content.Turn
	FinishReason content.FinishReason
	// BlockReason is set when the prompt itself was blocked and no
	// candidate was produced.
	BlockReason   string
	SafetyRatings []SafetyRating
	Usage         *UsageMetadata
	ModelVersion  string
}

// Decode parses a generateContent body. Shape violations are
// ProtocolErrors.
func Decode(body []byte) (GenerationResponse, error) {
	var wire generateContentResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return GenerationResponse{}, apperrors.Wrap(apperrors.KindProtocol, opSend, fmt.Errorf("decode response: %w", err))
	}

	out := GenerationResponse{Usage: wire.UsageMetadata, ModelVersion: wire.ModelVersion}

	if len(wire.Candidates) == 0 {
		if fb := wire.PromptFeedback; fb != nil && fb.BlockReason != "" {
			out.Content = content.Turn{Role: content.RoleModel}
			out.FinishReason = content.FinishReasonSafety
			out.BlockReason = fb.BlockReason
			out.SafetyRatings = fb.SafetyRatings
			return out, nil
		}
		return GenerationResponse{}, apperrors.New(apperrors.KindProtocol, opSend, "response has no candidates")
	}

	cand := wire.Candidates[0]
	out.FinishReason = content.ParseFinishReason(cand.FinishReason)
	out.SafetyRatings = cand.SafetyRatings

	turn, err := decodeTurn(cand.Content)
	if err != nil {
		return GenerationResponse{}, apperrors.Wrap(apperrors.KindProtocol, opSend, err)
	}
	if out.FinishReason.ConsideredSuccessful() && len(turn.Parts) == 0 {
		return GenerationResponse{}, apperrors.New(apperrors.KindProtocol, opSend,
			fmt.Sprintf("candidate finished with %s but has no content", out.FinishReason))
	}
	out.Content = turn
	return out, nil
}

func decodeTurn(wc *wireContent) (content.Turn, error) {
	turn := content.Turn{Role: content.RoleModel}
	if wc == nil {
		return turn, nil
	}
	if wc.Role != "" {
		role, err := content.ParseRole(wc.Role)
		if err != nil {
			return content.Turn{}, err
		}
		turn.Role = role
	}
	for _, p := range wc.Parts {
		switch {
		case p.Text != nil:
			turn.Parts = append(turn.Parts, content.Text{Text: *p.Text})
		case p.InlineData != nil:
			turn.Parts = append(turn.Parts, content.Blob{MIMEType: p.InlineData.MimeType, Data: p.InlineData.Data})
		}
	}
	return turn, nil
}
