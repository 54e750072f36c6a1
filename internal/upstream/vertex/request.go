package vertex

import (
	"encoding/json"
	"fmt"

	"vertexchat-go/internal/content"
)

// GenerationRequest is everything sent for one exchange. Contents is the
// whole conversation so far; the endpoint keeps no state between calls.
type GenerationRequest struct {
	Model          string
	Contents       content.History
	SafetySettings []content.SafetySetting
	// Generation is optional. Client.Send fills it from configuration when
	// nil.
	Generation *GenerationConfig
}

// Build assembles a request from the full history. It has no side effects
// and copies history so later appends do not leak into the request.
func Build(model string, history content.History, policy content.SafetyPolicy) GenerationRequest {
	return GenerationRequest{
		Model:          model,
		Contents:       history.Snapshot(),
		SafetySettings: policy.Settings(),
	}
}

// Encode renders the JSON body. The model is addressed in the URL, not the
// body.
func Encode(req GenerationRequest) ([]byte, error) {
	wire := generateContentRequest{
		Contents:         make([]wireContent, 0, len(req.Contents)),
		SafetySettings:   make([]wireSafety, 0, len(req.SafetySettings)),
		GenerationConfig: req.Generation,
	}
	for i, turn := range req.Contents {
		wc, err := encodeTurn(turn)
		if err != nil {
			return nil, fmt.Errorf("contents[%d]: %w", i, err)
		}
		wire.Contents = append(wire.Contents, wc)
	}
	for _, s := range req.SafetySettings {
		wire.SafetySettings = append(wire.SafetySettings, wireSafety{
			Category:  string(s.Category),
			Threshold: string(s.Threshold),
		})
	}
	return json.Marshal(wire)
}

func encodeTurn(turn content.Turn) (wireContent, error) {
	if err := turn.Validate(); err != nil {
		return wireContent{}, err
	}
	wc := wireContent{Role: string(turn.Role), Parts: make([]wirePart, 0, len(turn.Parts))}
	for _, p := range turn.Parts {
		switch v := p.(type) {
		case content.Text:
			text := v.Text
			wc.Parts = append(wc.Parts, wirePart{Text: &text})
		case content.Blob:
			wc.Parts = append(wc.Parts, wirePart{InlineData: &inlineData{MimeType: v.MIMEType, Data: v.Data}})
		default:
			return wireContent{}, fmt.Errorf("unsupported part type %T", p)
		}
	}
	return wc, nil
}
