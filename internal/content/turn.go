package content

import "errors"

// NoTextPlaceholder is shown for turns that carry no text part.
const NoTextPlaceholder = "N/A"

// Turn is one party's contribution to a conversation. Part order is kept.
type Turn struct {
	Role  Role
	Parts []Part
}

// UserTurn builds a user turn: the typed text first, then attachments in
// the order given. The text part is present even when empty.
func UserTurn(text string, blobs ...Blob) Turn {
	parts := make([]Part, 0, len(blobs)+1)
	parts = append(parts, Text{Text: text})
	for _, b := range blobs {
		parts = append(parts, b)
	}
	return Turn{Role: RoleUser, Parts: parts}
}

// ModelTurn builds a model turn holding a single text part.
func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{Text{Text: text}}}
}

// Validate rejects turns without a role or without parts.
func (t Turn) Validate() error {
	if t.Role != RoleUser && t.Role != RoleModel {
		return errors.New("turn has no valid role")
	}
	if len(t.Parts) == 0 {
		return errors.New("turn has no parts")
	}
	return nil
}

// DisplayText returns the first text part, or NoTextPlaceholder.
func (t Turn) DisplayText() string {
	for _, p := range t.Parts {
		if txt, ok := p.(Text); ok {
			return txt.Text
		}
	}
	return NoTextPlaceholder
}

// BlobCount reports how many attachments the turn carries.
func (t Turn) BlobCount() int {
	n := 0
	for _, p := range t.Parts {
		if _, ok := p.(Blob); ok {
			n++
		}
	}
	return n
}

// History is the ordered conversation transcript. It is append-only and has
// a single owner, so it carries no locking.
type History []Turn

// Append adds a turn at the end.
func (h *History) Append(t Turn) {
	*h = append(*h, t)
}

// Len reports the number of turns.
func (h History) Len() int { return len(h) }

// Snapshot returns a copy that later appends cannot alias.
func (h History) Snapshot() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}
