package content

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Role identifies which party produced a Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ParseRole maps a wire role onto a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleModel:
		return RoleModel, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Part is one piece of turn content. The only implementations are Text and
// Blob.
type Part interface {
	isPart()
}

// Text is inline text content.
type Text struct {
	Text string
}

// Blob is inline binary content. Data holds the base64 encoding of the
// bytes, as sent on the wire.
type Blob struct {
	MIMEType string
	Data     string
}

func (Text) isPart() {}
func (Blob) isPart() {}

// NewBlob encodes raw bytes into a Blob part.
func NewBlob(mimeType string, raw []byte) Blob {
	return Blob{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(raw)}
}

// Bytes decodes the blob payload.
func (b Blob) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(b.Data)
}
