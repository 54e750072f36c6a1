package conversation

import (
	"context"

	"vertexchat-go/internal/content"
)

// RejectionMessage is shown when the model declines to answer.
const RejectionMessage = "Gemini rejected your input. Please try again."

// Surface is the interactive side of a conversation. ReadMessage returns
// io.EOF when the user ends the session.
type Surface interface {
	ShowHistory(history content.History)
	ReadMessage(ctx context.Context) (string, error)
	ConfirmAttach(ctx context.Context) (bool, error)
	PickFiles(ctx context.Context) ([]string, error)
	ShowRejection(message string)
	ShowError(err error)
}

// BlobReader resolves an attachment path into its MIME type and bytes.
type BlobReader interface {
	ReadAsBlob(path string) (mimeType string, data []byte, err error)
}
