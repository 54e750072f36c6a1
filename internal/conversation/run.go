package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vertexchat-go/internal/content"
)

// Run drives the interactive loop until the surface reports io.EOF (a nil
// return), the context ends, or an exchange fails. Rejections are shown
// and the loop re-prompts.
func (c *Controller) Run(ctx context.Context, surface Surface, blobs BlobReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		surface.ShowHistory(c.History())

		text, err := surface.ReadMessage(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		attachments, err := c.collectAttachments(ctx, surface, blobs)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var readErr *AttachmentError
			if errors.As(err, &readErr) {
				surface.ShowError(err)
				continue
			}
			return err
		}

		ex, err := c.Submit(ctx, UserInput{Text: text, Attachments: attachments})
		if err != nil {
			return err
		}
		if ex.Outcome == OutcomeRejected {
			surface.ShowRejection(RejectionMessage)
		}
	}
}

// AttachmentError reports a file that could not be read. The turn is
// dropped before it reaches the history.
type AttachmentError struct {
	Path string
	Err  error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("read attachment %s: %v", e.Path, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

func (c *Controller) collectAttachments(ctx context.Context, surface Surface, blobs BlobReader) ([]content.Blob, error) {
	attach, err := surface.ConfirmAttach(ctx)
	if err != nil || !attach {
		return nil, err
	}
	paths, err := surface.PickFiles(ctx)
	if err != nil {
		return nil, err
	}
	if blobs == nil && len(paths) > 0 {
		return nil, errors.New("attachments are not supported by this surface")
	}

	out := make([]content.Blob, 0, len(paths))
	for _, path := range paths {
		mimeType, data, err := blobs.ReadAsBlob(path)
		if err != nil {
			return nil, &AttachmentError{Path: path, Err: err}
		}
		out = append(out, content.NewBlob(mimeType, data))
	}
	return out, nil
}
