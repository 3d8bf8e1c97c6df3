package repositories

import (
	"context"
	"io"
)

// AttachmentStore persists supporting-document bytes for a claim and hands
// back the opaque on-disk name. The original filename only contributes its
// extension; it is never used as a path component.
type AttachmentStore interface {
	// SaveAttachment streams the document into the per-claim directory and
	// returns the stored name it chose.
	SaveAttachment(ctx context.Context, claimID int64, originalFilename string, r io.Reader) (string, error)
}
