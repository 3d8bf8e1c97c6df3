package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/claimsys/claim_management_app/internal/apperrors"
	portsrepo "github.com/claimsys/claim_management_app/internal/core/ports/repositories"
	"github.com/claimsys/claim_management_app/internal/utils"
)

// storedNameBytes gives a 32-character hex name before the extension.
const storedNameBytes = 16

// AttachmentStore writes supporting documents under
// <webRoot>/uploads/claims/<claimID>/<storedName>. The stored name is random
// hex plus the original extension, so concurrent saves never collide and the
// user-supplied filename never touches the disk.
type AttachmentStore struct {
	webRoot string
}

// NewAttachmentStore creates a store rooted at webRoot (e.g. "wwwroot").
func NewAttachmentStore(webRoot string) *AttachmentStore {
	return &AttachmentStore{webRoot: webRoot}
}

var _ portsrepo.AttachmentStore = (*AttachmentStore)(nil)

// ClaimDir returns the directory that holds a claim's attachments.
func (s *AttachmentStore) ClaimDir(claimID int64) string {
	return filepath.Join(s.webRoot, "uploads", "claims", strconv.FormatInt(claimID, 10))
}

// SaveAttachment streams the document to disk and returns the stored name.
// On a fault mid-copy the partial file is removed best-effort before the
// error is returned.
func (s *AttachmentStore) SaveAttachment(ctx context.Context, claimID int64, originalFilename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := s.ClaimDir(claimID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewAppError(500, fmt.Sprintf("failed to create upload directory for claim %d", claimID), err)
	}

	randomName, err := utils.GenerateSecureRandomString(storedNameBytes)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to generate stored attachment name", err)
	}
	storedName := randomName + strings.ToLower(filepath.Ext(originalFilename))
	savePath := filepath.Join(dir, storedName)

	f, err := os.Create(savePath)
	if err != nil {
		return "", apperrors.NewAppError(500, fmt.Sprintf("failed to create attachment file for claim %d", claimID), err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(savePath) // partial file is garbage
		return "", apperrors.NewAppError(500, fmt.Sprintf("failed to write attachment for claim %d", claimID), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(savePath)
		return "", apperrors.NewAppError(500, fmt.Sprintf("failed to close attachment file for claim %d", claimID), err)
	}

	return storedName, nil
}
