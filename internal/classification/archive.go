package classification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ArchivePrefix is the blob prefix raw text-service responses are stored under.
const ArchivePrefix = "responses/"

// archiveResponse stores the raw response text and returns its key. Failures
// are logged and yield an empty key.
func (s *service) archiveResponse(ctx context.Context, subject, text string) string {
	if s.archive == nil {
		return ""
	}

	now := s.now()
	key := fmt.Sprintf("%s%04d/%02d/%s.txt", ArchivePrefix, now.Year(), int(now.Month()), uuid.New())

	if err := s.archive.Upload(ctx, key, strings.NewReader(text), "text/plain; charset=utf-8"); err != nil {
		s.logger.Warn("response archive failed", "subject", subject, "key", key, "error", err)
		return ""
	}

	s.logger.Debug("response archived", "subject", subject, "key", key)
	return key
}
