package comments

import (
	"context"

	"github.com/JaimeStill/halalcheck/internal/catalog"
)

// System defines the public contract for comments.
type System interface {
	Handler() *Handler

	// Create stores userID's comment on the command's target, which must exist.
	Create(ctx context.Context, userID string, cmd CreateCommand) (*catalog.Comment, error)
	// List returns the comments on exactly one target, newest first.
	List(ctx context.Context, filter catalog.CommentFilter) ([]catalog.Comment, error)
}
