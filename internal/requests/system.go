package requests

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/auth"
)

// System defines the public contract for change request moderation.
type System interface {
	Handler() *Handler

	// Submit records a Pending request on behalf of requester.
	Submit(ctx context.Context, sub Submission, requester string) (*catalog.ChangeRequest, error)
	// Edit overlays fields onto a Pending request owned by requester.
	Edit(ctx context.Context, id uuid.UUID, fields Fields, requester string) (*catalog.ChangeRequest, error)
	// VerifyIngredients classifies the request's product or ingredient list
	// for admin review. The request itself is not modified.
	VerifyIngredients(ctx context.Context, id uuid.UUID) ([]catalog.Ingredient, error)
	// Approve applies the request to the catalog and marks it Approved.
	Approve(ctx context.Context, id uuid.UUID, admin string, cmd ApproveCommand) (*Approval, error)
	// Reject marks a Pending request Rejected with a reason.
	Reject(ctx context.Context, id uuid.UUID, admin string, cmd RejectCommand) (*catalog.ChangeRequest, error)

	List(ctx context.Context, filter catalog.RequestFilter) ([]catalog.ChangeRequest, error)
	ListByRequester(ctx context.Context, requester string) ([]catalog.ChangeRequest, error)
	// Find returns a request visible to p: its requester or an admin.
	Find(ctx context.Context, id uuid.UUID, p auth.Principal) (*catalog.ChangeRequest, error)
}
