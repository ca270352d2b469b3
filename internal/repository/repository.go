package repository

import (
	"context"

	"github.com/sakif/gitbot-link/internal/model"
)

type ListOptions struct {
	Limit     int
	Offset    int
	DiscordID string // optional filter; empty lists every id
}

// LinkEventRepository is the link journal: an append-only operator audit
// trail of link flow phases. It never holds GitHub credentials.
type LinkEventRepository interface {
	Record(ctx context.Context, event *model.LinkEvent) error
	GetByID(ctx context.Context, id string) (*model.LinkEvent, error)
	List(ctx context.Context, opts ListOptions) ([]model.LinkEvent, error)
}
