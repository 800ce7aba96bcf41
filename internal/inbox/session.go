package inbox

import (
	"context"
	"sync"

	"sharebin/internal/domain"
)

// PendingShare is the raw content of one external share event, before it has
// been persisted.
type PendingShare struct {
	Text      string
	ImageRefs []string
	SourceApp string
	Label     string
}

// Session scopes one capture flow (one share event being handled). However
// many actions the flow performs (save, then set a reminder, then re-share),
// at most one item is ever created: later calls reuse the item from the first
// successful save.
type Session struct {
	svc     *Service
	pending PendingShare

	mu    sync.Mutex
	saved *domain.Item
}

// NewSession starts a capture session for one share event.
func NewSession(svc *Service, pending PendingShare) *Session {
	return &Session{svc: svc, pending: pending}
}

// EnsureSaved persists the pending share if this session has not saved yet,
// and returns the session's item either way. Text takes precedence over
// images when both are present, matching how a share event is interpreted.
func (s *Session) EnsureSaved(ctx context.Context) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saved != nil {
		return *s.saved, nil
	}

	var (
		item domain.Item
		err  error
	)
	switch {
	case s.pending.Text != "":
		item, err = s.svc.SaveTextOrLink(ctx, s.pending.Text, s.pending.SourceApp, s.pending.Label)
	case len(s.pending.ImageRefs) > 0:
		item, err = s.svc.SaveImages(ctx, s.pending.ImageRefs, s.pending.SourceApp, s.pending.Label)
	default:
		err = ErrNothingToSave
	}
	if err != nil {
		return domain.Item{}, err
	}

	s.saved = &item
	return item, nil
}

// Reshare saves the pending share if needed, then hands the saved item back
// out through the share sheet.
func (s *Session) Reshare(ctx context.Context) error {
	item, err := s.EnsureSaved(ctx)
	if err != nil {
		return err
	}
	return s.svc.Reshare(item)
}

// SavedID returns the id of the item saved by this session, or "" when
// nothing has been saved yet.
func (s *Session) SavedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return ""
	}
	return s.saved.ID
}
