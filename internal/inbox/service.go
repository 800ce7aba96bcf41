// Package inbox implements the item lifecycle: turning raw shared payloads
// into persisted items and applying every later mutation to them.
package inbox

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sharebin/internal/domain"
	"sharebin/internal/linkclean"
	"sharebin/internal/media"
	"sharebin/internal/storage"
	"sharebin/internal/thumbnail"
)

// ErrNothingToSave is returned when a capture carries no usable content
// (blank text, no images). It is an outcome for the caller to report, not a
// fault.
var ErrNothingToSave = errors.New("nothing to save")

// Service is the single authoritative entry point for creating and mutating
// items. All collaborator failures degrade the saved item (missing thumbnail,
// missing OCR text, original image ref kept) and never abort the save.
type Service struct {
	repo     storage.Repository
	thumbs   thumbnail.Fetcher
	importer media.Importer
	ocr      media.TextExtractor
	clip     Clipboard
	share    ShareSheet
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewService wires the lifecycle manager with its collaborators. A nil ocr
// falls back to the no-op extractor.
func NewService(
	repo storage.Repository,
	thumbs thumbnail.Fetcher,
	importer media.Importer,
	ocr media.TextExtractor,
	clip Clipboard,
	share ShareSheet,
	logger logrus.FieldLogger,
) *Service {
	if ocr == nil {
		ocr = media.NoopExtractor{}
	}
	return &Service{
		repo:     repo,
		thumbs:   thumbs,
		importer: importer,
		ocr:      ocr,
		clip:     clip,
		share:    share,
		log:      logger.WithField("component", "inbox"),
		now:      time.Now,
	}
}

func isLink(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// SaveTextOrLink persists one captured text share. Text starting with an
// http(s) scheme is classified as a link and gets a canonicalized URL, a
// best-effort thumbnail and, when no explicit label was given, a suggested
// label from the domain.
func (s *Service) SaveTextOrLink(ctx context.Context, raw, sourceApp, label string) (domain.Item, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Item{}, ErrNothingToSave
	}

	item := domain.Item{
		ID:        domain.NewID(),
		Type:      domain.TypeText,
		Text:      trimmed,
		SourceApp: sourceApp,
		Label:     label,
		CreatedAt: s.now(),
	}

	if isLink(trimmed) {
		item.Type = domain.TypeLink
		item.CleanedText = linkclean.Clean(trimmed)
		item.ThumbnailURL = s.fetchThumbnail(ctx, trimmed)
		if item.Label == "" {
			item.Label = linkclean.SuggestLabel(trimmed)
		}
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return domain.Item{}, err
	}
	s.log.WithFields(logrus.Fields{"item_id": item.ID, "type": item.Type}).Info("Item saved")
	return item, nil
}

// fetchThumbnail asks the thumbnail collaborator for a preview image URL.
// Failures are logged and yield no thumbnail.
func (s *Service) fetchThumbnail(ctx context.Context, pageURL string) string {
	if s.thumbs == nil {
		return ""
	}
	img, err := s.thumbs.Fetch(ctx, pageURL)
	if err != nil {
		s.log.WithError(err).WithField("url", pageURL).Warn("Thumbnail fetch failed")
		return ""
	}
	return img
}

// SaveImages persists one captured image share. Each source ref is imported
// into local storage; an import failure keeps that image's original ref
// rather than aborting the save. OCR runs against the first successfully
// imported image only.
func (s *Service) SaveImages(ctx context.Context, refs []string, sourceApp, label string) (domain.Item, error) {
	if len(refs) == 0 {
		return domain.Item{}, ErrNothingToSave
	}

	stored := make([]string, 0, len(refs))
	firstImported := ""
	for _, ref := range refs {
		local, ok := s.importOne(ref)
		stored = append(stored, local)
		if ok && firstImported == "" {
			firstImported = local
		}
	}

	text := ""
	if firstImported != "" {
		extracted, err := s.ocr.ExtractText(ctx, firstImported)
		if err != nil {
			s.log.WithError(err).WithField("ref", firstImported).Warn("Text extraction failed")
		} else {
			text = strings.TrimSpace(extracted)
		}
	}

	item := domain.Item{
		ID:        domain.NewID(),
		Type:      domain.TypeImage,
		Text:      text,
		ImageRefs: stored,
		SourceApp: sourceApp,
		Label:     label,
		CreatedAt: s.now(),
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return domain.Item{}, err
	}
	s.log.WithFields(logrus.Fields{"item_id": item.ID, "images": len(stored)}).Info("Image item saved")
	return item, nil
}

// importOne copies a single image into local storage, falling back to the
// original ref on any failure. The second result reports whether the import
// succeeded.
func (s *Service) importOne(ref string) (string, bool) {
	if s.importer == nil {
		return ref, false
	}
	if err := s.importer.AcquirePermission(ref); err != nil {
		s.log.WithError(err).WithField("ref", ref).Warn("Could not secure read access, keeping original ref")
		return ref, false
	}
	local, err := s.importer.CopyToLocalStorage(ref)
	if err != nil {
		s.log.WithError(err).WithField("ref", ref).Warn("Image import failed, keeping original ref")
		return ref, false
	}
	return local, true
}

// Delete removes an item; missing ids are silent no-ops.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteBulk removes a batch of items.
func (s *Service) DeleteBulk(ctx context.Context, ids []string) error {
	return s.repo.DeleteBulk(ctx, ids)
}

// Pin sets the pinned flag on one item.
func (s *Service) Pin(ctx context.Context, id string, pinned bool) error {
	return s.repo.SetPinned(ctx, id, pinned)
}

// PinBulk sets the pinned flag on a batch of items.
func (s *Service) PinBulk(ctx context.Context, ids []string, pinned bool) error {
	return s.repo.SetPinnedBulk(ctx, ids, pinned)
}

// UpdateLabel replaces the item's label; a no-op when the item is gone.
func (s *Service) UpdateLabel(ctx context.Context, id, label string) error {
	return s.repo.UpdateLabel(ctx, id, label)
}

// SetReminder sets or clears (nil) the reminder time on an item.
func (s *Service) SetReminder(ctx context.Context, id string, at *time.Time) error {
	return s.repo.SetReminder(ctx, id, at)
}

// CopyToClipboard puts text on the system clipboard.
func (s *Service) CopyToClipboard(text string) error {
	return s.clip.WriteText(text)
}

// CopyImageToClipboard puts a stored image ref on the system clipboard.
func (s *Service) CopyImageToClipboard(ref string) error {
	return s.clip.WriteImage(ref)
}

// Reshare hands an item back out through the share sheet. Text and link
// items share their cleaned text when available; image items share all refs,
// switching to the multi-image payload kind when there is more than one.
func (s *Service) Reshare(item domain.Item) error {
	payload := SharePayload{Kind: PayloadText, Text: item.ShareText()}
	if item.Type == domain.TypeImage {
		payload = SharePayload{Kind: PayloadImage, ImageRefs: item.ImageRefs}
		if len(item.ImageRefs) > 1 {
			payload.Kind = PayloadImageSet
		}
	}
	return s.share.Share(payload)
}
