package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemType classifies what kind of content an Item carries.
type ItemType string

const (
	TypeText  ItemType = "TEXT"
	TypeLink  ItemType = "LINK"
	TypeImage ItemType = "IMAGE"
)

// Item is the unit of persistence: one captured text, link or image share.
type Item struct {
	// ID is an opaque unique identifier, assigned at creation and never reused.
	ID string `json:"id"`

	// Type is set at creation and immutable afterwards.
	Type ItemType `json:"type"`

	// Text is the raw captured text (TEXT/LINK) or OCR-derived text (IMAGE).
	Text string `json:"text,omitempty"`

	// CleanedText is the canonicalized URL when Type == LINK.
	CleanedText string `json:"cleaned_text,omitempty"`

	// ImageRefs are stable references to locally stored image resources,
	// in the order they were shared. Empty unless Type == IMAGE.
	ImageRefs []string `json:"image_refs,omitempty"`

	// ThumbnailURL is an external preview image URL (LINK previews only).
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// SourceApp identifies the application the share came from, if known.
	SourceApp string `json:"source_app,omitempty"`

	// CreatedAt is set once at creation and never changes.
	CreatedAt time.Time `json:"created_at"`

	Pinned bool `json:"pinned"`

	// ReminderAt, when set and in the future, marks an active reminder.
	ReminderAt *time.Time `json:"reminder_at,omitempty"`

	// Label is a short user- or system-assigned tag.
	Label string `json:"label,omitempty"`
}

// NewID returns a fresh item identifier.
func NewID() string {
	return uuid.NewString()
}

// HasActiveReminder reports whether the item has a reminder set in the future
// relative to now.
func (it Item) HasActiveReminder(now time.Time) bool {
	return it.ReminderAt != nil && it.ReminderAt.After(now)
}

// ShareText is the outbound text payload for re-sharing: the cleaned URL when
// available, otherwise the raw text.
func (it Item) ShareText() string {
	if it.CleanedText != "" {
		return it.CleanedText
	}
	return it.Text
}
