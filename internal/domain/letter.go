package domain

import (
	"strings"
	"time"
)

// LetterStatus enumerates the lifecycle states of a letter.
type LetterStatus string

const (
	// LetterSending is the only non-terminal status. Whether the letter is
	// visible to the recipient is a derived view: available_at <= now.
	LetterSending LetterStatus = "sending"
	// LetterSaved is terminal: the recipient archived the letter.
	LetterSaved LetterStatus = "saved"
	// LetterDropped is terminal: the recipient discarded the letter. Dropped
	// letters are retained, never purged.
	LetterDropped LetterStatus = "dropped"
)

// IsTerminal returns true if the letter status permits no further transition.
func (s LetterStatus) IsTerminal() bool {
	return s == LetterSaved || s == LetterDropped
}

// PageDelimiter separates pages inside letter and draft content. The ASCII
// record separator is reserved: it may never appear literally in user text.
const PageDelimiter = "\x1e"

// LegacyPageSize is the chunk size (in runes) used to paginate content
// authored before the page delimiter existed.
const LegacyPageSize = 1000

const (
	MinContentLen = 50
	MaxContentLen = 5000
	MaxStamps     = 3
	MaxImages     = 3
	MaxTags       = 10
	MaxTagLen     = 40
)

// Letter is a single piece of correspondence. Letters are never deleted; they
// only transition from "sending" to a terminal status.
type Letter struct {
	ID               string       `json:"id" db:"id"`
	SenderID         string       `json:"sender_id" db:"sender_id"`
	RecipientAddress string       `json:"recipient_address" db:"recipient_address"`
	Content          string       `json:"content" db:"content"`
	RenderedHTML     string       `json:"rendered_html,omitempty" db:"rendered_html"`
	Status           LetterStatus `json:"status" db:"status"`
	SentAt           time.Time    `json:"sent_at" db:"sent_at"`
	AvailableAt      time.Time    `json:"available_at" db:"available_at"`
	ScheduledAt      *time.Time   `json:"scheduled_at,omitempty" db:"scheduled_at"`
	StampIDs         []string     `json:"stamp_ids" db:"stamp_ids"`
	EnvelopeID       string       `json:"envelope_id,omitempty" db:"envelope_id"`
	Images           []string     `json:"images,omitempty" db:"images"`
	Tags             []string     `json:"tags" db:"tags"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty" db:"resolved_at"`
}

// VisibleAt reports whether the letter has arrived from the recipient's point
// of view. Delivery is a pure function of the read path: nothing "fires" at
// available_at.
func (l *Letter) VisibleAt(now time.Time) bool {
	return l.Status == LetterSending && !l.AvailableAt.After(now)
}

// Pages splits letter content into display pages. Content containing the page
// delimiter is split on it (author-controlled page breaks); content authored
// before the delimiter existed is chunked at LegacyPageSize runes.
func (l *Letter) Pages() []string {
	return SplitPages(l.Content)
}

// SplitPages implements the pagination rules shared by letters and drafts.
func SplitPages(content string) []string {
	if content == "" {
		return []string{""}
	}
	if strings.Contains(content, PageDelimiter) {
		return strings.Split(content, PageDelimiter)
	}
	runes := []rune(content)
	if len(runes) <= LegacyPageSize {
		return []string{content}
	}
	pages := make([]string, 0, (len(runes)+LegacyPageSize-1)/LegacyPageSize)
	for start := 0; start < len(runes); start += LegacyPageSize {
		end := start + LegacyPageSize
		if end > len(runes) {
			end = len(runes)
		}
		pages = append(pages, string(runes[start:end]))
	}
	return pages
}

// JoinPages joins pages with the reserved delimiter. Pages containing the
// delimiter literally are rejected.
func JoinPages(pages []string) (string, error) {
	for _, p := range pages {
		if strings.Contains(p, PageDelimiter) {
			return "", ValidationError{Field: "pages", Reason: "page text may not contain the reserved page delimiter"}
		}
	}
	return strings.Join(pages, PageDelimiter), nil
}
