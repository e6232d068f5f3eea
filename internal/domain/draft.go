package domain

import "time"

// Draft is a persisted, resumable, not-yet-sent composition. Drafts live
// outside the delivery pipeline: saving one never touches cooldowns or
// scheduling. Pages are joined with the same delimiter letters use, so a
// promoted draft needs no content transformation.
type Draft struct {
	ID               string     `json:"id" db:"id"`
	SenderID         string     `json:"sender_id" db:"sender_id"`
	Content          string     `json:"content" db:"content"`
	RecipientAddress string     `json:"recipient_address,omitempty" db:"recipient_address"`
	StampIDs         []string   `json:"stamp_ids,omitempty" db:"stamp_ids"`
	EnvelopeID       string     `json:"envelope_id,omitempty" db:"envelope_id"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Pages splits draft content using the shared pagination rules.
func (d *Draft) Pages() []string {
	return SplitPages(d.Content)
}
