package models

import "time"

// Quest is an assignable task owned by the dependent who must perform it.
// Gold and xp rewards are fixed at creation from the difficulty tier.
type Quest struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	Title          string `gorm:"not null" json:"title"`
	Slug           string `gorm:"index" json:"slug"`
	Description    string `gorm:"type:text" json:"description"`
	DifficultyTier string `gorm:"not null" json:"difficulty_tier"`

	GoldReward int64 `json:"gold_reward"`
	XPReward   int64 `json:"xp_reward"`

	ExpiresAt   time.Time  `gorm:"index" json:"expires_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ActualReward is the gold amount actually paid out. It is stamped
	// exactly once: the decayed payout at confirmation, or zero when an
	// unconfirmed quest expires. Later quests' decay calculations read it
	// as the historical record.
	ActualReward *int64 `json:"actual_reward,omitempty"`

	Completed bool `gorm:"default:false" json:"completed"`
	Confirmed bool `gorm:"default:false" json:"confirmed"`

	ProofPhotoURL *string `gorm:"type:text" json:"proof_photo_url,omitempty"`

	Timestamps
}
