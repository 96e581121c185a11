package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Account is a registered user, either a guardian or a dependent.
// Balances and level are mutated only by the progression engine and
// reward purchases; gold never goes below zero.
type Account struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	Gold           int64 `gorm:"default:0" json:"gold"`
	XP             int64 `gorm:"default:0" json:"xp"`
	CharacterLevel int   `gorm:"default:1" json:"character_level"`

	// LinkedAccountID references the single guardian/dependent counterpart.
	// The edge is stored on both rows of the pair.
	LinkedAccountID *string `gorm:"index" json:"linked_account_id,omitempty"`
	// Guardian records which side of the link plays the guardian role,
	// set when the pair is linked.
	Guardian bool `gorm:"default:false" json:"guardian"`

	Timestamps
}
