package models

// Reward is a store item a dependent can spend gold on. Purchasing
// requires the owner's balance to cover the cost at that instant; the
// debit and the completed flag are written atomically.
type Reward struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"index;not null" json:"user_id"`
	Name      string `gorm:"not null" json:"name"`
	Cost      int64  `gorm:"not null" json:"cost"`
	Completed bool   `gorm:"default:false" json:"completed"`

	Timestamps
}
