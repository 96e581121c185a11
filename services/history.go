package services

import (
	"time"

	"chore-quest-system/models"

	"gorm.io/gorm"
)

// historyWindow is how many recently resolved quests the decay calculator
// looks at when judging an account's reliability.
const historyWindow = 5

// settleExpiredQuests stamps every expired, unconfirmed quest of the account
// as a zero-payout completion: completed_at becomes the expiry instant and
// actual_reward becomes 0, making the lapse comparable to a confirmed quest
// for history ordering. One guarded update, never read-then-write: the
// predicate holds at write time, so a concurrently committed confirmation
// keeps its stamped payout. Idempotent — rows with a stamped actual_reward
// are never touched again.
func settleExpiredQuests(tx *gorm.DB, accountID string, now time.Time) error {
	return tx.Model(&models.Quest{}).
		Where("user_id = ? AND confirmed = ? AND actual_reward IS NULL AND expires_at < ?",
			accountID, false, now).
		Updates(map[string]any{
			"completed_at":  gorm.Expr("expires_at"),
			"actual_reward": 0,
		}).Error
}

// lastRelevantQuests returns up to five of the account's most recently
// resolved quests, newest first, excluding the quest under evaluation.
// Expired quests are settled first, so confirmed completions and lapsed
// quests are exactly the rows with a stamped actual_reward.
func lastRelevantQuests(tx *gorm.DB, accountID, excludeID string, now time.Time) ([]models.Quest, error) {
	if err := settleExpiredQuests(tx, accountID, now); err != nil {
		return nil, err
	}
	var history []models.Quest
	err := tx.Where("user_id = ? AND id <> ? AND actual_reward IS NOT NULL", accountID, excludeID).
		Order("completed_at DESC").
		Limit(historyWindow).
		Find(&history).Error
	return history, err
}
