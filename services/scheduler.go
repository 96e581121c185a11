package services

import (
	"log"
	"time"

	"chore-quest-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StartSettlementScheduler runs the expired-quest sweep on an interval so
// lapsed quests land in history even for accounts nobody is looking at.
func (s *QuestService) StartSettlementScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.SettleAllExpired(); err != nil {
				log.Printf("[SETTLEMENT] sweep failed: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("✅ Expired-quest settlement sweep running (every %s)", interval)
	return sched, nil
}

// SettleAllExpired stamps every expired unconfirmed quest in the system as
// a zero payout. Safe to run concurrently with request traffic: settlement
// is idempotent and transactional.
func (s *QuestService) SettleAllExpired() error {
	now := s.now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var accountIDs []string
		err := tx.Model(&models.Quest{}).
			Distinct("user_id").
			Where("confirmed = ? AND actual_reward IS NULL AND expires_at < ?", false, now).
			Pluck("user_id", &accountIDs).Error
		if err != nil {
			return err
		}
		for _, id := range accountIDs {
			if err := settleExpiredQuests(tx, id, now); err != nil {
				return err
			}
		}
		return nil
	})
}
