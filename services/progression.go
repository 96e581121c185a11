package services

import (
	"fmt"
	"log"

	"chore-quest-system/models"

	"gorm.io/gorm"
)

// levelLoopCap bounds level-up resolution so a corrupted xp value cannot
// spin the cascade forever.
const levelLoopCap = 1000

type ProgressionService struct {
	notifier Notifier
}

func NewProgressionService(notifier Notifier) *ProgressionService {
	return &ProgressionService{notifier: notifier}
}

// CreditQuestPayout applies a confirmed quest's earnings inside the caller's
// transaction: the decayed payout goes to gold, the quest's nominal xp
// reward goes to xp, then level-ups cascade. The threshold is re-checked
// against the live balance on every iteration, so one large grant can span
// several levels.
func (s *ProgressionService) CreditQuestPayout(tx *gorm.DB, account *models.Account, quest *models.Quest, payout int64) error {
	account.Gold += payout
	account.XP += quest.XPReward

	levels := 0
	for account.XP >= XPToNextLevel(account.CharacterLevel) {
		levels++
		if levels > levelLoopCap {
			return fmt.Errorf("%w: level cascade exceeded %d iterations for account %s", ErrInvalidState, levelLoopCap, account.ID)
		}
		account.XP -= XPToNextLevel(account.CharacterLevel)
		account.CharacterLevel++
		s.notifier.Notify(account.ID, fmt.Sprintf("Level up! You are now level %d.", account.CharacterLevel))
	}

	if err := tx.Save(account).Error; err != nil {
		return err
	}

	log.Printf("🎮 [PROGRESSION] account=%s gold+=%d xp+=%d level=%d", account.ID, payout, quest.XPReward, account.CharacterLevel)
	return nil
}
