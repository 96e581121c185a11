package services

import (
	"fmt"
	"time"

	"chore-quest-system/models"

	"gorm.io/gorm"
)

// baseCoefficient is the fixed share of the nominal reward that is always
// claimable (before time decay); the rest depends on recent history.
const baseCoefficient = 0.60

// historyCoefficients weight the five most recent resolved quests, newest
// first. Together with the base share they sum to 1.0, so a flawless
// history pays the full nominal value.
var historyCoefficients = [historyWindow]float64{0.25, 0.15, 0, 0, 0}

// currentReward computes the gold the quest is worth right now, before
// confirmation. Past the deadline the payout is a hard zero. The first half
// of the quest window pays full credit; over the second half the payout
// decays linearly to zero at the deadline. Accounts with fewer than five
// resolved quests carry no performance penalty.
func currentReward(tx *gorm.DB, quest *models.Quest, now time.Time) (float64, error) {
	if now.After(quest.ExpiresAt) {
		return 0, nil
	}

	window := quest.ExpiresAt.Sub(quest.CreatedAt).Seconds()
	if window <= 0 {
		return 0, fmt.Errorf("%w: quest %s has a non-positive lifetime window", ErrInvalidState, quest.ID)
	}
	timeLeftRatio := quest.ExpiresAt.Sub(now).Seconds() / window
	timeMultiplier := 2 * timeLeftRatio
	if timeMultiplier > 1 {
		timeMultiplier = 1
	}

	history, err := lastRelevantQuests(tx, quest.UserID, quest.ID, now)
	if err != nil {
		return 0, err
	}

	nominal := float64(quest.GoldReward)
	if len(history) < historyWindow {
		return nominal * timeMultiplier, nil
	}

	sum := baseCoefficient * nominal
	for i, past := range history {
		if past.GoldReward <= 0 {
			return 0, fmt.Errorf("%w: historical quest %s has gold reward %d", ErrInvalidState, past.ID, past.GoldReward)
		}
		var actual int64
		if past.ActualReward != nil {
			actual = *past.ActualReward
		}
		sum += historyCoefficients[i] * (float64(actual) / float64(past.GoldReward)) * nominal
	}
	return sum * timeMultiplier, nil
}
