package services

import (
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"chore-quest-system/models"
	"chore-quest-system/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const defaultQuestLifetime = 7 * 24 * time.Hour

// QuestService drives a quest through Open → Completed → Confirmed (or
// Expired), invoking the decay calculator and progression engine at the
// right transitions.
type QuestService struct {
	DB          *gorm.DB
	progression *ProgressionService
	notifier    Notifier
	now         func() time.Time
}

func NewQuestService(db *gorm.DB, progression *ProgressionService, notifier Notifier) *QuestService {
	return &QuestService{
		DB:          db,
		progression: progression,
		notifier:    notifier,
		now:         time.Now,
	}
}

type CreateQuestInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DifficultyTier string     `json:"difficulty_tier"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// CreateQuest fixes the quest's gold and xp rewards from the difficulty
// tier at creation; xp additionally scales with the owner's current level.
// Expiry defaults to seven days out.
func (s *QuestService) CreateQuest(principalID, ownerID string, input CreateQuestInput) (*models.Quest, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	tier, err := CanonicalDifficulty(input.DifficultyTier)
	if err != nil {
		return nil, err
	}
	gold, err := DifficultyGold(tier)
	if err != nil {
		return nil, err
	}

	var quest *models.Quest
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		owner, err := authorizeAccess(tx, principalID, ownerID)
		if err != nil {
			return err
		}

		now := s.now()
		expiresAt := now.Add(defaultQuestLifetime)
		if input.ExpiresAt != nil {
			if !input.ExpiresAt.After(now) {
				return fmt.Errorf("%w: expiry must be in the future", ErrInvalidInput)
			}
			expiresAt = *input.ExpiresAt
		}

		quest = &models.Quest{
			ID:             uuid.NewString(),
			UserID:         owner.ID,
			Title:          title,
			Slug:           slug.Make(title),
			Description:    input.Description,
			DifficultyTier: tier,
			GoldReward:     gold,
			XPReward:       QuestXPReward(gold, owner.CharacterLevel),
			ExpiresAt:      expiresAt,
			Timestamps:     models.Timestamps{CreatedAt: now},
		}
		return tx.Create(quest).Error
	})
	if err != nil {
		return nil, err
	}
	return quest, nil
}

// ListQuests returns the owner's quests, newest first.
func (s *QuestService) ListQuests(principalID, ownerID string) ([]models.Quest, error) {
	if _, err := authorizeAccess(s.DB, principalID, ownerID); err != nil {
		return nil, err
	}
	var quests []models.Quest
	err := s.DB.Where("user_id = ?", ownerID).Order("created_at DESC").Find(&quests).Error
	return quests, err
}

// CompleteQuest marks the quest done and asks the linked counterpart to
// confirm it. Gold and xp move only at confirmation.
func (s *QuestService) CompleteQuest(principalID, ownerID, questID string) (*models.Quest, error) {
	var quest *models.Quest
	var owner *models.Account
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		owner, err = authorizeAccess(tx, principalID, ownerID)
		if err != nil {
			return err
		}
		quest, err = lockQuest(tx, ownerID, questID)
		if err != nil {
			return err
		}
		if quest.Confirmed {
			return ErrAlreadyConfirmed
		}
		if quest.ActualReward != nil {
			return fmt.Errorf("%w: quest already settled as expired", ErrInvalidState)
		}
		if quest.Completed {
			return ErrAlreadyCompleted
		}

		now := s.now()
		quest.Completed = true
		quest.CompletedAt = &now
		return tx.Save(quest).Error
	})
	if err != nil {
		return nil, err
	}

	if owner.LinkedAccountID != nil {
		s.notifier.Notify(*owner.LinkedAccountID,
			fmt.Sprintf("%s finished %q and needs your confirmation.", owner.Email, quest.Title))
	}
	return quest, nil
}

// ConfirmQuest finalizes the payout. The decayed reward is stamped as the
// quest's actual reward and credited to the owner's balance — exactly once:
// the quest row is locked for the duration, and a second confirmation loses
// with ErrAlreadyConfirmed.
func (s *QuestService) ConfirmQuest(principalID, ownerID, questID string) (*models.Quest, error) {
	var quest *models.Quest
	var owner *models.Account
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := authorizeAccess(tx, principalID, ownerID); err != nil {
			return err
		}
		var err error
		owner, err = lockAccount(tx, ownerID)
		if err != nil {
			return err
		}
		quest, err = lockQuest(tx, ownerID, questID)
		if err != nil {
			return err
		}
		if quest.Confirmed {
			return ErrAlreadyConfirmed
		}
		if quest.ActualReward != nil {
			return fmt.Errorf("%w: quest already settled as expired", ErrInvalidState)
		}
		if !quest.Completed {
			return fmt.Errorf("%w: quest must be completed before confirmation", ErrInvalidState)
		}

		now := s.now()
		value, err := currentReward(tx, quest, now)
		if err != nil {
			return err
		}
		payout := int64(math.Round(value))

		quest.Confirmed = true
		quest.ActualReward = &payout
		if err := tx.Save(quest).Error; err != nil {
			return err
		}
		return s.progression.CreditQuestPayout(tx, owner, quest, payout)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(owner.ID,
		fmt.Sprintf("Quest %q confirmed: you earned %d gold.", quest.Title, *quest.ActualReward))
	return quest, nil
}

// CurrentReward is the "claimable now" preview shown to clients. For an
// already-resolved quest it reports the stamped payout. Settling expired
// quests is an explicit write step, so even the preview runs in a
// transaction.
func (s *QuestService) CurrentReward(principalID, ownerID, questID string) (float64, error) {
	var value float64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := authorizeAccess(tx, principalID, ownerID); err != nil {
			return err
		}
		quest, err := getQuest(tx, ownerID, questID)
		if err != nil {
			return err
		}
		if quest.ActualReward != nil {
			value = float64(*quest.ActualReward)
			return nil
		}
		value, err = currentReward(tx, quest, s.now())
		return err
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// AttachProof uploads a completion photo to object storage and records its
// URL on the quest.
func (s *QuestService) AttachProof(principalID, ownerID, questID string, file *multipart.FileHeader) (*models.Quest, error) {
	var quest *models.Quest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := authorizeAccess(tx, principalID, ownerID); err != nil {
			return err
		}
		var err error
		quest, err = getQuest(tx, ownerID, questID)
		if err != nil {
			return err
		}

		key := fmt.Sprintf("proofs/%s/%s%s", quest.ID, uuid.NewString(), filepath.Ext(file.Filename))
		url, err := utils.UploadFileToR2(file, key)
		if err != nil {
			return fmt.Errorf("upload proof photo: %w", err)
		}
		quest.ProofPhotoURL = &url
		return tx.Save(quest).Error
	})
	if err != nil {
		return nil, err
	}
	return quest, nil
}

func getQuest(tx *gorm.DB, ownerID, questID string) (*models.Quest, error) {
	var quest models.Quest
	err := tx.First(&quest, "id = ? AND user_id = ?", questID, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quest, nil
}

func lockQuest(tx *gorm.DB, ownerID, questID string) (*models.Quest, error) {
	var quest models.Quest
	err := withRowLock(tx).First(&quest, "id = ? AND user_id = ?", questID, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quest, nil
}
