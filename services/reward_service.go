package services

import (
	"errors"
	"fmt"
	"strings"

	"chore-quest-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardService struct {
	DB       *gorm.DB
	notifier Notifier
}

func NewRewardService(db *gorm.DB, notifier Notifier) *RewardService {
	return &RewardService{DB: db, notifier: notifier}
}

type CreateRewardInput struct {
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// CreateReward adds a store item the owner can later spend gold on.
func (s *RewardService) CreateReward(principalID, ownerID string, input CreateRewardInput) (*models.Reward, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Cost <= 0 {
		return nil, fmt.Errorf("%w: cost must be positive", ErrInvalidInput)
	}

	var reward *models.Reward
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		owner, err := authorizeAccess(tx, principalID, ownerID)
		if err != nil {
			return err
		}
		reward = &models.Reward{
			ID:     uuid.NewString(),
			UserID: owner.ID,
			Name:   name,
			Cost:   input.Cost,
		}
		return tx.Create(reward).Error
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// ListRewards returns the owner's rewards, newest first.
func (s *RewardService) ListRewards(principalID, ownerID string) ([]models.Reward, error) {
	if _, err := authorizeAccess(s.DB, principalID, ownerID); err != nil {
		return nil, err
	}
	var rewards []models.Reward
	err := s.DB.Where("user_id = ?", ownerID).Order("created_at DESC").Find(&rewards).Error
	return rewards, err
}

// PurchaseReward debits the reward's cost and marks it purchased in one
// transaction. The balance may land on exactly zero but never below it;
// a short balance fails with ErrInsufficientGold and changes nothing.
func (s *RewardService) PurchaseReward(principalID, ownerID, rewardID string) (*models.Reward, error) {
	var reward *models.Reward
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
		reward, err = lockReward(tx, ownerID, rewardID)
		if err != nil {
			return err
		}
		if reward.Completed {
			return fmt.Errorf("%w: reward already purchased", ErrInvalidState)
		}
		if owner.Gold < reward.Cost {
			return fmt.Errorf("%w: %q costs %d gold, balance is %d", ErrInsufficientGold, reward.Name, reward.Cost, owner.Gold)
		}

		owner.Gold -= reward.Cost
		reward.Completed = true
		if err := tx.Save(owner).Error; err != nil {
			return err
		}
		return tx.Save(reward).Error
	})
	if err != nil {
		return nil, err
	}

	if owner.LinkedAccountID != nil {
		s.notifier.Notify(*owner.LinkedAccountID,
			fmt.Sprintf("%s redeemed %q for %d gold.", owner.Email, reward.Name, reward.Cost))
	}
	return reward, nil
}

func lockReward(tx *gorm.DB, ownerID, rewardID string) (*models.Reward, error) {
	var reward models.Reward
	err := withRowLock(tx).First(&reward, "id = ? AND user_id = ?", rewardID, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reward, nil
}
