package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"chore-quest-system/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountService struct {
	DB       *gorm.DB
	notifier Notifier
}

func NewAccountService(db *gorm.DB, notifier Notifier) *AccountService {
	return &AccountService{DB: db, notifier: notifier}
}

// Register creates a fresh level-1 account with zero balances.
func (s *AccountService) Register(email, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		CharacterLevel: 1,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		if err := tx.Create(account).Error; err != nil {
			// a concurrent registration can slip past the count check and
			// hit the unique index instead
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// isUniqueViolation recognizes a unique-index error across dialects:
// gorm's translated sentinel, postgres ("duplicate key value violates
// unique constraint") and sqlite ("UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Get loads the target account if the principal may see it.
func (s *AccountService) Get(principalID, accountID string) (*models.Account, error) {
	return authorizeAccess(s.DB, principalID, accountID)
}

// Link records the guardian/dependent relationship: one undirected edge
// stored on both rows, with an explicit role flag on the guardian side.
// Either account already holding an edge fails with ErrAlreadyLinked. Only
// one of the two parties may perform the link.
func (s *AccountService) Link(principalID, dependentID, guardianID string) (*models.Account, error) {
	if dependentID == guardianID {
		return nil, fmt.Errorf("%w: an account cannot be linked to itself", ErrInvalidInput)
	}

	var dependent *models.Account
	var guardian *models.Account
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		dependent, err = lockAccount(tx, dependentID)
		if err != nil {
			return err
		}
		guardian, err = lockAccount(tx, guardianID)
		if err != nil {
			return err
		}
		if principalID != dependent.ID && principalID != guardian.ID {
			return ErrForbidden
		}
		if dependent.LinkedAccountID != nil || guardian.LinkedAccountID != nil {
			return ErrAlreadyLinked
		}

		dependent.LinkedAccountID = &guardian.ID
		guardian.LinkedAccountID = &dependent.ID
		guardian.Guardian = true
		if err := tx.Save(dependent).Error; err != nil {
			return err
		}
		return tx.Save(guardian).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(guardian.ID, fmt.Sprintf("%s is now linked to your account.", dependent.Email))
	return dependent, nil
}
