package services

import (
	"errors"

	"chore-quest-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mayAccess reports whether the principal may act on the target account's
// resources: the account itself, or its linked guardian/dependent
// counterpart. The link is checked in both directions because either side
// of the pair may hold the edge.
func mayAccess(principal, target *models.Account) bool {
	if principal == nil || target == nil {
		return false
	}
	if principal.ID == target.ID {
		return true
	}
	if target.LinkedAccountID != nil && *target.LinkedAccountID == principal.ID {
		return true
	}
	if principal.LinkedAccountID != nil && *principal.LinkedAccountID == target.ID {
		return true
	}
	return false
}

func loadAccount(tx *gorm.DB, id string) (*models.Account, error) {
	var account models.Account
	if err := tx.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func lockAccount(tx *gorm.DB, id string) (*models.Account, error) {
	var account models.Account
	if err := withRowLock(tx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// withRowLock adds SELECT ... FOR UPDATE. SQLite serializes writers on its
// own and rejects the clause, so it is skipped there.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// authorizeAccess loads the principal and target accounts and applies the
// two-party authorization predicate. "Account not found" and "forbidden"
// are the only ways a guarded path may fail.
func authorizeAccess(tx *gorm.DB, principalID, targetID string) (*models.Account, error) {
	target, err := loadAccount(tx, targetID)
	if err != nil {
		return nil, err
	}
	principal := target
	if principalID != targetID {
		principal, err = loadAccount(tx, principalID)
		if err != nil {
			return nil, err
		}
	}
	if !mayAccess(principal, target) {
		return nil, ErrForbidden
	}
	return target, nil
}
