package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"chore-quest-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// one in-memory database per test, not one per pooled connection
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Account{}, &models.Quest{}, &models.Reward{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *captureNotifier) Notify(accountID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, accountID+": "+message)
}

func (n *captureNotifier) countContaining(substr string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.messages {
		if strings.Contains(m, substr) {
			count++
		}
	}
	return count
}

func newTestAccount(t *testing.T, db *gorm.DB, email string) *models.Account {
	t.Helper()
	account := &models.Account{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   "irrelevant",
		CharacterLevel: 1,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

// resolvedQuest inserts a historical quest that already paid out, the kind
// the decay calculator reads as history.
func resolvedQuest(t *testing.T, db *gorm.DB, ownerID string, gold, actual int64, completedAt time.Time) *models.Quest {
	t.Helper()
	quest := &models.Quest{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		Title:          "resolved quest",
		DifficultyTier: "Medium",
		GoldReward:     gold,
		XPReward:       gold,
		ExpiresAt:      completedAt.Add(24 * time.Hour),
		CompletedAt:    &completedAt,
		ActualReward:   &actual,
		Completed:      true,
		Confirmed:      true,
		Timestamps:     models.Timestamps{CreatedAt: completedAt.Add(-24 * time.Hour)},
	}
	if err := db.Create(quest).Error; err != nil {
		t.Fatalf("create resolved quest: %v", err)
	}
	return quest
}

// openQuest inserts an unresolved quest with an explicit lifetime window.
func openQuest(t *testing.T, db *gorm.DB, ownerID string, gold int64, createdAt, expiresAt time.Time) *models.Quest {
	t.Helper()
	quest := &models.Quest{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		Title:          "open quest",
		DifficultyTier: "Medium",
		GoldReward:     gold,
		XPReward:       gold,
		ExpiresAt:      expiresAt,
		Timestamps:     models.Timestamps{CreatedAt: createdAt},
	}
	if err := db.Create(quest).Error; err != nil {
		t.Fatalf("create open quest: %v", err)
	}
	return quest
}

// newQuestServiceAt wires a quest service with a fixed clock.
func newQuestServiceAt(db *gorm.DB, notifier Notifier, now time.Time) *QuestService {
	svc := NewQuestService(db, NewProgressionService(notifier), notifier)
	svc.now = func() time.Time { return now }
	return svc
}
