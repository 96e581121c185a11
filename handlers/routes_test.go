package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chore-quest-system/models"
	"chore-quest-system/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Account{}, &models.Quest{}, &models.Reward{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	notifier := services.NopNotifier{}
	progression := services.NewProgressionService(notifier)
	accounts := services.NewAccountService(db, notifier)
	auth := services.NewAuthService(db, "test-secret", time.Hour)
	quests := services.NewQuestService(db, progression, notifier)
	rewards := services.NewRewardService(db, notifier)

	app := fiber.New()
	SetupAccountRoutes(app, accounts, auth)
	SetupQuestRoutes(app, quests, auth)
	SetupRewardRoutes(app, rewards, auth)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}

	var parsed map[string]any
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func registerAndLogin(t *testing.T, app *fiber.App, email, password string) (string, string) {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/users", "", map[string]string{
		"email": email, "password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/token", nil)
	creds := base64.StdEncoding.EncodeToString([]byte(email + ":" + password))
	req.Header.Set("Authorization", "Basic "+creds)
	tokenResp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("token request: %v", err)
	}
	defer tokenResp.Body.Close()
	if tokenResp.StatusCode != http.StatusOK {
		t.Fatalf("token request: status %d", tokenResp.StatusCode)
	}
	var parsed struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(tokenResp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	return parsed.ID, parsed.Token
}

func TestEndToEndQuestLifecycle(t *testing.T) {
	app := newTestApp(t)
	kidID, kidToken := registerAndLogin(t, app, "kid@example.com", "potatoes")

	// create a Medium quest: 600 gold, 600 xp at level 1
	resp, quest := doJSON(t, app, http.MethodPost, "/api/users/"+kidID+"/quests", kidToken, map[string]string{
		"title":           "Clean your room",
		"description":     "Including under the bed",
		"difficulty_tier": "Medium",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quest: status %d", resp.StatusCode)
	}
	questID := quest["id"].(string)
	if quest["gold_reward"].(float64) != 600 {
		t.Fatalf("expected gold_reward 600, got %v", quest["gold_reward"])
	}

	// preview before completion shows full value
	resp, preview := doJSON(t, app, http.MethodGet, "/api/users/"+kidID+"/quests/"+questID+"/reward", kidToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reward preview: status %d", resp.StatusCode)
	}
	if preview["current_reward"].(float64) != 600 {
		t.Fatalf("expected preview 600, got %v", preview["current_reward"])
	}

	// complete, then confirm
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/quests/"+questID+"/complete", kidToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete quest: status %d", resp.StatusCode)
	}
	resp, confirmed := doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/quests/"+questID+"/confirm", kidToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm quest: status %d", resp.StatusCode)
	}
	if confirmed["actual_reward"].(float64) != 600 {
		t.Fatalf("expected actual_reward 600, got %v", confirmed["actual_reward"])
	}

	// 600 gold and 600 xp: two cascading level-ups, 200 residual xp
	resp, account := doJSON(t, app, http.MethodGet, "/api/users/"+kidID, kidToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get account: status %d", resp.StatusCode)
	}
	if account["gold"].(float64) != 600 {
		t.Fatalf("expected 600 gold, got %v", account["gold"])
	}
	if account["character_level"].(float64) != 3 {
		t.Fatalf("expected level 3, got %v", account["character_level"])
	}
	if account["xp"].(float64) != 200 {
		t.Fatalf("expected 200 residual xp, got %v", account["xp"])
	}

	// a duplicate confirmation loses with 409
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/quests/"+questID+"/confirm", kidToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate confirm: status %d, want 409", resp.StatusCode)
	}

	// reward store: too expensive fails, affordable succeeds
	resp, reward := doJSON(t, app, http.MethodPost, "/api/users/"+kidID+"/rewards", kidToken, map[string]any{
		"name": "New Toy", "cost": 700,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create reward: status %d", resp.StatusCode)
	}
	rewardID := reward["id"].(string)
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/rewards/"+rewardID+"/purchase", kidToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("over-budget purchase: status %d, want 400", resp.StatusCode)
	}

	resp, reward = doJSON(t, app, http.MethodPost, "/api/users/"+kidID+"/rewards", kidToken, map[string]any{
		"name": "Cinema trip", "cost": 600,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create reward: status %d", resp.StatusCode)
	}
	rewardID = reward["id"].(string)
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/rewards/"+rewardID+"/purchase", kidToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("purchase: status %d", resp.StatusCode)
	}
	resp, account = doJSON(t, app, http.MethodGet, "/api/users/"+kidID, kidToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get account: status %d", resp.StatusCode)
	}
	if account["gold"].(float64) != 0 {
		t.Fatalf("expected 0 gold after purchase, got %v", account["gold"])
	}
}

func TestGuardianFlow(t *testing.T) {
	app := newTestApp(t)
	kidID, kidToken := registerAndLogin(t, app, "kid@example.com", "potatoes")
	dadID, dadToken := registerAndLogin(t, app, "dad@example.com", "cabbages")

	// before linking, the guardian cannot see the kid
	resp, _ := doJSON(t, app, http.MethodGet, "/api/users/"+kidID, dadToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unlinked access: status %d, want 403", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/link", kidToken, map[string]string{
		"guardian_id": dadID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("link: status %d", resp.StatusCode)
	}

	// guardian assigns and later confirms a quest for the kid
	resp, quest := doJSON(t, app, http.MethodPost, "/api/users/"+kidID+"/quests", dadToken, map[string]string{
		"title": "Take out the trash", "difficulty_tier": "easy",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("guardian create quest: status %d", resp.StatusCode)
	}
	questID := quest["id"].(string)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/quests/"+questID+"/complete", kidToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("kid complete: status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/quests/"+questID+"/confirm", dadToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("guardian confirm: status %d", resp.StatusCode)
	}

	// linking again conflicts
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/"+kidID+"/link", kidToken, map[string]string{
		"guardian_id": dadID,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("relink: status %d, want 409", resp.StatusCode)
	}
}

func TestAuthAndErrorStatuses(t *testing.T) {
	app := newTestApp(t)
	kidID, kidToken := registerAndLogin(t, app, "kid@example.com", "potatoes")

	// no token
	resp, _ := doJSON(t, app, http.MethodGet, "/api/users/"+kidID, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d, want 401", resp.StatusCode)
	}

	// duplicate email
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users", "", map[string]string{
		"email": "kid@example.com", "password": "again",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate email: status %d, want 409", resp.StatusCode)
	}

	// invalid email
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users", "", map[string]string{
		"email": "bademail", "password": "pw",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid email: status %d, want 400", resp.StatusCode)
	}

	// unknown difficulty
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/"+kidID+"/quests", kidToken, map[string]string{
		"title": "Mystery", "difficulty_tier": "Legendary",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid difficulty: status %d, want 400", resp.StatusCode)
	}

	// unknown quest id
	resp, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/users/%s/quests/%s/complete", kidID, "missing"), kidToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown quest: status %d, want 404", resp.StatusCode)
	}
}
