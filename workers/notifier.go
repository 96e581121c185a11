package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// notification is the payload posted to the external push service.
type notification struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// PushNotifier delivers account notifications to an external push service.
// Delivery is best-effort and fully decoupled from the caller: Notify never
// blocks, and a failed or dropped delivery never surfaces to the operation
// that triggered it.
type PushNotifier struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	queue        chan notification
}

func NewPushNotifier(pushServiceURL, serviceToken string) *PushNotifier {
	return &PushNotifier{
		baseURL:      pushServiceURL,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		queue: make(chan notification, 256),
	}
}

// Notify enqueues a message for the account. A full queue drops the
// message with a log line rather than blocking the caller.
func (n *PushNotifier) Notify(accountID, message string) {
	select {
	case n.queue <- notification{UserID: accountID, Message: message}:
	default:
		log.Printf("⚠️ [NOTIFY] queue full, dropping message for %s", accountID)
	}
}

// Run drains the queue until the context is cancelled.
func (n *PushNotifier) Run(ctx context.Context) {
	log.Println("🔔 [NOTIFY] push dispatcher started")
	for {
		select {
		case msg := <-n.queue:
			n.deliver(ctx, msg)
		case <-ctx.Done():
			log.Println("⏹️ [NOTIFY] push dispatcher stopped")
			return
		}
	}
}

func (n *PushNotifier) deliver(ctx context.Context, msg notification) {
	if n.baseURL == "" {
		// No push service configured; messages are intentionally dropped.
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ [NOTIFY] marshal failed: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/api/v1/push", bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ [NOTIFY] request build failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.serviceToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ [NOTIFY] delivery to %s failed: %v", msg.UserID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("❌ [NOTIFY] push service returned %d for %s", resp.StatusCode, msg.UserID)
	}
}
