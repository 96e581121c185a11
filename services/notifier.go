package services

// Notifier delivers a short message to an account's device, best-effort.
// Implementations must not block and must never fail the caller's
// transaction; delivery problems are logged and dropped.
type Notifier interface {
	Notify(accountID, message string)
}

// NopNotifier discards every message.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) {}
