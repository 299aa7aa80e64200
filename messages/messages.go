package messages

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/types"
)

// SystemMessage is the one-way notification published to the per-tenant
// NATS subject. Delivery is fire-and-forget; the bus is not part of any
// transaction.
type SystemMessage struct {
	TenantID    uint64            `json:"tenant_id"`
	Type        types.MessageType `json:"type"`
	Section     string            `json:"section"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Attachments []Attachment      `json:"attachments,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

func subject(tenantID uint64) string {
	return fmt.Sprintf("folio.system_messages.%d", tenantID)
}

// Publish sends one system message. Publish failures are logged and
// swallowed: notifications never fail the operation that emits them.
func Publish(tenantID uint64, messageType types.MessageType, section, title, description string, attachments ...Attachment) {
	message := SystemMessage{
		TenantID:    tenantID,
		Type:        messageType,
		Section:     section,
		Title:       title,
		Description: description,
		Attachments: attachments,
		CreatedAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		config.Logger.Errorf("messages: marshal: %v", err)
		return
	}

	if config.Nats == nil {
		return
	}
	if err := config.Nats.Publish(subject(tenantID), payload); err != nil {
		config.Logger.Errorf("messages: publish tenant %d: %v", tenantID, err)
	}
}
