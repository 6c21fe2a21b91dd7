package models

import (
	"encoding/json"
	"time"

	"github.com/jobbuddy/internal/types"
)

// DefaultNotificationRetentionDays is how long notifications are kept by default
const DefaultNotificationRetentionDays = 30

// Notification represents a message shown to a user
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Type      types.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Related   types.RelatedRef       `json:"-"`
	IsRead    bool                   `json:"isRead"`
	Emailed   bool                   `json:"emailed"`
	CreatedAt time.Time              `json:"createdAt"`
}

// MarshalJSON renders Related in its wire form
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	return json.Marshal(struct {
		plain
		Related *types.RelatedRefJSON `json:"related,omitempty"`
	}{
		plain:   plain(n),
		Related: types.EncodeRelatedRef(n.Related),
	})
}

// RelatedEntity is a resolved notification reference. Exactly one field is set.
type RelatedEntity struct {
	Application *Application `json:"application,omitempty"`
	Outreach    *Outreach    `json:"outreach,omitempty"`
	Goal        *Goal        `json:"goal,omitempty"`
	Quest       *UserQuest   `json:"quest,omitempty"`
}
