package events

import "time"

// TopicLinkDeleted carries LinkDeletedEvent.
const TopicLinkDeleted = "link.deleted"

// LinkDeletedEvent is emitted after a link is removed from the store.
type LinkDeletedEvent struct {
	Code      string    `json:"code"`
	DeletedAt time.Time `json:"deletedAt"`
	ClientIP  string    `json:"clientIp,omitempty"`
}
