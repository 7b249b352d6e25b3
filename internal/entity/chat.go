package entity

import (
	"sort"
	"time"
)

type ChatSender string

const (
	ChatSenderCustomer ChatSender = "customer"
	ChatSenderAdmin    ChatSender = "admin"
)

// ChatMessage is one message of a storefront conversation. Conversations are
// keyed by the device the customer writes from.
type ChatMessage struct {
	Id        int        `json:"id"`
	DeviceId  string     `json:"deviceId"`
	UserName  string     `json:"userName"`
	Sender    ChatSender `json:"sender"`
	Message   string     `json:"message"`
	ImageUrl  string     `json:"imageUrl"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Conversation groups the messages of one device.
type Conversation struct {
	DeviceId    string
	UserName    string
	Messages    []ChatMessage
	UnreadCount int
	LastMessage ChatMessage
}

// GroupConversations splits msgs, oldest first, by device. Only unread
// customer messages count as unread. The most recently active conversation
// comes first.
func GroupConversations(msgs []ChatMessage) []Conversation {
	byDevice := map[string]*Conversation{}
	var order []string
	for _, m := range msgs {
		c, ok := byDevice[m.DeviceId]
		if !ok {
			c = &Conversation{DeviceId: m.DeviceId, UserName: m.UserName}
			byDevice[m.DeviceId] = c
			order = append(order, m.DeviceId)
		}
		if m.Sender == ChatSenderCustomer {
			c.UserName = m.UserName
			if !m.Read {
				c.UnreadCount++
			}
		}
		c.Messages = append(c.Messages, m)
		c.LastMessage = m
	}

	out := make([]Conversation, 0, len(order))
	for _, d := range order {
		out = append(out, *byDevice[d])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out
}
