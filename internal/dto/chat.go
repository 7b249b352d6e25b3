package dto

import (
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

const guestName = "Guest"

type ChatMessageNew struct {
	DeviceId string `json:"deviceId"`
	UserName string `json:"userName"`
	Message  string `json:"message"`
	ImageUrl string `json:"imageUrl"`
}

// ConvertChatMessageNewToEntity builds an unread customer message.
func ConvertChatMessageNewToEntity(cn *ChatMessageNew, now time.Time) (*entity.ChatMessage, error) {
	deviceId := strings.TrimSpace(cn.DeviceId)
	if deviceId == "" {
		return nil, gerr.Validation("deviceId", "is required")
	}
	msg := strings.TrimSpace(cn.Message)
	img := strings.TrimSpace(cn.ImageUrl)
	if msg == "" && img == "" {
		return nil, gerr.Validation("message", "message or imageUrl is required")
	}
	name := strings.TrimSpace(cn.UserName)
	if name == "" {
		name = guestName
	}
	return &entity.ChatMessage{
		DeviceId:  deviceId,
		UserName:  name,
		Sender:    entity.ChatSenderCustomer,
		Message:   msg,
		ImageUrl:  img,
		CreatedAt: now,
	}, nil
}

type ChatReply struct {
	Message string `json:"message"`
}

// ConvertChatReplyToEntity builds an admin reply; admin messages are born read.
func ConvertChatReplyToEntity(cr *ChatReply, deviceId string, now time.Time) (*entity.ChatMessage, error) {
	msg := strings.TrimSpace(cr.Message)
	if msg == "" {
		return nil, gerr.Validation("message", "is required")
	}
	return &entity.ChatMessage{
		DeviceId:  deviceId,
		UserName:  "Admin",
		Sender:    entity.ChatSenderAdmin,
		Message:   msg,
		Read:      true,
		CreatedAt: now,
	}, nil
}

type ChatMessage struct {
	Id        int       `json:"id"`
	DeviceId  string    `json:"deviceId"`
	UserName  string    `json:"userName"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	ImageUrl  string    `json:"imageUrl,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func ConvertEntityChatMessageToDto(m *entity.ChatMessage) *ChatMessage {
	return &ChatMessage{
		Id:        m.Id,
		DeviceId:  m.DeviceId,
		UserName:  m.UserName,
		Sender:    string(m.Sender),
		Message:   m.Message,
		ImageUrl:  m.ImageUrl,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

func ConvertEntityChatMessagesToDto(ms []entity.ChatMessage) []*ChatMessage {
	out := make([]*ChatMessage, 0, len(ms))
	for i := range ms {
		out = append(out, ConvertEntityChatMessageToDto(&ms[i]))
	}
	return out
}

type Conversation struct {
	DeviceId    string         `json:"deviceId"`
	UserName    string         `json:"userName"`
	Messages    []*ChatMessage `json:"messages"`
	UnreadCount int            `json:"unreadCount"`
	LastMessage *ChatMessage   `json:"lastMessage"`
}

func ConvertEntityConversationsToDto(cs []entity.Conversation) []*Conversation {
	out := make([]*Conversation, 0, len(cs))
	for i := range cs {
		c := &cs[i]
		out = append(out, &Conversation{
			DeviceId:    c.DeviceId,
			UserName:    c.UserName,
			Messages:    ConvertEntityChatMessagesToDto(c.Messages),
			UnreadCount: c.UnreadCount,
			LastMessage: ConvertEntityChatMessageToDto(&c.LastMessage),
		})
	}
	return out
}
