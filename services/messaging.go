package services

import (
	"errors"
	"sort"
	"strings"

	"rentline-server/models"
	"rentline-server/realtime"

	"gorm.io/gorm"
)

// MessagingService stores directed messages and serves conversation-shaped
// reads. A conversation is never persisted; it is rebuilt from the message
// table on every fetch, which is what makes the re-fetch-on-signal realtime
// model correct.
type MessagingService struct {
	db  *gorm.DB
	bus realtime.Bus
}

func NewMessagingService(db *gorm.DB, bus realtime.Bus) *MessagingService {
	return &MessagingService{db: db, bus: bus}
}

// Conversation is the derived per-counterpart view
type Conversation struct {
	Counterpart models.User    `json:"counterpart"`
	LastMessage models.Message `json:"lastMessage"`
	UnreadCount int            `json:"unreadCount"`
}

func (s *MessagingService) send(senderID, receiverID uint, body, kind string, propertyID *uint) (*models.Message, error) {
	if senderID == 0 {
		return nil, ErrUnauthenticated
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, validationErr("message body is empty")
	}
	if receiverID == 0 || receiverID == senderID {
		return nil, validationErr("invalid receiver")
	}

	var receiver models.User
	if err := s.db.Select("id").First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("send message", err)
	}

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Kind:       kind,
		PropertyID: propertyID,
		Read:       false,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, storeErr("send message", err)
	}

	s.bus.Publish(receiverID, realtime.Event{Table: "messages", ID: message.ID})
	s.bus.Publish(senderID, realtime.Event{Table: "messages", ID: message.ID})

	return &message, nil
}

// Send inserts an unread user message, optionally tagged with a property
func (s *MessagingService) Send(senderID, receiverID uint, body string, propertyID *uint) (*models.Message, error) {
	return s.send(senderID, receiverID, body, models.MessageKindUser, propertyID)
}

// SendSystem is used by the notification bridge for application-lifecycle
// messages
func (s *MessagingService) SendSystem(senderID, receiverID uint, body string, propertyID *uint) (*models.Message, error) {
	return s.send(senderID, receiverID, body, models.MessageKindSystem, propertyID)
}

// MarkAsRead flips the read flag on a single message. Only the receiver may
// do so; repeating the call is a no-op.
func (s *MessagingService) MarkAsRead(userID, messageID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storeErr("mark message read", err)
	}
	if message.ReceiverID != userID {
		return ErrUnauthorized
	}
	if message.Read {
		return nil
	}
	if err := s.db.Model(&message).Update("read", true).Error; err != nil {
		return storeErr("mark message read", err)
	}
	s.bus.Publish(userID, realtime.Event{Table: "messages", ID: messageID})
	return nil
}

// MarkConversationAsRead marks every unread message from the counterpart to
// the user; idempotent by construction
func (s *MessagingService) MarkConversationAsRead(userID, counterpartID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	res := s.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", counterpartID, userID, false).
		Update("read", true)
	if res.Error != nil {
		return storeErr("mark conversation read", res.Error)
	}
	if res.RowsAffected > 0 {
		s.bus.Publish(userID, realtime.Event{Table: "messages", ID: 0})
	}
	return nil
}

// ListConversations scans the user's messages newest-first, groups them by
// counterpart and resolves each counterpart's profile. The result is sorted
// by last-message time descending; a counterpart with no messages cannot
// appear since groups only exist where messages do.
func (s *MessagingService) ListConversations(userID uint) ([]Conversation, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	var messages []models.Message
	if err := s.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").Find(&messages).Error; err != nil {
		return nil, storeErr("list conversations", err)
	}

	grouped := make(map[uint]*Conversation)
	order := make([]uint, 0)
	for _, message := range messages {
		counterpartID := message.SenderID
		if counterpartID == userID {
			counterpartID = message.ReceiverID
		}
		conv, seen := grouped[counterpartID]
		if !seen {
			// first hit under a newest-first scan is the latest message
			conv = &Conversation{LastMessage: message}
			grouped[counterpartID] = conv
			order = append(order, counterpartID)
		}
		if message.ReceiverID == userID && !message.Read {
			conv.UnreadCount++
		}
	}

	if len(order) == 0 {
		return []Conversation{}, nil
	}

	var counterparts []models.User
	if err := s.db.Where("id IN ?", order).Find(&counterparts).Error; err != nil {
		return nil, storeErr("list conversations", err)
	}
	byID := make(map[uint]models.User, len(counterparts))
	for _, u := range counterparts {
		byID[u.ID] = u
	}

	conversations := make([]Conversation, 0, len(order))
	for _, id := range order {
		conv := grouped[id]
		conv.Counterpart = byID[id]
		conversations = append(conversations, *conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})

	return conversations, nil
}

// ConversationMessages returns both directions of one thread in stable
// chronological order for rendering
func (s *MessagingService) ConversationMessages(userID, counterpartID uint) ([]models.Message, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	var messages []models.Message
	if err := s.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, counterpartID, counterpartID, userID).
		Order("created_at ASC, id ASC").Find(&messages).Error; err != nil {
		return nil, storeErr("conversation messages", err)
	}
	return messages, nil
}
