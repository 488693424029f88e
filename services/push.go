package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"rentline-server/models"

	"gorm.io/gorm"
)

const expoPushURL = "https://exp.host/--/api/v2/push/send"

// PushService delivers mobile push notifications through the Expo push API.
// Every send is best-effort: failures are logged and reported, never
// propagated into the transition that triggered them.
type PushService struct {
	db     *gorm.DB
	client *http.Client
}

func NewPushService(db *gorm.DB) *PushService {
	return &PushService{
		db:     db,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type expoPushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

// userPushTokens loads the push tokens of a user that allows notifications
func (ps *PushService) userPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := ps.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, nil
	}
	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("unmarshal push tokens: %w", err)
	}
	return tokens, nil
}

// SendToUser pushes to every registered device of the user
func (ps *PushService) SendToUser(userID uint, title, body string, data map[string]string) {
	tokens, err := ps.userPushTokens(userID)
	if err != nil {
		log.Printf("push: tokens for user %d: %v", userID, err)
		return
	}
	for _, token := range tokens {
		if err := ps.send(token, title, body, data); err != nil {
			log.Printf("push: send to token %s: %v", token, err)
		}
	}
}

func (ps *PushService) send(token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(expoPushMessage{
		To:    token,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	res, err := ps.client.Post(expoPushURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("expo push returned %s", res.Status)
	}
	return nil
}
