package services

import (
	"fmt"
	"log"

	"rentline-server/models"

	"gorm.io/gorm"
)

// Notifier translates application-lifecycle transitions into system-authored
// messages (and a push, when the receiver allows them). It holds no state of
// its own, and its failures never unwind the transition that triggered it:
// the application row is the source of truth, the notification is
// best-effort.
type Notifier struct {
	db        *gorm.DB
	messaging *MessagingService
	push      *PushService
}

func NewNotifier(db *gorm.DB, messaging *MessagingService, push *PushService) *Notifier {
	return &Notifier{db: db, messaging: messaging, push: push}
}

// ApplicationSubmitted tells the property owner a new application arrived
func (n *Notifier) ApplicationSubmitted(application *models.Application, property *models.Property) {
	body := fmt.Sprintf("New application for %s", property.Title)
	var applicant models.User
	if err := n.db.First(&applicant, application.ApplicantID).Error; err == nil {
		body = fmt.Sprintf("New application from %s for %s", applicant.FullName(), property.Title)
	}
	propertyID := property.ID

	if _, err := n.messaging.SendSystem(application.ApplicantID, property.OwnerID, body, &propertyID); err != nil {
		log.Printf("notifier: application %d submitted message failed: %v", application.ID, err)
	}
	if n.push != nil {
		n.push.SendToUser(property.OwnerID, "New application", body, map[string]string{
			"type":       "application_submitted",
			"id":         fmt.Sprintf("%d", application.ID),
			"propertyId": fmt.Sprintf("%d", property.ID),
		})
	}
}

// ApplicationDecided tells the applicant the owner's decision
func (n *Notifier) ApplicationDecided(application *models.Application, property *models.Property, status string) {
	body := fmt.Sprintf("Your application for %s was %s", property.Title, status)
	propertyID := property.ID

	if _, err := n.messaging.SendSystem(property.OwnerID, application.ApplicantID, body, &propertyID); err != nil {
		log.Printf("notifier: application %d decision message failed: %v", application.ID, err)
	}
	if n.push != nil {
		n.push.SendToUser(application.ApplicantID, "Application "+status, body, map[string]string{
			"type":       "application_decided",
			"id":         fmt.Sprintf("%d", application.ID),
			"propertyId": fmt.Sprintf("%d", property.ID),
		})
	}
}
