package models

import (
	"gorm.io/gorm"
)

// Message is a single directed message. Rows are immutable after insert
// except for Read, which only ever flips false -> true.
type Message struct {
	gorm.Model
	SenderID   uint   `json:"senderID" gorm:"not null;index"`
	ReceiverID uint   `json:"receiverID" gorm:"not null;index"`
	Body       string `json:"body" gorm:"type:text"`
	Kind       string `json:"kind" gorm:"type:varchar(10);default:user"` // user, system
	PropertyID *uint  `json:"propertyID" gorm:"index"`                   // optional property context
	Read       bool   `json:"read" gorm:"default:false;index"`
	Sender     User   `json:"sender" gorm:"foreignKey:SenderID;references:ID"`
	Receiver   User   `json:"receiver" gorm:"foreignKey:ReceiverID;references:ID"`
}

const (
	MessageKindUser   = "user"
	MessageKindSystem = "system"
)
