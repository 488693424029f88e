package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	OwnerID      uint    `json:"ownerID" gorm:"index"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	PropertyType string  `json:"propertyType"` // apartment, house, studio, room
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Country      string  `json:"country"`
	Lat          float32 `json:"lat"`
	Lng          float32 `json:"lng"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float32 `json:"bathrooms"`
	MonthlyRent  float32 `json:"monthlyRent"`
	Currency     string  `json:"currency"`
	Images       string  `json:"images"` // JSON array of URLs
	// available until an application is approved; pending only ever set by
	// the approval flow, never directly by a renter
	Status       string `json:"status" gorm:"type:varchar(20);default:available;index"` // available, pending, rented
	InquiryCount int    `json:"inquiryCount" gorm:"default:0"`
	ViewCount    int    `json:"viewCount" gorm:"default:0"`
	Owner        User   `json:"owner" gorm:"foreignKey:OwnerID;references:ID"`
}

const (
	PropertyAvailable = "available"
	PropertyPending   = "pending"
	PropertyRented    = "rented"
)

// Custom JSON marshaling to convert the Images string to an array
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images []string `json:"images"`
		Owner  *User    `json:"owner,omitempty"`
		*Alias
	}{
		Images: []string{},
		Alias:  (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}

	// Only include owner if loaded; strip its Properties to avoid a
	// circular reference
	if p.Owner.ID > 0 {
		ownerCopy := p.Owner
		ownerCopy.Properties = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}
