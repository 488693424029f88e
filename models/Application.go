package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Application is a renter's request to occupy a property, decided by the
// property owner. The composite unique index is the authoritative guard
// against duplicate submissions; the service-level check only exists to
// return a friendlier error before hitting the constraint.
type Application struct {
	gorm.Model
	ApplicantID uint           `json:"applicantID" gorm:"not null;uniqueIndex:idx_applicant_property"`
	PropertyID  uint           `json:"propertyID" gorm:"not null;uniqueIndex:idx_applicant_property"`
	Status      string         `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, approved, rejected
	Documents   datatypes.JSON `json:"documents"`                                            // array of storage refs
	Note        string         `json:"note" gorm:"type:text"`
	Applicant   User           `json:"applicant" gorm:"foreignKey:ApplicantID;references:ID"`
	Property    Property       `json:"property" gorm:"foreignKey:PropertyID;references:ID"`
}

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// IsTerminal reports whether no further status change is permitted
func (a *Application) IsTerminal() bool {
	return a.Status == ApplicationApproved || a.Status == ApplicationRejected
}
