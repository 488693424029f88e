package services

import (
	"encoding/json"
	"errors"

	"rentline-server/models"
	"rentline-server/realtime"

	"gorm.io/gorm"
)

// ApplicationService owns the rental-application state machine:
// pending -> approved or pending -> rejected, both terminal. Only the owner
// of the referenced property may decide an application.
type ApplicationService struct {
	db       *gorm.DB
	notifier *Notifier
	bus      realtime.Bus
}

func NewApplicationService(db *gorm.DB, notifier *Notifier, bus realtime.Bus) *ApplicationService {
	return &ApplicationService{db: db, notifier: notifier, bus: bus}
}

// Submit creates a pending application and bumps the property's inquiry
// counter in the same transaction. The notification to the owner is
// best-effort: a failure there never unwinds the application row.
func (s *ApplicationService) Submit(applicantID, propertyID uint, documents []string, note string) (*models.Application, error) {
	if applicantID == 0 {
		return nil, ErrUnauthenticated
	}
	if propertyID == 0 {
		return nil, validationErr("propertyID is required")
	}

	var property models.Property
	if err := s.db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("submit application", err)
	}

	// Any prior application for the pair blocks resubmission, rejected ones
	// included. The unique index below is the authoritative guard; this
	// pre-check just returns the friendlier error first.
	var existing int64
	if err := s.db.Model(&models.Application{}).
		Where("applicant_id = ? AND property_id = ?", applicantID, propertyID).
		Count(&existing).Error; err != nil {
		return nil, storeErr("submit application", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateApplication
	}

	docs, _ := json.Marshal(documents)
	application := models.Application{
		ApplicantID: applicantID,
		PropertyID:  propertyID,
		Status:      models.ApplicationPending,
		Documents:   docs,
		Note:        note,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			return err
		}
		return tx.Model(&models.Property{}).
			Where("id = ?", propertyID).
			UpdateColumn("inquiry_count", gorm.Expr("inquiry_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateApplication
		}
		return nil, storeErr("submit application", err)
	}

	s.notifier.ApplicationSubmitted(&application, &property)
	s.bus.Publish(property.OwnerID, realtime.Event{Table: "applications", ID: application.ID})
	s.bus.Publish(applicantID, realtime.Event{Table: "applications", ID: application.ID})

	return &application, nil
}

// UpdateStatus decides a pending application. Approval also flips the
// property to pending; that write is sequenced before the notification so
// the "approved" message never races ahead of the observable property state.
func (s *ApplicationService) UpdateStatus(actorID, applicationID uint, newStatus string) (*models.Application, error) {
	if actorID == 0 {
		return nil, ErrUnauthenticated
	}
	if newStatus != models.ApplicationApproved && newStatus != models.ApplicationRejected {
		return nil, validationErr("status must be approved or rejected")
	}

	var application models.Application
	if err := s.db.Preload("Property").First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("update application status", err)
	}

	if application.Property.OwnerID != actorID {
		return nil, ErrUnauthorized
	}
	if application.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// the status predicate makes a concurrent decision lose cleanly
		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", applicationID, models.ApplicationPending).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		if newStatus == models.ApplicationApproved {
			return tx.Model(&models.Property{}).
				Where("id = ?", application.PropertyID).
				Update("status", models.PropertyPending).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil, ErrInvalidTransition
		}
		return nil, storeErr("update application status", err)
	}

	application.Status = newStatus
	if newStatus == models.ApplicationApproved {
		application.Property.Status = models.PropertyPending
	}

	s.notifier.ApplicationDecided(&application, &application.Property, newStatus)
	s.bus.Publish(application.ApplicantID, realtime.Event{Table: "applications", ID: application.ID})
	s.bus.Publish(actorID, realtime.Event{Table: "applications", ID: application.ID})

	return &application, nil
}

// ListForApplicant returns the renter's applications, newest first
func (s *ApplicationService) ListForApplicant(applicantID uint) ([]models.Application, error) {
	if applicantID == 0 {
		return nil, ErrUnauthenticated
	}
	var applications []models.Application
	if err := s.db.Preload("Property").
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		return nil, storeErr("list applications", err)
	}
	return applications, nil
}

// ListForOwner returns all applications against the landlord's properties
func (s *ApplicationService) ListForOwner(ownerID uint) ([]models.Application, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}
	var applications []models.Application
	if err := s.db.Preload("Property").Preload("Applicant").
		Joins("JOIN properties ON properties.id = applications.property_id").
		Where("properties.owner_id = ?", ownerID).
		Order("applications.created_at DESC").Find(&applications).Error; err != nil {
		return nil, storeErr("list applications", err)
	}
	return applications, nil
}
