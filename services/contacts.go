package services

import (
	"rentline-server/models"

	"gorm.io/gorm"
)

// ContactsService resolves who a user can start a conversation with. The
// query shape differs per role, so each role gets its own function returning
// the same []User shape instead of one branched query.
type ContactsService struct {
	db *gorm.DB
}

func NewContactsService(db *gorm.DB) *ContactsService {
	return &ContactsService{db: db}
}

// ContactsFor dispatches on the user's role
func (s *ContactsService) ContactsFor(user *models.User) ([]models.User, error) {
	if user == nil || user.ID == 0 {
		return nil, ErrUnauthenticated
	}
	switch user.Role {
	case models.RoleLandlord:
		return s.contactsForLandlord(user.ID)
	default:
		return s.contactsForRenter(user.ID)
	}
}

// contactsForRenter: owners of properties the renter applied to, plus anyone
// the renter already has a thread with
func (s *ContactsService) contactsForRenter(renterID uint) ([]models.User, error) {
	var contacts []models.User
	err := s.db.
		Where("id IN (?)",
			s.db.Model(&models.Property{}).Select("properties.owner_id").
				Joins("JOIN applications ON applications.property_id = properties.id").
				Where("applications.applicant_id = ?", renterID)).
		Or("id IN (?)",
			s.db.Model(&models.Message{}).Select("sender_id").Where("receiver_id = ?", renterID)).
		Or("id IN (?)",
			s.db.Model(&models.Message{}).Select("receiver_id").Where("sender_id = ?", renterID)).
		Find(&contacts).Error
	if err != nil {
		return nil, storeErr("contacts for renter", err)
	}
	return contacts, nil
}

// contactsForLandlord: applicants against the landlord's properties, plus
// existing threads
func (s *ContactsService) contactsForLandlord(landlordID uint) ([]models.User, error) {
	var contacts []models.User
	err := s.db.
		Where("id IN (?)",
			s.db.Model(&models.Application{}).Select("applications.applicant_id").
				Joins("JOIN properties ON properties.id = applications.property_id").
				Where("properties.owner_id = ?", landlordID)).
		Or("id IN (?)",
			s.db.Model(&models.Message{}).Select("sender_id").Where("receiver_id = ?", landlordID)).
		Or("id IN (?)",
			s.db.Model(&models.Message{}).Select("receiver_id").Where("sender_id = ?", landlordID)).
		Find(&contacts).Error
	if err != nil {
		return nil, storeErr("contacts for landlord", err)
	}
	return contacts, nil
}
