package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rentline-server/models"
	"rentline-server/realtime"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory database migrated with the full
// schema. TranslateError matches the production connection so unique
// violations surface as gorm.ErrDuplicatedKey here too.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Application{},
		&models.Message{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, firstName, role string) *models.User {
	t.Helper()
	user := models.User{
		FirstName: firstName,
		LastName:  "Test",
		Email:     fmt.Sprintf("%s-%s@example.com", firstName, t.Name()),
		Role:      role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedProperty(t *testing.T, db *gorm.DB, ownerID uint, title string) *models.Property {
	t.Helper()
	property := models.Property{
		OwnerID:     ownerID,
		Title:       title,
		City:        "Lisbon",
		Country:     "PT",
		MonthlyRent: 1200,
		Currency:    "EUR",
		Status:      models.PropertyAvailable,
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return &property
}

func contextWithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 2*time.Second)
}

// newTestServices wires the service graph the way main does, with an
// in-memory bus and no push sender
func newTestServices(db *gorm.DB) (*ApplicationService, *MessagingService, *realtime.MemoryBus) {
	bus := realtime.NewMemoryBus()
	messaging := NewMessagingService(db, bus)
	notifier := NewNotifier(db, messaging, nil)
	applications := NewApplicationService(db, notifier, bus)
	return applications, messaging, bus
}
