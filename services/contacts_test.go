package services

import (
	"testing"

	"rentline-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactIDs(contacts []models.User) []uint {
	ids := make([]uint, 0, len(contacts))
	for _, c := range contacts {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestContactsForRenter(t *testing.T) {
	db := setupTestDB(t)
	apps, messaging, _ := newTestServices(db)
	contacts := NewContactsService(db)

	renter := seedUser(t, db, "Rui", models.RoleRenter)
	lena := seedUser(t, db, "Lena", models.RoleLandlord)
	sam := seedUser(t, db, "Sam", models.RoleLandlord)
	uninvolved := seedUser(t, db, "Nia", models.RoleLandlord)

	lenaFlat := seedProperty(t, db, lena.ID, "Lena's flat")
	seedProperty(t, db, uninvolved.ID, "Nia's flat")

	// applied to Lena's property, messaged Sam directly
	_, err := apps.Submit(renter.ID, lenaFlat.ID, nil, "")
	require.NoError(t, err)
	_, err = messaging.Send(renter.ID, sam.ID, "Is the studio free?", nil)
	require.NoError(t, err)

	result, err := contacts.ContactsFor(renter)
	require.NoError(t, err)

	ids := contactIDs(result)
	assert.Contains(t, ids, lena.ID)
	assert.Contains(t, ids, sam.ID)
	assert.NotContains(t, ids, uninvolved.ID)
}

func TestContactsForLandlord(t *testing.T) {
	db := setupTestDB(t)
	apps, messaging, _ := newTestServices(db)
	contacts := NewContactsService(db)

	lena := seedUser(t, db, "Lena", models.RoleLandlord)
	rui := seedUser(t, db, "Rui", models.RoleRenter)
	ana := seedUser(t, db, "Ana", models.RoleRenter)
	uninvolved := seedUser(t, db, "Nia", models.RoleRenter)

	flat := seedProperty(t, db, lena.ID, "Lena's flat")

	_, err := apps.Submit(rui.ID, flat.ID, nil, "")
	require.NoError(t, err)
	_, err = messaging.Send(ana.ID, lena.ID, "Any viewings this week?", nil)
	require.NoError(t, err)

	result, err := contacts.ContactsFor(lena)
	require.NoError(t, err)

	ids := contactIDs(result)
	assert.Contains(t, ids, rui.ID)
	assert.Contains(t, ids, ana.ID)
	assert.NotContains(t, ids, uninvolved.ID)
}

func TestContactsUnauthenticated(t *testing.T) {
	db := setupTestDB(t)
	contacts := NewContactsService(db)

	_, err := contacts.ContactsFor(nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = contacts.ContactsFor(&models.User{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
