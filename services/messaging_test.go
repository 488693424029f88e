package services

import (
	"testing"
	"time"

	"rentline-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendValidation(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, _ := newTestServices(db)

	renter := seedUser(t, db, "Rui", models.RoleRenter)
	landlord := seedUser(t, db, "Lena", models.RoleLandlord)

	_, err := messaging.Send(renter.ID, landlord.ID, "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = messaging.Send(renter.ID, renter.ID, "hello me", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = messaging.Send(renter.ID, 9999, "anyone there?", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = messaging.Send(0, landlord.ID, "hello", nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	message, err := messaging.Send(renter.ID, landlord.ID, "  Is this available?  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Is this available?", message.Body)
	assert.False(t, message.Read)
	assert.Equal(t, models.MessageKindUser, message.Kind)
}

func TestFirstContactConversation(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, _ := newTestServices(db)

	renter := seedUser(t, db, "Rui", models.RoleRenter)
	landlord := seedUser(t, db, "Lena", models.RoleLandlord)

	_, err := messaging.Send(renter.ID, landlord.ID, "Is this available?", nil)
	require.NoError(t, err)

	conversations, err := messaging.ListConversations(landlord.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, renter.ID, conversations[0].Counterpart.ID)
	assert.Equal(t, 1, conversations[0].UnreadCount)
	assert.Equal(t, "Is this available?", conversations[0].LastMessage.Body)
}

func TestListConversationsGroupingAndUnread(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, _ := newTestServices(db)

	me := seedUser(t, db, "Rui", models.RoleRenter)
	lena := seedUser(t, db, "Lena", models.RoleLandlord)
	sam := seedUser(t, db, "Sam", models.RoleLandlord)

	mustSend := func(from, to uint, body string) *models.Message {
		m, err := messaging.Send(from, to, body, nil)
		require.NoError(t, err)
		return m
	}

	mustSend(me.ID, lena.ID, "hi lena")
	mustSend(lena.ID, me.ID, "hello")
	mustSend(lena.ID, me.ID, "still interested?")
	first := mustSend(sam.ID, me.ID, "about the studio")

	// push sam's thread to the most recent activity
	db.Model(first).Update("created_at", time.Now().Add(time.Second))

	conversations, err := messaging.ListConversations(me.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// sorted by last-message time, most recent first
	assert.Equal(t, sam.ID, conversations[0].Counterpart.ID)
	assert.Equal(t, 1, conversations[0].UnreadCount)
	assert.Equal(t, lena.ID, conversations[1].Counterpart.ID)
	assert.Equal(t, 2, conversations[1].UnreadCount)
	assert.Equal(t, "still interested?", conversations[1].LastMessage.Body)

	// unread counts only cover messages the user received
	lenaSide, err := messaging.ListConversations(lena.ID)
	require.NoError(t, err)
	require.Len(t, lenaSide, 1)
	assert.Equal(t, 1, lenaSide[0].UnreadCount)
}

func TestListConversationsEmpty(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, _ := newTestServices(db)

	loner := seedUser(t, db, "Rui", models.RoleRenter)

	conversations, err := messaging.ListConversations(loner.ID)
	require.NoError(t, err)
	assert.Empty(t, conversations)
}

func TestMarkAsRead(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, _ := newTestServices(db)

	renter := seedUser(t, db, "Rui", models.RoleRenter)
	landlord := seedUser(t, db, "Lena", models.RoleLandlord)

	message, err := messaging.Send(renter.ID, landlord.ID, "hello", nil)
	require.NoError(t, err)

	// only the receiver can mark it
	assert.ErrorIs(t, messaging.MarkAsRead(renter.ID, message.ID), ErrUnauthorized)

	require.NoError(t, messaging.MarkAsRead(landlord.ID, message.ID))
	// idempotent
	require.NoError(t, messaging.MarkAsRead(landlord.ID, message.ID))

	var reloaded models.Message
	require.NoError(t, db.First(&reloaded, message.ID).Error)
	assert.True(t, reloaded.Read)

	assert.ErrorIs(t, messaging.MarkAsRead(landlord.ID, 9999), ErrNotFound)
}

func TestMarkConversationAsReadIdempotent(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, _ := newTestServices(db)

	renter := seedUser(t, db, "Rui", models.RoleRenter)
	landlord := seedUser(t, db, "Lena", models.RoleLandlord)
	other := seedUser(t, db, "Sam", models.RoleLandlord)

	_, err := messaging.Send(renter.ID, landlord.ID, "one", nil)
	require.NoError(t, err)
	_, err = messaging.Send(renter.ID, landlord.ID, "two", nil)
	require.NoError(t, err)
	_, err = messaging.Send(other.ID, landlord.ID, "unrelated", nil)
	require.NoError(t, err)

	require.NoError(t, messaging.MarkConversationAsRead(landlord.ID, renter.ID))

	conversations, err := messaging.ListConversations(landlord.ID)
	require.NoError(t, err)
	for _, conv := range conversations {
		if conv.Counterpart.ID == renter.ID {
			assert.Zero(t, conv.UnreadCount)
		}
		if conv.Counterpart.ID == other.ID {
			assert.Equal(t, 1, conv.UnreadCount, "other threads stay untouched")
		}
	}

	// second call leaves the store in the same state
	require.NoError(t, messaging.MarkConversationAsRead(landlord.ID, renter.ID))

	var unread int64
	db.Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", landlord.ID, renter.ID, false).
		Count(&unread)
	assert.Zero(t, unread)
}

func TestConversationMessagesChronological(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, _ := newTestServices(db)

	renter := seedUser(t, db, "Rui", models.RoleRenter)
	landlord := seedUser(t, db, "Lena", models.RoleLandlord)
	other := seedUser(t, db, "Sam", models.RoleLandlord)

	_, err := messaging.Send(renter.ID, landlord.ID, "first", nil)
	require.NoError(t, err)
	_, err = messaging.Send(landlord.ID, renter.ID, "second", nil)
	require.NoError(t, err)
	_, err = messaging.Send(renter.ID, landlord.ID, "third", nil)
	require.NoError(t, err)
	_, err = messaging.Send(renter.ID, other.ID, "noise", nil)
	require.NoError(t, err)

	thread, err := messaging.ConversationMessages(renter.ID, landlord.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "first", thread[0].Body)
	assert.Equal(t, "second", thread[1].Body)
	assert.Equal(t, "third", thread[2].Body)
}

func TestSendPublishesRefreshSignal(t *testing.T) {
	db := setupTestDB(t)
	_, messaging, bus := newTestServices(db)

	renter := seedUser(t, db, "Rui", models.RoleRenter)
	landlord := seedUser(t, db, "Lena", models.RoleLandlord)

	ctx, cancel := contextWithTimeout(t)
	defer cancel()
	events, stop := bus.Subscribe(ctx, landlord.ID)
	defer stop()

	message, err := messaging.Send(renter.ID, landlord.ID, "ping", nil)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "messages", ev.Table)
		assert.Equal(t, message.ID, ev.ID)
	case <-ctx.Done():
		t.Fatal("no refresh signal delivered")
	}
}
