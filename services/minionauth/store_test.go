package minionauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/minionworks/authrelay/lib/mystore"
	"github.com/minionworks/authrelay/lib/mytime"
	"github.com/minionworks/authrelay/services/minionauth/exchanger"
)

func TestSessionStore(t *testing.T) {
	c := context.TODO()

	t.Run("Create and get pending session", func(t *testing.T) {
		sessionStore, nower, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		err := sessionStore.Create(c, "abc123", "minion-1", "31612345678", PlatformWhatsApp)
		assert.NoError(t, err)

		// then
		session, exists, err := sessionStore.Get(c, "abc123")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, StatusPending, session.Status)
		assert.Equal(t, "minion-1", session.MinionID)
		assert.Equal(t, "31612345678", session.ChatID)
		assert.Equal(t, PlatformWhatsApp, session.ChatPlatform)
		assert.Equal(t, mytime.ExampleTime, session.CreatedAt)
		assert.Nil(t, session.Tokens)
	})

	t.Run("Get unknown session", func(t *testing.T) {
		sessionStore, _, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// when
		_, exists, err := sessionStore.Get(c, "doesnotexist")

		// then
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Complete pending session", func(t *testing.T) {
		sessionStore, nower, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		err := sessionStore.Create(c, "abc123", "minion-1", "31612345678", PlatformWhatsApp)
		assert.NoError(t, err)

		// when
		found, applied, err := sessionStore.Complete(c, "abc123", exampleTokens(), exampleUserInfo())

		// then
		assert.NoError(t, err)
		assert.True(t, found)
		assert.True(t, applied)
		session, exists, err := sessionStore.Get(c, "abc123")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, StatusCompleted, session.Status)
		assert.Equal(t, "ya29.token", session.Tokens.AccessToken)
		assert.Equal(t, "user@example.com", session.UserInfo.Email)
	})

	t.Run("Complete unknown session", func(t *testing.T) {
		sessionStore, _, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// when
		found, applied, err := sessionStore.Complete(c, "doesnotexist", exampleTokens(), exampleUserInfo())

		// then
		assert.NoError(t, err)
		assert.False(t, found)
		assert.False(t, applied)
	})

	t.Run("Fail pending session", func(t *testing.T) {
		sessionStore, nower, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		err := sessionStore.Create(c, "abc123", "minion-1", "31612345678", PlatformTelegram)
		assert.NoError(t, err)

		// when
		found, applied, err := sessionStore.Fail(c, "abc123", "access_denied")

		// then
		assert.NoError(t, err)
		assert.True(t, found)
		assert.True(t, applied)
		session, _, err := sessionStore.Get(c, "abc123")
		assert.NoError(t, err)
		assert.Equal(t, StatusFailed, session.Status)
		assert.Equal(t, "access_denied", session.Error)
	})

	t.Run("Fail does not overwrite completed session", func(t *testing.T) {
		sessionStore, nower, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		err := sessionStore.Create(c, "abc123", "minion-1", "31612345678", PlatformWhatsApp)
		assert.NoError(t, err)
		found, applied, err := sessionStore.Complete(c, "abc123", exampleTokens(), exampleUserInfo())
		assert.NoError(t, err)
		assert.True(t, found)
		assert.True(t, applied)

		// when
		found, applied, err = sessionStore.Fail(c, "abc123", "access_denied")

		// then
		assert.NoError(t, err)
		assert.True(t, found)
		assert.False(t, applied)
		session, _, err := sessionStore.Get(c, "abc123")
		assert.NoError(t, err)
		assert.Equal(t, StatusCompleted, session.Status)
		assert.Equal(t, "", session.Error)
		assert.Equal(t, "ya29.token", session.Tokens.AccessToken)
	})

	t.Run("Complete does not overwrite failed session", func(t *testing.T) {
		sessionStore, nower, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		err := sessionStore.Create(c, "abc123", "minion-1", "31612345678", PlatformWhatsApp)
		assert.NoError(t, err)
		found, applied, err := sessionStore.Fail(c, "abc123", "access_denied")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.True(t, applied)

		// when
		found, applied, err = sessionStore.Complete(c, "abc123", exampleTokens(), exampleUserInfo())

		// then
		assert.NoError(t, err)
		assert.True(t, found)
		assert.False(t, applied)
		session, _, err := sessionStore.Get(c, "abc123")
		assert.NoError(t, err)
		assert.Equal(t, StatusFailed, session.Status)
		assert.Equal(t, "access_denied", session.Error)
		assert.Nil(t, session.Tokens)
	})

	t.Run("Sweep removes expired sessions", func(t *testing.T) {
		sessionStore, nower, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		err := sessionStore.Create(c, "old", "minion-1", "31612345678", PlatformWhatsApp)
		assert.NoError(t, err)
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(4 * time.Minute))
		err = sessionStore.Create(c, "fresh", "minion-2", "31687654321", PlatformTelegram)
		assert.NoError(t, err)

		// when: six minutes after the first session was created
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(6 * time.Minute))
		removed, err := sessionStore.Sweep(c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, 1, removed)
		_, exists, err := sessionStore.Get(c, "old")
		assert.NoError(t, err)
		assert.False(t, exists)
		_, exists, err = sessionStore.Get(c, "fresh")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Sweep removes sessions regardless of status", func(t *testing.T) {
		sessionStore, nower, ctrl := newStore(t, c)
		defer ctrl.Finish()

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		err := sessionStore.Create(c, "done", "minion-1", "31612345678", PlatformWhatsApp)
		assert.NoError(t, err)
		_, _, err = sessionStore.Complete(c, "done", exampleTokens(), exampleUserInfo())
		assert.NoError(t, err)

		// when
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(10 * time.Minute))
		removed, err := sessionStore.Sweep(c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, 1, removed)
		_, exists, err := sessionStore.Get(c, "done")
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func newStore(t *testing.T, c context.Context) (*SessionStore, *mytime.MockNower, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	nower := mytime.NewMockNower(ctrl)
	store, _, err := mystore.NewInMemoryStore[AuthSession](c)
	assert.NoError(t, err)

	return newSessionStore(store, nower, DefaultRetention, DefaultSweepInterval), nower, ctrl
}

func exampleTokens() exchanger.TokenSet {
	return exchanger.TokenSet{
		AccessToken:  "ya29.token",
		RefreshToken: "1//refresh",
		ExpiresIn:    3599,
		TokenType:    "Bearer",
		Scope:        "openid email profile",
	}
}

func exampleUserInfo() exchanger.UserInfo {
	return exchanger.UserInfo{
		Email: "user@example.com",
		Name:  "Demo User",
	}
}
