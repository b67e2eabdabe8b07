package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

var errBadPassword = errors.New("bad password")

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, email, password string) (*models.User, error) {
	if password == "wrong" {
		return nil, errBadPassword
	}
	return &models.User{ID: "u-" + email, Email: email, DisplayName: "Reader", PasswordHash: "hash"}, nil
}

func (stubAuth) Signup(ctx context.Context, displayName, username, email, password string) (*models.User, error) {
	return &models.User{ID: "new", Email: email, Username: username, DisplayName: displayName}, nil
}

type brokenSlot struct {
	MemorySlot
	cleared bool
}

func (b *brokenSlot) Load(ctx context.Context) (*models.User, error) {
	return nil, errors.New("corrupt")
}

func (b *brokenSlot) Clear(ctx context.Context) error {
	b.cleared = true
	return nil
}

func TestManagerStartsLoading(t *testing.T) {
	m := NewManager(NewMemorySlot(), stubAuth{}, zerolog.Nop())
	assert.Equal(t, StateAnonymousLoading, m.Current().State)
	assert.False(t, m.Current().IsAuthenticated())
}

func TestRestoreEmptySlotIsAnonymous(t *testing.T) {
	m := NewManager(NewMemorySlot(), stubAuth{}, zerolog.Nop())
	s := m.Restore(context.Background())
	assert.Equal(t, StateAnonymous, s.State)
	assert.Empty(t, s.UserID())
}

func TestRestoreCorruptSlotClearsIt(t *testing.T) {
	slot := &brokenSlot{}
	m := NewManager(slot, stubAuth{}, zerolog.Nop())
	s := m.Restore(context.Background())
	assert.Equal(t, StateAnonymous, s.State)
	assert.True(t, slot.cleared)
}

func TestLoginPersistsWithoutHash(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	m := NewManager(slot, stubAuth{}, zerolog.Nop())

	s, err := m.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "u-a@b.c", s.UserID())

	stored, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-a@b.c", stored.ID)
	assert.Empty(t, stored.PasswordHash)

	// a fresh manager over the same slot comes back signed in
	again := NewManager(slot, stubAuth{}, zerolog.Nop()).Restore(ctx)
	assert.Equal(t, StateAuthenticated, again.State)
}

func TestLoginFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemorySlot(), stubAuth{}, zerolog.Nop())
	m.Restore(ctx)

	s, err := m.Login(ctx, "a@b.c", "wrong")
	assert.ErrorIs(t, err, errBadPassword)
	assert.Equal(t, StateAnonymous, s.State)
}

func TestLogoutClearsSlot(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	m := NewManager(slot, stubAuth{}, zerolog.Nop())

	_, err := m.Signup(ctx, "Jane", "jane", "jane@x.io", "pw")
	require.NoError(t, err)

	s, err := m.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, s.State)

	_, err = slot.Load(ctx)
	assert.ErrorIs(t, err, ErrEmptySlot)
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemorySlot(), stubAuth{}, zerolog.Nop())
	s, err := m.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	s.User.DisplayName = "changed"
	assert.Equal(t, "Reader", m.Current().User.DisplayName)
}

func TestBadgerSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot, err := OpenInMemoryBadgerSlot()
	require.NoError(t, err)
	defer slot.Close()

	_, err = slot.Load(ctx)
	assert.ErrorIs(t, err, ErrEmptySlot)

	require.NoError(t, slot.Save(ctx, &models.User{ID: "42", DisplayName: "Ada"}))
	u, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.DisplayName)

	require.NoError(t, slot.Clear(ctx))
	_, err = slot.Load(ctx)
	assert.ErrorIs(t, err, ErrEmptySlot)
}

func TestBadgerSlotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	slot, err := OpenBadgerSlot(dir, zerolog.Nop())
	require.NoError(t, err)
	m := NewManager(slot, stubAuth{}, zerolog.Nop())
	_, err = m.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, slot.Close())

	reopened, err := OpenBadgerSlot(dir, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	s := NewManager(reopened, stubAuth{}, zerolog.Nop()).Restore(ctx)
	assert.Equal(t, StateAuthenticated, s.State)
	assert.Equal(t, "u-ada@example.com", s.UserID())
}

func TestCookieSlotAcrossRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret-for-tests"))))
	r.POST("/login", func(c *gin.Context) {
		m := NewManager(NewCookieSlot(sessions.Default(c)), stubAuth{}, zerolog.Nop())
		if _, err := m.Login(c.Request.Context(), "c@d.e", "pw"); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", func(c *gin.Context) {
		s := NewManager(NewCookieSlot(sessions.Default(c)), stubAuth{}, zerolog.Nop()).Restore(c.Request.Context())
		c.String(http.StatusOK, s.UserID())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-c@d.e", w.Body.String())

	// without the cookie the visitor is anonymous
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Empty(t, w.Body.String())
}
