package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-contrib/sessions"

	"inkwell/internal/models"
)

// CookieSlot stores the user as JSON in the request's gin session.
type CookieSlot struct {
	s sessions.Session
}

func NewCookieSlot(s sessions.Session) *CookieSlot {
	return &CookieSlot{s: s}
}

func (c *CookieSlot) Load(ctx context.Context) (*models.User, error) {
	raw, ok := c.s.Get(SlotKey).(string)
	if !ok || raw == "" {
		return nil, ErrEmptySlot
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &u, nil
}

func (c *CookieSlot) Save(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	c.s.Set(SlotKey, string(data))
	return c.s.Save()
}

func (c *CookieSlot) Clear(ctx context.Context) error {
	c.s.Delete(SlotKey)
	return c.s.Save()
}
