package storage

import (
	"context"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

// Session keeps values inside the scs session of the request, so the cart
// lives exactly as long as the browser session does.
type Session struct {
	sm *scs.SessionManager
}

func NewSession(sm *scs.SessionManager) *Session {
	return &Session{sm: sm}
}

func (s *Session) GetItem(ctx context.Context, name string) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading session item %q: %v", name, r)
		}
	}()

	return s.sm.GetBytes(ctx, name), nil
}

func (s *Session) SetItem(ctx context.Context, name string, value []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("writing session item %q: %v", name, r)
		}
	}()

	s.sm.Put(ctx, name, value)
	return nil
}

func (s *Session) RemoveItem(ctx context.Context, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("removing session item %q: %v", name, r)
		}
	}()

	s.sm.Remove(ctx, name)
	return nil
}
