// Package adapter defines the contract every remote reservation system
// implementation has to satisfy. The engine only ever talks to this
// interface; site-specific HTTP details live in the sub-packages.
package adapter

//go:generate go run go.uber.org/mock/mockgen -source=./adapter.go -destination=./mocks/adapter_mock.go -package=mocks

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	siteModel "openrun/internal/domains/site/model"
)

// Business outcomes surfaced by adapters. The engine classifies attempts by
// matching on these with errors.Is, so implementations must wrap them rather
// than invent parallel sentinels.
var (
	ErrSoldOut           = errors.New("seat is sold out")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrRateLimited       = errors.New("rate limited by remote server")
	ErrCaptchaRequired   = errors.New("captcha challenge required")
	ErrSessionExpired    = errors.New("session expired")
)

// Session is an authenticated browsing context on the remote system. The
// cookie jar carries whatever the server handed out at login; adapters attach
// it to every subsequent call made with the session.
type Session struct {
	AccountID string
	Username  string
	Jar       http.CookieJar
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Seat is one bookable unit on a target date as the remote system reports it.
type Seat struct {
	ProductCode string
	Name        string
	Available   bool
}

// Booking is a confirmed reservation.
type Booking struct {
	ReservationNumber string
	ProductCode       string
	TargetDate        string
}

type Client interface {
	// ServerTime reads the remote server's clock without authentication.
	// Implementations must not retry internally; the caller owns sampling.
	ServerTime(ctx context.Context) (serverTime time.Time, err error)
	Login(ctx context.Context, accountID, username, password string) (*Session, error)
	CheckAvailability(ctx context.Context, session *Session, targetDate string) ([]Seat, error)
	Book(ctx context.Context, session *Session, targetDate, productCode string) (*Booking, error)
}

// Factory resolves a Client for a camping site by its site type.
type Factory interface {
	ForSite(site *siteModel.CampingSite) (Client, error)
}
