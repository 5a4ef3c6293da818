package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrSeatTaken is returned when another client holds an unexpired seat.
	ErrSeatTaken = errors.New("the seat is taken")
	// ErrInvalidToken is returned for tokens that fail signature or expiry checks.
	ErrInvalidToken = errors.New("invalid seat token")
	// ErrSeatRevoked is returned for a valid token whose seat was taken over.
	ErrSeatRevoked = errors.New("seat was taken over by another client")
)

// Seat is one claim on the controller seat.
type Seat struct {
	ID        string
	Token     string
	ExpiresAt time.Time
}

// SeatService hands out the single controller seat as signed tokens.
type SeatService interface {
	Claim(ctx context.Context, force bool) (Seat, error)
	Verify(token string) (string, error)
	Release(ctx context.Context, seatID string) error
	IsCurrent(seatID string) bool
}

type seatService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	current string
	expires time.Time
}

// NewSeatService creates a SeatService signing HS256 tokens with secret.
func NewSeatService(secret []byte, ttl time.Duration) SeatService {
	return &seatService{secret: secret, ttl: ttl, now: time.Now}
}

// Claim issues a new seat. Without force it fails while another seat is live.
func (s *seatService) Claim(ctx context.Context, force bool) (Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.current != "" && now.Before(s.expires) && !force {
		return Seat{}, ErrSeatTaken
	}

	seat := Seat{
		ID:        uuid.NewString(),
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": seat.ID,
		"iat": now.Unix(),
		"exp": seat.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Seat{}, fmt.Errorf("failed to sign seat token: %w", err)
	}
	seat.Token = signed

	if s.current != "" {
		slog.InfoContext(ctx, "Seat taken over", "seat.previous", s.current, "seat.id", seat.ID)
	}
	s.current = seat.ID
	s.expires = seat.ExpiresAt
	return seat, nil
}

// Verify checks the token and returns its seat id when the seat is still
// current.
func (s *seatService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	seatID, err := token.Claims.GetSubject()
	if err != nil || seatID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if !s.IsCurrent(seatID) {
		return "", ErrSeatRevoked
	}
	return seatID, nil
}

// Release frees the seat if seatID holds it.
func (s *seatService) Release(ctx context.Context, seatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != seatID {
		return ErrSeatRevoked
	}
	s.current = ""
	s.expires = time.Time{}
	slog.InfoContext(ctx, "Seat released", "seat.id", seatID)
	return nil
}

// IsCurrent reports whether seatID holds the seat and has not expired.
func (s *seatService) IsCurrent(seatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seatID != "" && seatID == s.current && s.now().Before(s.expires)
}
