// Package scheme holds the identity types and the Scheme value object a
// wizard run is saved under.
package scheme

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyContent reports a blank scheme content.
	ErrEmptyContent = errors.New("scheme: content cannot be empty")
	// ErrEmptyAddress reports a blank scheme address.
	ErrEmptyAddress = errors.New("scheme: address cannot be empty")
	// ErrInvalidID reports an id that is not a UUID.
	ErrInvalidID = errors.New("scheme: invalid id")
)

// ID identifies a scheme.
type ID uuid.UUID

// NewID returns a random scheme id.
func NewID() ID { return ID(uuid.New()) }

// ParseID parses the textual form of an id.
func ParseID(raw string) (ID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q: %v", ErrInvalidID, raw, err)
	}
	return ID(id), nil
}

// MustParseID panics when raw is not a valid id.
func MustParseID(raw string) ID {
	id, err := ParseID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string { return uuid.UUID(id).String() }

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// UserID identifies the owner of a scheme.
type UserID uuid.UUID

// NewUserID returns a random user id.
func NewUserID() UserID { return UserID(uuid.New()) }

// ParseUserID parses the textual form of a user id.
func ParseUserID(raw string) (UserID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return UserID{}, fmt.Errorf("%w: %q: %v", ErrInvalidID, raw, err)
	}
	return UserID(id), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

// Scheme is a saved wizard result owned by a user.
type Scheme struct {
	id        ID
	userID    UserID
	address   string
	content   string
	createdOn time.Time
	updatedOn time.Time
	now       func() time.Time
}

// Option customises a Scheme.
type Option func(*Scheme)

// WithClock overrides the time source for CreatedOn and UpdatedOn.
func WithClock(now func() time.Time) Option {
	return func(s *Scheme) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a scheme. Address and content are trimmed and must not be blank.
func New(id ID, userID UserID, address, content string, opts ...Option) (*Scheme, error) {
	s := &Scheme{id: id, userID: userID, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.setContent(content); err != nil {
		return nil, err
	}
	if err := s.setAddress(address); err != nil {
		return nil, err
	}
	s.createdOn = s.now()
	s.updatedOn = s.createdOn
	return s, nil
}

func (s *Scheme) ID() ID               { return s.id }
func (s *Scheme) UserID() UserID       { return s.userID }
func (s *Scheme) Address() string      { return s.address }
func (s *Scheme) Content() string      { return s.content }
func (s *Scheme) CreatedOn() time.Time { return s.createdOn }
func (s *Scheme) UpdatedOn() time.Time { return s.updatedOn }

// ChangeContent replaces the content. A blank value leaves the scheme untouched.
func (s *Scheme) ChangeContent(content string) error {
	if err := s.setContent(content); err != nil {
		return err
	}
	s.updatedOn = s.now()
	return nil
}

// ChangeAddress replaces the address. A blank value leaves the scheme untouched.
func (s *Scheme) ChangeAddress(address string) error {
	if err := s.setAddress(address); err != nil {
		return err
	}
	s.updatedOn = s.now()
	return nil
}

func (s *Scheme) setContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	s.content = content
	return nil
}

func (s *Scheme) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrEmptyAddress
	}
	s.address = address
	return nil
}
