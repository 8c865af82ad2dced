package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/internal/testutil"
	"github.com/Skotchmaster/agriconnect/pkg/hash"
	"github.com/Skotchmaster/agriconnect/pkg/registry"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type sentEvent struct {
	Topic string
	Key   string
	Event Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	ev, _ := event.(Event)
	f.events = append(f.events, sentEvent{Topic: topic, Key: key, Event: ev})
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Event.Type
	}
	return out
}

type fixture struct {
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Store  *registry.MemoryStore
	Issuer *tokens.Issuer
	Hasher *hash.Hasher
	Events *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.InitTestDB(t)
	return &fixture{
		DB:     db,
		Repo:   repo.New(db),
		Store:  registry.NewMemoryStore(),
		Issuer: tokens.NewIssuer([]byte("access-secret"), []byte("refresh-secret"), time.Hour, 14*24*time.Hour, "1h"),
		Hasher: hash.NewHasher(bcrypt.MinCost),
		Events: &fakePublisher{},
	}
}

func (f *fixture) auth() *AuthService {
	return &AuthService{Principals: f.Repo, Issuer: f.Issuer, Hasher: f.Hasher, Registry: f.Store, Events: f.Events}
}

func (f *fixture) orders() *OrderService {
	return &OrderService{Repo: f.Repo, Events: f.Events}
}

func claimsFor(sub string, role tokens.Role) *tokens.Claims {
	c := &tokens.Claims{Role: role}
	c.Subject = sub
	return c
}

// message returns the client-facing text of a service error.
func message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Msg
	}
	return ""
}
