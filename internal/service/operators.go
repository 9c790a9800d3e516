package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/time/rate"
)

// Argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// maxLoginBuckets bounds the limiter map; idle buckets are pruned past it.
const maxLoginBuckets = 4096

type loginKey struct {
	eventID uuid.UUID
	name    string
}

// loginLimiter keeps one token bucket per (event, operator name), so failed
// attempts against one account never lock out another.
type loginLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	buckets map[loginKey]*rate.Limiter
}

func newLoginLimiter(perMinute int) *loginLimiter {
	return &loginLimiter{
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		buckets: make(map[loginKey]*rate.Limiter),
	}
}

func (l *loginLimiter) allow(key loginKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxLoginBuckets {
			l.prune()
		}
		lim = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = lim
	}
	return lim.Allow()
}

// prune drops buckets that have refilled completely; they behave exactly like
// a fresh one.
func (l *loginLimiter) prune() {
	for k, lim := range l.buckets {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.buckets, k)
		}
	}
}

// OperatorService manages point-of-sale accounts and their login.
type OperatorService struct {
	events    *repository.EventRepository
	operators *repository.OperatorRepository
	limiter   *loginLimiter
}

// NewOperatorService constructs an OperatorService that accepts at most
// loginsPerMinute login attempts per minute for each operator of an event.
func NewOperatorService(
	events *repository.EventRepository,
	operators *repository.OperatorRepository,
	loginsPerMinute int,
) *OperatorService {
	if loginsPerMinute <= 0 {
		loginsPerMinute = 30
	}
	return &OperatorService{
		events:    events,
		operators: operators,
		limiter:   newLoginLimiter(loginsPerMinute),
	}
}

// CreateOperator hashes the password and stores a new operator.
func (s *OperatorService) CreateOperator(ctx context.Context, req model.CreateOperatorRequest) (*model.Operator, error) {
	name := strings.TrimSpace(req.Name)
	role := strings.TrimSpace(req.Role)
	if name == "" {
		return nil, invalid("operator name is required")
	}
	if role == "" {
		return nil, invalid("role is required")
	}
	if req.Password == "" {
		return nil, invalid("password is required")
	}
	if err := requireID(req.EventID, "eventId"); err != nil {
		return nil, err
	}

	hash, salt, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.operators.Create(ctx,
		model.Operator{EventID: req.EventID, Name: name, Role: role},
		model.Credential{PasswordHash: hash, Salt: salt},
	)
}

// ListOperators returns the operators of an existing event.
func (s *OperatorService) ListOperators(ctx context.Context, eventID uuid.UUID) ([]model.Operator, error) {
	if err := requireID(eventID, "eventId"); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.operators.ListByEvent(ctx, eventID)
}

// DeleteOperator removes an operator account.
func (s *OperatorService) DeleteOperator(ctx context.Context, id uuid.UUID) error {
	if err := requireID(id, "operator id"); err != nil {
		return err
	}
	return s.operators.Delete(ctx, id)
}

// Login checks an operator's credentials for one event. Unknown names and
// wrong passwords are indistinguishable to the caller.
func (s *OperatorService) Login(ctx context.Context, req model.LoginRequest) (*model.Operator, error) {
	name := strings.TrimSpace(req.Name)
	if !s.limiter.allow(loginKey{eventID: req.EventID, name: name}) {
		return nil, ErrRateLimited
	}
	if name == "" || req.Password == "" {
		return nil, invalid("name and password are required")
	}
	if err := requireID(req.EventID, "eventId"); err != nil {
		return nil, err
	}

	op, cred, err := s.operators.FindCredential(ctx, req.EventID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := verifyPassword(req.Password, cred.Salt, cred.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, ErrAuthFailed
	}
	return op, nil
}

// hashPassword generates a salted Argon2id hash of the password.
func hashPassword(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, 16)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", err
	}
	key := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(rawSalt), nil
}

// verifyPassword compares a password with a salted hash in constant time.
func verifyPassword(password, salt, hash string) (bool, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	want, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}
	got := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
