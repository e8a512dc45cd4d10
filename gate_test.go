package goTokenGate

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type stubAuthority struct {
	mu     sync.Mutex
	stamps map[string]int64
	down   bool
}

func newStubAuthority() *stubAuthority {
	return &stubAuthority{
		stamps: make(map[string]int64),
	}
}

func (s *stubAuthority) SetPasswordChangedAt(_ context.Context, userID string, changedAt int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return 0, errors.New("authority down")
	}
	if changedAt > s.stamps[userID] {
		s.stamps[userID] = changedAt
	}
	return s.stamps[userID], nil
}

func (s *stubAuthority) ValidateToken(_ context.Context, userID string, tokenIssuedAt int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return false, errors.New("authority down")
	}
	stamp := s.stamps[userID]
	return stamp == 0 || tokenIssuedAt >= stamp, nil
}

func (s *stubAuthority) setDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

type stubLookup struct {
	mu      sync.Mutex
	records map[string]UserRecord
	fail    bool
}

func (s *stubLookup) FindUserByID(_ context.Context, userID string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return UserRecord{}, errors.New("database down")
	}
	rec, ok := s.records[userID]
	if !ok {
		return UserRecord{}, errors.New("no such user")
	}
	return rec, nil
}

func testConfig(t *testing.T) Config {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keys: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Token.PrivateKey = priv
	cfg.Token.PublicKey = pub
	return cfg
}

func buildGate(t *testing.T, cfg Config, opts ...func(*Builder)) *Gate {
	t.Helper()

	b := New().WithConfig(cfg)
	for _, opt := range opts {
		opt(b)
	}
	gate, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return gate
}

func TestLoginRequestPasswordChangeFlow(t *testing.T) {
	cfg := testConfig(t)
	auth := newStubAuthority()
	gate := buildGate(t, cfg, func(b *Builder) {
		b.WithAuthorityClient(auth)
	})
	ctx := context.Background()

	tok, err := gate.Issue(ctx, "user-1", "alice@example.com", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	identity, err := gate.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", identity.UserID)
	}

	// Password change after issuance invalidates the outstanding token.
	if _, err := gate.PasswordChanged(ctx, "user-1", time.Now().Add(time.Minute).Unix()); err != nil {
		t.Fatalf("PasswordChanged failed: %v", err)
	}

	if _, err := gate.Authenticate(ctx, tok); !errors.Is(err, ErrTokenInvalidated) {
		t.Fatalf("err = %v, want ErrTokenInvalidated", err)
	}

	// A token issued after the change is accepted again.
	fresh, err := gate.Issue(ctx, "user-1", "alice@example.com", time.Now().Add(time.Minute).Unix())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := gate.Authenticate(ctx, fresh); err != nil {
		t.Fatalf("Authenticate after reissue failed: %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	cfg := testConfig(t)
	cfg.Oracle.Strategy = OracleEmbedded
	cfg.Token.Now = now
	gate := buildGate(t, cfg)
	ctx := context.Background()

	tok, err := gate.Issue(ctx, "user-1", "", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Still valid just inside the lifetime.
	mu.Lock()
	clock = clock.Add(cfg.Token.Lifetime - time.Second)
	mu.Unlock()
	if _, err := gate.Authenticate(ctx, tok); err != nil {
		t.Fatalf("Authenticate inside lifetime failed: %v", err)
	}

	mu.Lock()
	clock = clock.Add(2 * time.Second)
	mu.Unlock()
	if _, err := gate.Authenticate(ctx, tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestAuthenticateMissingAndMalformed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Oracle.Strategy = OracleEmbedded
	gate := buildGate(t, cfg)
	ctx := context.Background()

	if _, err := gate.Authenticate(ctx, ""); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if _, err := gate.Authenticate(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestAuthenticateFailsOpenWhenAuthorityDown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true
	auth := newStubAuthority()
	gate := buildGate(t, cfg, func(b *Builder) {
		b.WithAuthorityClient(auth)
	})
	ctx := context.Background()

	tok, err := gate.Issue(ctx, "user-1", "", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	auth.setDown(true)

	identity, err := gate.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("expected fail-open acceptance, got %v", err)
	}
	if identity.UserID != "user-1" {
		t.Fatalf("UserID = %q", identity.UserID)
	}
	if got := gate.Metrics().Value(MetricOracleFailOpen); got != 1 {
		t.Fatalf("fail-open counter = %d, want 1", got)
	}

	// Invalid tokens are still rejected while the authority is down; only
	// the invalidation check is skipped, never signature or expiry.
	if _, err := gate.Authenticate(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestAuthenticateDatabaseStrategyFailsClosed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Oracle.Strategy = OracleDatabase
	lookup := &stubLookup{
		records: map[string]UserRecord{
			"user-1": {ID: "user-1", PasswordChangedAt: 0},
		},
	}
	gate := buildGate(t, cfg, func(b *Builder) {
		b.WithUserLookup(lookup)
	})
	ctx := context.Background()

	tok, err := gate.Issue(ctx, "user-1", "", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := gate.Authenticate(ctx, tok); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	// Stamp moves forward in the account store: token is now stale.
	lookup.mu.Lock()
	lookup.records["user-1"] = UserRecord{ID: "user-1", PasswordChangedAt: time.Now().Add(time.Minute).Unix()}
	lookup.mu.Unlock()
	if _, err := gate.Authenticate(ctx, tok); !errors.Is(err, ErrTokenInvalidated) {
		t.Fatalf("err = %v, want ErrTokenInvalidated", err)
	}

	// Store outage rejects rather than failing open.
	lookup.mu.Lock()
	lookup.fail = true
	lookup.mu.Unlock()
	if _, err := gate.Authenticate(ctx, tok); !errors.Is(err, ErrUserLookup) {
		t.Fatalf("err = %v, want ErrUserLookup", err)
	}
}

func TestConcurrentUsersDoNotInterfere(t *testing.T) {
	const users = 1000

	cfg := testConfig(t)
	auth := newStubAuthority()
	gate := buildGate(t, cfg, func(b *Builder) {
		b.WithAuthorityClient(auth)
	})
	ctx := context.Background()

	tokens := make([]string, users)
	for i := 0; i < users; i++ {
		tok, err := gate.Issue(ctx, userN(i), "", 0)
		if err != nil {
			t.Fatalf("Issue %d failed: %v", i, err)
		}
		tokens[i] = tok
	}

	// Every even-numbered user changes their password after issuance.
	changed := time.Now().Add(time.Minute).Unix()
	for i := 0; i < users; i += 2 {
		if _, err := gate.PasswordChanged(ctx, userN(i), changed); err != nil {
			t.Fatalf("PasswordChanged %d failed: %v", i, err)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gate.Authenticate(ctx, tokens[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < users; i++ {
		if i%2 == 0 {
			if !errors.Is(errs[i], ErrTokenInvalidated) {
				t.Fatalf("user %d: err = %v, want ErrTokenInvalidated", i, errs[i])
			}
		} else if errs[i] != nil {
			t.Fatalf("user %d: unexpected err %v", i, errs[i])
		}
	}
}

func TestPasswordChangedRequiresAuthority(t *testing.T) {
	cfg := testConfig(t)
	cfg.Oracle.Strategy = OracleEmbedded
	gate := buildGate(t, cfg)

	if _, err := gate.PasswordChanged(context.Background(), "user-1", 100); !errors.Is(err, ErrAuthorityRequired) {
		t.Fatalf("err = %v, want ErrAuthorityRequired", err)
	}
}

func TestGateNotReady(t *testing.T) {
	var gate *Gate
	if _, err := gate.Authenticate(context.Background(), "x"); !errors.Is(err, ErrGateNotReady) {
		t.Fatalf("err = %v, want ErrGateNotReady", err)
	}
	if _, err := gate.Issue(context.Background(), "u", "", 0); !errors.Is(err, ErrGateNotReady) {
		t.Fatalf("err = %v, want ErrGateNotReady", err)
	}
}

func userN(i int) string {
	return fmt.Sprintf("user-%04d", i)
}
