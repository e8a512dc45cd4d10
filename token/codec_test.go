package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func newManagerAt(t *testing.T, now func() time.Time) *Manager {
	t.Helper()
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		Lifetime:      time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "tokengate-test",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestIssueParseRoundTrip(t *testing.T) {
	m := newManagerAt(t, nil)

	tok, err := m.Issue("user-1", "alice@example.com", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UID != "user-1" {
		t.Fatalf("uid = %q, want user-1", claims.UID)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("email = %q, want alice@example.com", claims.Email)
	}
	if claims.PasswordChangedAt != 0 {
		t.Fatalf("pwc = %d, want absent", claims.PasswordChangedAt)
	}
	if claims.IssuedAt.Time.Nanosecond() != 0 {
		t.Fatal("issued-at not truncated to whole seconds")
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		t.Fatal("expiry must be strictly after issued-at")
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestIssueSnapshotsPasswordChangedAt(t *testing.T) {
	m := newManagerAt(t, nil)

	tok, err := m.Issue("user-1", "alice@example.com", 1200)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.PasswordChangedAt != 1200 {
		t.Fatalf("pwc = %d, want 1200", claims.PasswordChangedAt)
	}
	if claims.EffectiveTimestamp() != 1200 {
		t.Fatalf("effective = %d, want pwc snapshot 1200", claims.EffectiveTimestamp())
	}
}

func TestEffectiveTimestampFallsBackToIssuedAt(t *testing.T) {
	issued := time.Unix(1000, 0)
	m := newManagerAt(t, func() time.Time { return issued })

	tok, err := m.Issue("user-1", "alice@example.com", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.EffectiveTimestamp() != 1000 {
		t.Fatalf("effective = %d, want issued-at 1000", claims.EffectiveTimestamp())
	}
}

func TestParseExpiryBoundary(t *testing.T) {
	// Issue at t=1000 with a 1h lifetime, then drive the parser clock.
	clock := time.Unix(1000, 0)
	m := newManagerAt(t, func() time.Time { return clock })

	tok, err := m.Issue("u1", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock = time.Unix(1500, 0)
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse within lifetime: %v", err)
	}
	if claims.Email != "alice@x.com" {
		t.Fatalf("email = %q", claims.Email)
	}

	clock = time.Unix(1000+3599, 0)
	if _, err := m.Parse(tok); err != nil {
		t.Fatalf("parse strictly before expiry: %v", err)
	}

	clock = time.Unix(1000+3600, 0)
	if _, err := m.Parse(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("parse at expiry: err = %v, want ErrTokenExpired", err)
	}

	clock = time.Unix(5000, 0)
	if _, err := m.Parse(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("parse past expiry: err = %v, want ErrTokenExpired", err)
	}
}

func TestParseRejectsFlippedSignature(t *testing.T) {
	m := newManagerAt(t, nil)

	tok, err := m.Issue("user-1", "alice@example.com", 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments", len(parts))
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	sig[0] ^= 0x01
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	if _, err := m.Parse(strings.Join(parts, ".")); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("flipped signature: err = %v, want ErrTokenMalformed", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newManagerAt(t, nil)

	for _, input := range []string{"", "not.a.jwt", "a.b", "a.b.c.d"} {
		if _, err := m.Parse(input); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("input %q: err = %v, want ErrTokenMalformed", input, err)
		}
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	m := newManagerAt(t, nil)

	claims := Claims{
		UID: "u1",
		RegisteredClaims: gjwt.RegisteredClaims{
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute).Truncate(time.Second)),
			IssuedAt:  gjwt.NewNumericDate(time.Now().Truncate(time.Second)),
			Issuer:    "tokengate-test",
		},
	}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.Parse(signed); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("wrong alg: err = %v, want ErrTokenMalformed", err)
	}
}

func TestParseRejectsFractionalTimestamps(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		Lifetime:      time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	cases := map[string]gjwt.MapClaims{
		"fractional iat": {
			"uid": "u1", "email": "a@x.com",
			"iat": 1000.5, "exp": time.Now().Add(time.Hour).Unix(),
		},
		"fractional exp": {
			"uid": "u1", "email": "a@x.com",
			"iat": 1000, "exp": float64(time.Now().Add(time.Hour).Unix()) + 0.25,
		},
		"negative iat": {
			"uid": "u1", "email": "a@x.com",
			"iat": -5, "exp": time.Now().Add(time.Hour).Unix(),
		},
		"missing iat": {
			"uid": "u1", "email": "a@x.com",
			"exp": time.Now().Add(time.Hour).Unix(),
		},
		"exp not after iat": {
			"uid": "u1", "email": "a@x.com",
			"iat": time.Now().Add(time.Hour).Unix(), "exp": time.Now().Add(time.Hour).Unix(),
		},
	}

	for name, mc := range cases {
		tok := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, mc)
		signed, err := tok.SignedString(ed25519.PrivateKey(priv))
		if err != nil {
			t.Fatalf("%s: sign: %v", name, err)
		}
		if _, err := m.Parse(signed); err == nil {
			t.Fatalf("%s: expected rejection", name)
		} else if errors.Is(err, ErrTokenExpired) {
			t.Fatalf("%s: classified expired, want malformed", name)
		}
	}
}

func TestNewManagerValidation(t *testing.T) {
	pub, priv := newEdKeys(t)

	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero lifetime", Config{SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"negative leeway", Config{Lifetime: time.Minute, Leeway: -time.Second, SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"oversized leeway", Config{Lifetime: time.Minute, Leeway: time.Hour, SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"hs256 without key", Config{Lifetime: time.Minute, SigningMethod: MethodHS256}},
		{"ed25519 without public key", Config{Lifetime: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv}},
		{"unknown method", Config{Lifetime: time.Minute, SigningMethod: "rs256", PrivateKey: []byte("k"), PublicKey: pub}},
	}

	for _, tc := range cases {
		if _, err := NewManager(tc.cfg); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestHS256RoundTrip(t *testing.T) {
	m, err := NewManager(Config{
		Lifetime:      time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tok, err := m.Issue("user-2", "bob@example.com", 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UID != "user-2" || claims.PasswordChangedAt != 42 {
		t.Fatalf("claims = %+v", claims)
	}
}
