package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the signature algorithm for issued credentials.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodEd25519 signs tokens with an Ed25519 key pair.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs tokens with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

var (
	// ErrTokenMalformed is returned when a token has a bad signature, the wrong
	// structural shape, or timestamp claims that are not whole non-negative seconds.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired is returned when the current time is at or past the token expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Config defines the codec's signing keys, lifetime, and validation behavior.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Lifetime      time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration

	// Now overrides the clock. Nil means time.Now. Tests use it to verify
	// expiry behavior at simulated times.
	Now func() time.Time
}

// Claims is the signed payload of one bearer credential. Identity matching uses
// UID; Email exists for display and logging only.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	// PasswordChangedAt is the account's password-change stamp snapshotted at
	// issuance, whole Unix seconds. Zero means the claim is absent.
	PasswordChangedAt int64 `json:"pwc,omitempty"`
	jwt.RegisteredClaims
}

// EffectiveTimestamp is the value compared against the authoritative
// password-change stamp: the pwc snapshot when present, otherwise issued-at.
func (c *Claims) EffectiveTimestamp() int64 {
	if c.PasswordChangedAt > 0 {
		return c.PasswordChangedAt
	}
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Unix()
}

// Manager is the token codec. It is safe for concurrent use: key material is
// read-only after construction.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a codec bound to its keys.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Lifetime <= 0 {
		return nil, errors.New("invalid lifetime configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// Issue builds and signs a credential for the given identity. Issued-at is the
// current time truncated to whole seconds; expiry is issued-at plus the
// configured lifetime. passwordChangedAt is snapshotted into the pwc claim when
// positive and omitted otherwise.
func (m *Manager) Issue(userID, email string, passwordChangedAt int64) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}

	now := m.config.Now().Truncate(time.Second)

	claims := Claims{
		UID:   userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
			ID:        uuid.NewString(),
		},
	}
	if passwordChangedAt > 0 {
		claims.PasswordChangedAt = passwordChangedAt
	}

	tok := jwt.NewWithClaims(m.getMethod(), claims)

	signKey, err := m.getSignKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Parse verifies signature, shape, and expiry and returns the decoded claims.
// Failures are classified as [ErrTokenExpired] when the token is otherwise
// well formed but past expiry, and [ErrTokenMalformed] for everything else.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.getMethod().Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.config.Now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.getVerifyKey()
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrTokenMalformed
	}
	if err := validateTimestamps(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// validateTimestamps enforces the numeric contract: iat and exp present,
// positive, whole seconds, exp strictly after iat; pwc non-negative whole
// seconds when present. JSON numbers with fractional parts survive golang-jwt
// decoding as fractional NumericDates, so the check is explicit here.
func validateTimestamps(claims *Claims) error {
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return ErrTokenMalformed
	}
	iat := claims.IssuedAt.Time
	exp := claims.ExpiresAt.Time
	if iat.Unix() <= 0 || exp.Unix() <= 0 {
		return ErrTokenMalformed
	}
	if iat.Nanosecond() != 0 || exp.Nanosecond() != 0 {
		return ErrTokenMalformed
	}
	if !exp.After(iat) {
		return ErrTokenMalformed
	}
	if claims.PasswordChangedAt < 0 {
		return ErrTokenMalformed
	}
	return nil
}

func (m *Manager) getMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (m *Manager) getSignKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(m.config.PrivateKey)
	}
}

func (m *Manager) getVerifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPublicKey(m.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
