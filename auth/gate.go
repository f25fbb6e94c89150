package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	Subject   = "owner"
	Issuer    = "freight-billing"
	RoleOwner = "owner"

	DefaultTTL = 24 * time.Hour
)

// ErrRejected is returned for every failed sign-in or verification. It never
// says which part was wrong.
var ErrRejected = errors.New("unauthorized")

// Claims is the JWT payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Principal is the verified holder of a token.
type Principal struct {
	Subject   string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Gate exchanges a pre-shared access code for a signed bearer token and
// verifies those tokens. It keeps no state besides its configuration.
type Gate struct {
	secret []byte
	hashes [][]byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type Option func(*Gate)

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithBcryptCost sets the cost used to hash plain access codes.
func WithBcryptCost(cost int) Option {
	return func(g *Gate) { g.cost = cost }
}

// NewGate hashes the plain codes and accepts pre-hashed ones as they are.
func NewGate(secret string, codes, hashes []string, opts ...Option) (*Gate, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: JWT secret not configured")
	}
	g := &Gate{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(code), g.cost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash access code: %w", err)
		}
		g.hashes = append(g.hashes, h)
	}
	for _, h := range hashes {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return nil, fmt.Errorf("auth: invalid access code hash: %w", err)
		}
		g.hashes = append(g.hashes, []byte(h))
	}
	if len(g.hashes) == 0 {
		return nil, errors.New("auth: no access codes configured")
	}
	return g, nil
}

// HashCode returns a bcrypt hash suitable for ACCESS_CODE_HASHES.
func HashCode(code string, cost int) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errors.New("auth: empty access code")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// IssueToken signs a new token when code matches one of the configured codes.
func (g *Gate) IssueToken(code string) (Token, error) {
	if !g.matches(code) {
		return Token{}, ErrRejected
	}

	now := g.now()
	exp := now.Add(g.ttl)
	claims := &Claims{
		Role: RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			Issuer:    Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Token{Token: signed, ExpiresAt: exp.UTC().Truncate(time.Second)}, nil
}

func (g *Gate) matches(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	ok := false
	// every hash is checked so timing does not reveal which code matched
	for _, h := range g.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(code)) == nil {
			ok = true
		}
	}
	return ok
}

// Verify checks signature, algorithm, expiry, issuer and subject.
func (g *Gate) Verify(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Principal{}, ErrRejected
	}

	// claims are checked below against the gate's clock, not the wall clock
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrRejected
	}

	now := g.now()
	if claims.ExpiresAt == nil || !claims.VerifyExpiresAt(now, true) {
		return Principal{}, ErrRejected
	}
	if !claims.VerifyIssuedAt(now, false) || !claims.VerifyNotBefore(now, false) {
		return Principal{}, ErrRejected
	}
	if claims.Subject != Subject || !claims.VerifyIssuer(Issuer, true) {
		return Principal{}, ErrRejected
	}

	return Principal{
		Subject:   claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
