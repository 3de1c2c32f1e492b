package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the caller proven by a bearer token. It travels on the request
// context and is handed to services explicitly.
type Identity struct {
	AccountID string
	Role      string
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

type identityKey struct{}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func identityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type Claims struct {
	AccountID string `json:"id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (tm *TokenManager) Issue(acc *Account) (string, time.Time, error) {
	now := tm.now()
	exp := now.Add(tm.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: acc.ID,
		Role:      acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

func (tm *TokenManager) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(tm.now))
	if err != nil {
		return Identity{}, err
	}
	if claims.AccountID == "" {
		return Identity{}, errors.New("token has no account id")
	}
	return Identity{AccountID: claims.AccountID, Role: claims.Role}, nil
}

func hashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

func checkPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type AuthService struct {
	accounts Repository[Account]
	tokens   *TokenManager
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, badRequest("Please provide an email and password")
	}
	acc, err := s.accounts.FindOne(ctx, Filter{"email": email})
	if errors.Is(err, errNoRecord) {
		return nil, unauthenticated("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(acc.PasswordHash, password) {
		return nil, unauthenticated("Invalid credentials")
	}
	token, exp, err := s.tokens.Issue(acc)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Account: acc}, nil
}

// Me loads the account behind a verified token. A token for an account that
// no longer exists is treated as unauthenticated.
func (s *AuthService) Me(ctx context.Context, who Identity) (*Account, error) {
	acc, err := s.accounts.Get(ctx, who.AccountID)
	if errors.Is(err, errNoRecord) {
		return nil, unauthenticated("Account no longer exists")
	}
	return acc, err
}

// EnsureAccount creates the account if no account with that email exists yet.
func (s *AuthService) EnsureAccount(ctx context.Context, email, password, role string) (*Account, bool, error) {
	email = normalizeEmail(email)
	acc, err := s.accounts.FindOne(ctx, Filter{"email": email})
	if err == nil {
		return acc, false, nil
	}
	if !errors.Is(err, errNoRecord) {
		return nil, false, err
	}
	if len(password) < 8 {
		return nil, false, errors.New("admin password must be at least 8 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, false, err
	}
	acc = &Account{Base: newBase(), Email: email, PasswordHash: hash, Role: role}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, false, err
	}
	return acc, true, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (tm *TokenManager) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, r, unauthenticated("Not authorized to access this route"))
			return
		}

		bearerToken := strings.Fields(authHeader)
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
			writeError(w, r, unauthenticated("Invalid authorization header format"))
			return
		}

		id, err := tm.Parse(bearerToken[1])
		if err != nil {
			writeError(w, r, unauthenticated("Invalid token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// requireRole runs after requireAuth.
func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identityFrom(r.Context())
			if !ok {
				writeError(w, r, unauthenticated("Not authorized to access this route"))
				return
			}
			if id.Role != role {
				writeError(w, r, &appError{kind: ErrForbidden,
					msg: fmt.Sprintf("User role %s is not authorized to access this route", id.Role)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
