package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrActorInactive      = errors.New("account is inactive")
	ErrResetInvalid       = errors.New("reset token is invalid or expired")
)

// AdminCredential is the credential row loaded for an admin login attempt.
type AdminCredential struct {
	ID           int64
	Email        string
	Role         string
	PasswordHash string
}

// UserCredential is the credential row loaded for a staff-user login attempt.
type UserCredential struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	Department   string
	Status       string
	PasswordHash string
}

// PasswordReset is a one-shot reset token bound to either actor kind.
type PasswordReset struct {
	ID        int64
	ActorType ActorType
	ActorID   int64
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// CredentialRepository resolves login credentials and password resets.
// Lookups return (nil, nil) when no row matches.
type CredentialRepository interface {
	GetAdminCredential(ctx context.Context, email string) (*AdminCredential, error)
	GetUserCredential(ctx context.Context, email string) (*UserCredential, error)
	CreatePasswordReset(ctx context.Context, reset *PasswordReset) error
	GetPasswordReset(ctx context.Context, token string) (*PasswordReset, error)
	ConsumePasswordReset(ctx context.Context, id int64) error
	UpdateAdminPassword(ctx context.Context, adminID int64, passwordHash string) error
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
}

// TokenGenerator creates and validates bearer tokens.
type TokenGenerator interface {
	GenerateAccessToken(actor Actor) (token string, claims *Claims, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// AuditRecorder receives auth events. Implementations must tolerate being
// called with request-scoped contexts that are about to be cancelled.
type AuditRecorder interface {
	Record(ctx context.Context, actor Actor, action, entity string, entityID int64, description string)
}

// Claims are the JWT claims carried by an access token. The registered ID
// (jti) doubles as the session store key.
type Claims struct {
	ActorType ActorType `json:"actor_type"`
	ActorID   int64     `json:"actor_id"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(actor Actor) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		ActorType: actor.Type,
		ActorID:   actor.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%s:%d", actor.Type, actor.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Service performs authentication business logic: the unified login, session
// resolution for the middleware, logout and password resets.
type Service struct {
	repo           CredentialRepository
	sessions       SessionStore
	tokenGenerator TokenGenerator
	audit          AuditRecorder
	bcryptCost     int
	resetTokenTTL  time.Duration
}

func NewService(repo CredentialRepository, sessions SessionStore, tokenGen TokenGenerator, audit AuditRecorder, bcryptCost int, resetTokenTTL time.Duration) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &Service{
		repo:           repo,
		sessions:       sessions,
		tokenGenerator: tokenGen,
		audit:          audit,
		bcryptCost:     bcryptCost,
		resetTokenTTL:  resetTokenTTL,
	}
}

// Login resolves the credential against admins first, then staff users, and
// on success persists the token/actor pair as one session record.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	actor, passwordHash, err := s.resolveCredential(ctx, dto.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokenGenerator.GenerateAccessToken(*actor)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        claims.RegisteredClaims.ID,
		Token:     token,
		Actor:     *actor,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, *actor, "LOGIN", "session", actor.ID, fmt.Sprintf("%s logged in", actor.DisplayName()))
	}

	return &LoginResponse{AccessToken: token, Actor: *actor}, nil
}

func (s *Service) resolveCredential(ctx context.Context, email string) (*Actor, string, error) {
	admin, err := s.repo.GetAdminCredential(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if admin != nil {
		actor := Actor{
			Type:      ActorTypeAdmin,
			ID:        admin.ID,
			Email:     admin.Email,
			AdminRole: admin.Role,
		}
		return &actor, admin.PasswordHash, nil
	}

	user, err := s.repo.GetUserCredential(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.Status != "ACTIVE" {
		return nil, "", ErrActorInactive
	}

	actor := Actor{
		Type:       ActorTypeUser,
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Department: user.Department,
	}
	return &actor, user.PasswordHash, nil
}

// ResolveSession validates a bearer token and loads its session. A valid
// signature with no session record means the session was revoked.
func (s *Service) ResolveSession(ctx context.Context, tokenString string) (*Actor, string, error) {
	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, "", err
	}

	session, err := s.sessions.Load(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, "", ErrSessionRevoked
		}
		return nil, "", err
	}

	actor := session.Actor
	return &actor, session.ID, nil
}

// Logout clears the session record. Clearing an already-cleared session is
// not an error; only a live session leaves an audit entry, recorded against
// the actor stored in it.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return err
	}

	if session != nil && s.audit != nil {
		actor := session.Actor
		s.audit.Record(ctx, actor, "LOGOUT", "session", actor.ID, fmt.Sprintf("%s logged out", actor.DisplayName()))
	}
	return nil
}

// RequestPasswordReset creates a one-shot reset token for either actor kind.
// An unknown email is not an error, so the endpoint cannot be used to probe
// for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, dto RequestPasswordResetDTO) (string, error) {
	if err := dto.Validate(); err != nil {
		return "", err
	}

	var actorType ActorType
	var actorID int64

	admin, err := s.repo.GetAdminCredential(ctx, dto.Email)
	if err != nil {
		return "", err
	}
	if admin != nil {
		actorType, actorID = ActorTypeAdmin, admin.ID
	} else {
		user, err := s.repo.GetUserCredential(ctx, dto.Email)
		if err != nil {
			return "", err
		}
		if user == nil {
			return "", nil
		}
		actorType, actorID = ActorTypeUser, user.ID
	}

	token, err := GenerateRandomToken()
	if err != nil {
		return "", err
	}

	reset := &PasswordReset{
		ActorType: actorType,
		ActorID:   actorID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.resetTokenTTL),
	}
	if err := s.repo.CreatePasswordReset(ctx, reset); err != nil {
		return "", err
	}

	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	reset, err := s.repo.GetPasswordReset(ctx, dto.Token)
	if err != nil {
		return err
	}
	if reset == nil || reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return ErrResetInvalid
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return err
	}

	switch reset.ActorType {
	case ActorTypeAdmin:
		err = s.repo.UpdateAdminPassword(ctx, reset.ActorID, hash)
	case ActorTypeUser:
		err = s.repo.UpdateUserPassword(ctx, reset.ActorID, hash)
	default:
		return fmt.Errorf("unknown actor type %q on reset token", reset.ActorType)
	}
	if err != nil {
		return err
	}

	return s.repo.ConsumePasswordReset(ctx, reset.ID)
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// HashPasswordWithCost is the package-level variant for callers outside this
// service. A cost of 0 falls back to the bcrypt default.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
