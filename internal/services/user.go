package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"match-backend/internal/models"
	"match-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// UserService owns profiles, credentials and auth tokens
type UserService struct {
	userRepo  UserStore
	photoRepo PhotoStore
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, photoRepo PhotoStore, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		userRepo:  userRepo,
		photoRepo: photoRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email        string        `json:"email"`
	Password     string        `json:"password"`
	Name         string        `json:"name"`
	Age          int           `json:"age"`
	Gender       models.Gender `json:"gender"`
	InterestedIn models.Gender `json:"interested_in"`
	Description  string        `json:"description"`
	Instagram    string        `json:"instagram"`
	WhatsApp     string        `json:"whatsapp"`
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	User  *models.Profile `json:"user"`
	Token string          `json:"token"`
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// GenerateJWT generates a signed token for a user
func (s *UserService) GenerateJWT(userID int64) (string, error) {
	now := s.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a token and returns the user ID it was issued for
func (s *UserService) ValidateJWT(tokenString string) (int64, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %v: %w", err, ErrUnauthenticated)
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid token subject: %w", ErrUnauthenticated)
	}
	return userID, nil
}

// Register stores a new profile with a hashed password and issues a token
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	var v validator
	v.check(strings.Contains(req.Email, "@"), "email", "must be a valid email address")
	validatePassword(&v, req.Password)
	v.check(req.Name != "", "name", "is required")
	v.check(req.Age > 0, "age", "must be a positive integer")
	v.check(req.Gender.Valid(), "gender", "must be one of male, female, other")
	v.check(req.InterestedIn.Valid(), "interested_in", "must be one of male, female, other")
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Age:          req.Age,
		Gender:       req.Gender,
		InterestedIn: req.InterestedIn,
		Description:  strings.TrimSpace(req.Description),
		Instagram:    strings.TrimSpace(req.Instagram),
		WhatsApp:     strings.TrimSpace(req.WhatsApp),
	}
	if err := s.userRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fieldError("email", "has already been taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(profile)
}

// Login verifies the password against the stored hash and issues a token
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrUnauthenticated)
	}

	profile, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	}

	return s.issue(profile)
}

func (s *UserService) issue(profile *models.Profile) (*AuthResult, error) {
	token, err := s.GenerateJWT(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: profile, Token: token}, nil
}

// UpdateProfile applies a partial patch to the caller's profile
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, patch models.ProfilePatch) (*models.Profile, error) {
	var v validator
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
		v.check(name != "", "name", "must not be empty")
	}
	if patch.Age != nil {
		v.check(*patch.Age > 0, "age", "must be a positive integer")
	}
	if patch.Gender != nil {
		v.check(patch.Gender.Valid(), "gender", "must be one of male, female, other")
	}
	if patch.InterestedIn != nil {
		v.check(patch.InterestedIn.Valid(), "interested_in", "must be one of male, female, other")
	}
	if patch.Password != nil {
		validatePassword(&v, *patch.Password)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hash)
		patch.PasswordHash = &h
	}

	if patch.Empty() {
		return s.getProfile(ctx, userID)
	}

	profile, err := s.userRepo.Update(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return profile, nil
}

// GetProfile returns a profile with its photos ordered by position
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.ProfileWithPhotos, error) {
	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	photos, err := s.photoRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}

	return &models.ProfileWithPhotos{Profile: *profile, Photos: photos}, nil
}

func (s *UserService) getProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	profile, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(v *validator, pw string) {
	v.check(len(pw) >= minPasswordLength, "password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	v.check(len(pw) <= maxPasswordLength, "password", fmt.Sprintf("must be at most %d bytes", maxPasswordLength))
}
