package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userserrors "busline/internal/users/errors"
	"busline/internal/users/repository"
	"busline/internal/users/validator"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/model"
	"busline/pkg/sanitizer"
)

// invalidCredentials is the one message for every login failure. Unknown
// email and wrong password are indistinguishable to the caller.
const invalidCredentials = "Invalid email or password"

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (string, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, update *model.ProfileUpdate) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	hasher    PasswordHasher
	tokens    TokenIssuer
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	userValidator *validator.UserValidator,
	hasher PasswordHasher,
	tokens TokenIssuer,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: userValidator,
		hasher:    hasher,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	s.sanitizeRegistration(req)
	if err := s.validator.ValidateRegistration(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "error", err)
		return nil, apperrors.Validation("Registration validation failed", map[string]any{"error": err.Error()})
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  digest,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered successfully", "id", user.ID.Hex(), "email", user.Email)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateLogin(req); err != nil {
		s.cfg.Log.Warn("Login validation failed", "error", err)
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return "", apperrors.Unauthorized(invalidCredentials)
		}
		return "", apperrors.Internal("Failed to look up user", err)
	}

	if !s.hasher.Verify(req.Password, user.Password) {
		return "", apperrors.Unauthorized(invalidCredentials)
	}

	signed, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return "", apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "id", user.ID.Hex())
	return signed, nil
}

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

// UpdateProfile changes the name fields, and only re-hashes the credential
// when a new password is supplied. An update without a password leaves the
// stored digest byte-for-byte untouched.
func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update *model.ProfileUpdate) error {
	update.FirstName = sanitizer.NormalizeName(update.FirstName)
	update.LastName = sanitizer.NormalizeName(update.LastName)
	if err := s.validator.ValidateProfileUpdate(update); err != nil {
		s.cfg.Log.Warn("Profile update validation failed", "id", userID.Hex(), "error", err)
		return apperrors.Validation("Profile update validation failed", map[string]any{"error": err.Error()})
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("User")
		}
		return apperrors.Internal("Failed to retrieve user", err)
	}

	user.FirstName = update.FirstName
	user.LastName = update.LastName
	if update.Password != nil {
		digest, hashErr := s.hasher.Hash(*update.Password)
		if hashErr != nil {
			return apperrors.Internal("Failed to hash password", hashErr)
		}
		user.Password = digest
	}

	if err := s.repo.Update(ctx, userID, user); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("User")
		}
		return apperrors.Internal("Failed to update user", err)
	}

	s.cfg.Log.Info("Profile updated successfully", "id", userID.Hex(), "password_changed", update.Password != nil)
	return nil
}

func (s *userService) sanitizeRegistration(req *model.RegisterRequest) {
	req.FirstName = sanitizer.NormalizeName(req.FirstName)
	req.LastName = sanitizer.NormalizeName(req.LastName)
	req.Email = sanitizer.NormalizeEmail(req.Email)
}
