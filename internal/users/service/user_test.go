package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userserrors "busline/internal/users/errors"
	"busline/internal/users/validator"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/logger"
	"busline/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockUserRepository struct {
	createFunc      func(ctx context.Context, user *model.User) error
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	findByIDFunc    func(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	updateFunc      func(ctx context.Context, id primitive.ObjectID, user *model.User) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = primitive.NewObjectID()
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, userserrors.ErrNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, id primitive.ObjectID, user *model.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, user)
	}
	return nil
}

// fakeHasher marks digests deterministically so tests can tell whether a
// password was re-hashed.
type fakeHasher struct {
	hashCalls int
}

func (f *fakeHasher) Hash(plaintext string) (string, error) {
	f.hashCalls++
	return "digest:" + plaintext, nil
}

func (f *fakeHasher) Verify(plaintext, digest string) bool {
	return digest == "digest:"+plaintext
}

type fakeTokenIssuer struct {
	issueFunc func(userID string) (string, error)
}

func (f *fakeTokenIssuer) Issue(userID string) (string, error) {
	if f.issueFunc != nil {
		return f.issueFunc(userID)
	}
	return "token-for-" + userID, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func newTestService(repo *mockUserRepository, hasher *fakeHasher, tokens *fakeTokenIssuer) UserService {
	cfg := testConfig()
	return NewUserService(repo, validator.NewUserValidator(cfg.Log, 8), hasher, tokens, cfg)
}

// ────────────────────────────────────────────────
// Register
// ────────────────────────────────────────────────

func TestRegister_StoresDigestNotPlaintext(t *testing.T) {
	var created *model.User
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			user.ID = primitive.NewObjectID()
			created = user
			return nil
		},
	}
	svc := newTestService(repo, &fakeHasher{}, &fakeTokenIssuer{})

	req := &model.RegisterRequest{
		FirstName: "Amit",
		LastName:  "Sharma",
		Email:     "  Amit@Example.COM ",
		Password:  "correct horse",
	}
	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if created.Password == "correct horse" {
		t.Error("plaintext password was stored")
	}
	if created.Password != "digest:correct horse" {
		t.Errorf("expected hashed password, got %q", created.Password)
	}
	if created.Email != "amit@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
	if user.ID.IsZero() {
		t.Error("expected assigned user ID")
	}
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return userserrors.ErrDuplicateEmail
		},
	}
	svc := newTestService(repo, &fakeHasher{}, &fakeTokenIssuer{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		FirstName: "Amit",
		LastName:  "Sharma",
		Email:     "amit@example.com",
		Password:  "correct horse",
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.StatusCode() != 409 {
		t.Errorf("expected status 409, got %d", appErr.StatusCode())
	}
	if appErr.Message != "Email is already registered" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	svc := newTestService(&mockUserRepository{}, &fakeHasher{}, &fakeTokenIssuer{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		FirstName: "Amit",
		LastName:  "Sharma",
		Email:     "amit@example.com",
		Password:  "short",
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %s", appErr.Code)
	}
}

// ────────────────────────────────────────────────
// Login
// ────────────────────────────────────────────────

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	userID := primitive.NewObjectID()
	repo := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == "known@example.com" {
				return &model.User{ID: userID, Email: email, Password: "digest:right password"}, nil
			}
			return nil, userserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &fakeHasher{}, &fakeTokenIssuer{})

	cases := []struct {
		name string
		req  *model.LoginRequest
	}{
		{"unknown email", &model.LoginRequest{Email: "unknown@example.com", Password: "right password"}},
		{"wrong password", &model.LoginRequest{Email: "known@example.com", Password: "wrong password"}},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.StatusCode() != 401 {
				t.Errorf("expected status 401, got %d", appErr.StatusCode())
			}
			messages = append(messages, appErr.Message)
		})
	}
	if len(messages) == 2 && messages[0] != messages[1] {
		t.Errorf("login failure messages differ: %q vs %q", messages[0], messages[1])
	}
}

func TestLogin_IssuesTokenForStoredUserID(t *testing.T) {
	userID := primitive.NewObjectID()
	repo := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: userID, Email: email, Password: "digest:correct horse"}, nil
		},
	}
	var issuedFor string
	tokens := &fakeTokenIssuer{
		issueFunc: func(id string) (string, error) {
			issuedFor = id
			return "signed", nil
		},
	}
	svc := newTestService(repo, &fakeHasher{}, tokens)

	signed, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "amit@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signed != "signed" {
		t.Errorf("expected issued token, got %q", signed)
	}
	if issuedFor != userID.Hex() {
		t.Errorf("token issued for %q, want %q", issuedFor, userID.Hex())
	}
}

// ────────────────────────────────────────────────
// UpdateProfile
// ────────────────────────────────────────────────

func TestUpdateProfile_PasswordUntouchedWhenOmitted(t *testing.T) {
	userID := primitive.NewObjectID()
	stored := &model.User{
		ID:        userID,
		FirstName: "Amit",
		LastName:  "Sharma",
		Email:     "amit@example.com",
		Password:  "digest:original",
	}
	var updated *model.User
	repo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
			copy := *stored
			return &copy, nil
		},
		updateFunc: func(ctx context.Context, id primitive.ObjectID, user *model.User) error {
			updated = user
			return nil
		},
	}
	hasher := &fakeHasher{}
	svc := newTestService(repo, hasher, &fakeTokenIssuer{})

	err := svc.UpdateProfile(context.Background(), userID, &model.ProfileUpdate{
		FirstName: "Amita",
		LastName:  "Sharma",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasher.hashCalls != 0 {
		t.Errorf("expected no hashing without a new password, got %d calls", hasher.hashCalls)
	}
	if updated.Password != "digest:original" {
		t.Errorf("stored digest changed: %q", updated.Password)
	}
	if updated.FirstName != "Amita" {
		t.Errorf("first name not updated: %q", updated.FirstName)
	}
}

func TestUpdateProfile_RehashesSuppliedPassword(t *testing.T) {
	userID := primitive.NewObjectID()
	var updated *model.User
	repo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
			return &model.User{ID: userID, FirstName: "Amit", LastName: "Sharma", Password: "digest:original"}, nil
		},
		updateFunc: func(ctx context.Context, id primitive.ObjectID, user *model.User) error {
			updated = user
			return nil
		},
	}
	hasher := &fakeHasher{}
	svc := newTestService(repo, hasher, &fakeTokenIssuer{})

	newPassword := "brand new secret"
	err := svc.UpdateProfile(context.Background(), userID, &model.ProfileUpdate{
		FirstName: "Amit",
		LastName:  "Sharma",
		Password:  &newPassword,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasher.hashCalls != 1 {
		t.Errorf("expected one hash call, got %d", hasher.hashCalls)
	}
	if updated.Password != "digest:brand new secret" {
		t.Errorf("expected re-hashed password, got %q", updated.Password)
	}
}

func TestUpdateProfile_UnknownUserNotFound(t *testing.T) {
	repo := &mockUserRepository{
		findByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
			return nil, userserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &fakeHasher{}, &fakeTokenIssuer{})

	err := svc.UpdateProfile(context.Background(), primitive.NewObjectID(), &model.ProfileUpdate{
		FirstName: "Amit",
		LastName:  "Sharma",
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.StatusCode() != 404 {
		t.Errorf("expected status 404, got %d", appErr.StatusCode())
	}
}

func TestRegister_InternalErrorWrapped(t *testing.T) {
	repo := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return fmt.Errorf("connection reset")
		},
	}
	svc := newTestService(repo, &fakeHasher{}, &fakeTokenIssuer{})

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		FirstName: "Amit",
		LastName:  "Sharma",
		Email:     "amit@example.com",
		Password:  "correct horse",
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.StatusCode() != 500 {
		t.Errorf("expected status 500, got %d", appErr.StatusCode())
	}
}
