package services

import (
	"log"
	"time"

	"geekshop/internal/domain"
	"geekshop/internal/mail"
	"geekshop/internal/repos"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users      *repos.UserRepo
	Mail       mail.Sender
	DomainName string
	KeyTTL     time.Duration // activation key validity window
}

type RegisterForm struct {
	Username string
	Email    string
	Password string
	Age      int
}

type AccountForm struct {
	Username string
	Email    string
	Age      int
	Tagline  string
	About    string
	Gender   string
}

// Register creates an inactive account with a fresh activation key and
// mails the verification link. Mail failure does not undo the account;
// the user can ask for help and an admin can activate manually.
func (s *AuthService) Register(f RegisterForm) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), 12)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:                   uuid.NewString(),
		Username:             f.Username,
		Email:                f.Email,
		Hash:                 string(hash),
		Age:                  f.Age,
		IsActive:             false,
		ActivationKey:        uuid.NewString(),
		ActivationKeyCreated: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}

	if s.Mail != nil {
		verifyURL := s.DomainName + "/auth/verify/" + u.Email + "/" + u.ActivationKey
		if err := s.Mail.SendVerification(u.Email, u.Username, verifyURL); err != nil {
			log.Printf("[mail] verification for %s failed: %v", u.Email, err)
		}
	}
	return &u, nil
}

// Verify activates the account when the key matches and has not expired.
// Any mismatch is a silent no-op: activated=false, no error.
func (s *AuthService) Verify(email, key string) (*domain.User, bool, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, false, nil
	}
	if u.IsActive || key == "" || u.ActivationKey != key {
		return u, false, nil
	}
	created, err := time.Parse(time.RFC3339, u.ActivationKeyCreated)
	if err != nil || time.Since(created) > s.KeyTTL {
		return u, false, nil
	}
	if err := s.Users.Activate(u.ID); err != nil {
		return nil, false, err
	}
	u.IsActive = true
	u.ActivationKey = ""
	u.ActivationKeyCreated = ""
	return u, true, nil
}

// Login authenticates an active account and binds it to the session.
// Inactive accounts fail the same way as bad credentials.
func (s *AuthService) Login(sid, username, password string) (*domain.User, error) {
	u, err := s.Users.ByUsername(username)
	if err != nil {
		return nil, ErrBadCreds
	}
	if !u.IsActive {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

func (s *AuthService) Profile(userID string) (domain.Profile, error) {
	return s.Users.Profile(userID)
}

// UpdateAccount saves the user's own fields plus the profile extension as
// one unit.
func (s *AuthService) UpdateAccount(userID string, f AccountForm) error {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return err
	}
	u.Username = f.Username
	u.Email = f.Email
	u.Age = f.Age
	return s.Users.UpdateAccount(*u, domain.Profile{
		UserID:  userID,
		Tagline: f.Tagline,
		About:   f.About,
		Gender:  f.Gender,
	})
}
