package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jserwatka/network/internal/audit"
	"github.com/jserwatka/network/internal/domain"
	"github.com/jserwatka/network/internal/repository"
	"github.com/jserwatka/network/internal/store"
	"github.com/jserwatka/network/pkg/log"
)

const dateLayout = "2006-01-02"

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo   repository.UserRepository
	graph  repository.FollowRepository
	store  store.CounterStore
	tokens TokenIssuer
}

// NewUserService creates a new user service. graph is cleared on account
// deletion when it lives outside the SQL database.
func NewUserService(repo repository.UserRepository, graph repository.FollowRepository, counters store.CounterStore, tokens TokenIssuer) UserService {
	if counters == nil {
		counters = store.NopCounterStore{}
	}
	return &userServiceImpl{
		repo:   repo,
		graph:  graph,
		store:  counters,
		tokens: tokens,
	}
}

// Register creates the account with an empty profile and signs a token.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	if req.Password != req.Confirmation {
		return nil, ErrPasswordMismatch
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.Create(ctx, user, &domain.Profile{}); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrDuplicateHandle
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrDuplicateEmail
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	resp, err := s.issue(user)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldUserID, user.ID).Msg("failed to generate token after register")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")
	return resp, nil
}

// Login checks the password and signs a token.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, 0, req.Username, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by username")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Username, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issue(user)
	if err != nil {
		l.Error().Err(err).Uint(log.FieldUserID, user.ID).Msg("failed to generate token after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return resp, nil
}

func (s *userServiceImpl) issue(user *domain.User) (*domain.AuthResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{
		User:        *user,
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
	}, nil
}

// GetUser retrieves a user by ID.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetProfile retrieves the profile of a user.
func (s *userServiceImpl) GetProfile(ctx context.Context, userID uint) (*domain.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uint, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		profile.Name = strings.TrimSpace(*req.Name)
	}
	if req.About != nil {
		profile.About = *req.About
	}
	if req.Country != nil {
		profile.Country = strings.TrimSpace(*req.Country)
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			profile.DateOfBirth = nil
		} else {
			dob, err := time.Parse(dateLayout, *req.DateOfBirth)
			if err != nil {
				return nil, ErrInvalidDate
			}
			profile.DateOfBirth = &dob
		}
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")
	return profile, nil
}

// DeleteAccount removes the user and everything they own.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID uint) error {
	l := log.Ctx(ctx)

	var peers []uint
	if s.graph != nil {
		followers, err := s.graph.FollowerIDs(ctx, userID)
		if err != nil {
			return err
		}
		followees, err := s.graph.FolloweeIDs(ctx, userID)
		if err != nil {
			return err
		}
		peers = append(append(peers, followers...), followees...)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		l.Error().Err(err).Uint(log.FieldUserID, userID).Msg("failed to delete user")
		return err
	}

	if s.graph != nil {
		if err := s.graph.RemoveUser(ctx, userID); err != nil {
			l.Error().Err(err).Uint(log.FieldUserID, userID).Msg("failed to remove user from follow graph")
			return err
		}
	}
	if err := s.store.Invalidate(ctx, append(peers, userID)...); err != nil {
		l.Warn().Err(err).Msg("failed to invalidate cached counts")
	}

	audit.Log(ctx, audit.ActionDeleteAccount, userID, "account deleted")
	return nil
}

var _ UserService = (*userServiceImpl)(nil)
