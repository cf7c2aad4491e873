// Package user manages accounts: registration, role changes, agent
// approval, and activity status. Wallet creation is an explicit step of
// registration so every active user holds exactly one wallet.
package user

import (
	"context"
	"errors"

	"github.com/hassan-nahid/digital-wallet-backend/internal/apperr"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Address  string
	NID      int64
	Role     string
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	MakeAgent(ctx context.Context, id uint) (*models.User, error)
	SuspendAgent(ctx context.Context, id uint) (*models.User, error)
	SetActiveStatus(ctx context.Context, id uint, status string) (*models.User, error)
	SearchByEmail(ctx context.Context, email, role string) (*models.User, error)
}

type service struct {
	store repositories.Store
}

func NewService(store repositories.Store) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store}
}

// Register creates the user and its paired wallet in one transaction, so
// "every user has exactly one wallet" holds even if the process dies
// between the two inserts.
func (s *service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if _, err := s.store.Users().GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.BadRequest("User Already Exist")
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: string(hashed),
		Address:  in.Address,
		NID:      in.NID,
		Role:     role,
		IsActive: models.StatusActive,
		// Agents created as agents start approved.
		IsAgentApproved: role == models.RoleAgent,
	}

	err = s.store.WithinTransaction(ctx, func(st repositories.Store) error {
		if err := st.Users().Create(ctx, user); err != nil {
			return err
		}
		wallet := &models.Wallet{
			UserID:   user.ID,
			Balance:  models.DefaultOpeningBalance,
			Currency: models.DefaultCurrency,
		}
		return st.Wallets().Create(ctx, wallet)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) MakeAgent(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsActive == models.StatusBlocked || user.IsActive == models.StatusInactive {
		return nil, apperr.Forbidden("User is " + user.IsActive)
	}
	if user.Phone == "" {
		return nil, apperr.BadRequest("User must have a phone number to become an agent")
	}
	if user.NID == 0 {
		return nil, apperr.BadRequest("User must have a national ID to become an agent")
	}
	if user.Address == "" {
		return nil, apperr.BadRequest("User must have an address to become an agent")
	}
	if user.Role == models.RoleAdmin {
		return nil, apperr.BadRequest("User is already an admin")
	}
	if user.Role == models.RoleAgent {
		return nil, apperr.BadRequest("User is already an agent")
	}

	user.Role = models.RoleAgent
	user.IsAgentApproved = true
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) SuspendAgent(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAgent {
		return nil, apperr.BadRequest("User is not an agent")
	}

	user.IsAgentApproved = false
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) SetActiveStatus(ctx context.Context, id uint, status string) (*models.User, error) {
	if status != models.StatusActive && status != models.StatusInactive && status != models.StatusBlocked {
		return nil, apperr.BadRequest("Invalid user status")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = status
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) SearchByEmail(ctx context.Context, email, role string) (*models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil || user.Role != role {
		return nil, apperr.BadRequest("User not found or not a regular user")
	}
	return user, nil
}
