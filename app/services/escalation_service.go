package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/pkg/apperr"
	"github.com/chefbazaar/backend/pkg/metrics"
)

// EscalationService processes requests to become a chef or admin.
type EscalationService struct {
	users    repositories.UserRepository
	requests repositories.RequestRepository
}

func NewEscalationService(users repositories.UserRepository, requests repositories.RequestRepository) *EscalationService {
	return &EscalationService{users: users, requests: requests}
}

// SubmitInput carries a user's escalation request.
type SubmitInput struct {
	UserName    string `json:"userName" validate:"required"`
	UserEmail   string `json:"userEmail" validate:"required,email"`
	RequestType string `json:"requestType" validate:"required,in=chef,admin"`
}

// Submit persists a pending escalation request.
func (s *EscalationService) Submit(ctx context.Context, in SubmitInput) (string, error) {
	if in.UserName == "" || in.UserEmail == "" || in.RequestType == "" {
		return "", apperr.New(apperr.InvalidArgument, "userName, userEmail and requestType are required")
	}
	if in.RequestType != models.RequestChef && in.RequestType != models.RequestAdmin {
		return "", apperr.New(apperr.InvalidArgument, "requestType must be chef or admin")
	}

	id, err := s.requests.Insert(ctx, &models.AdminRequest{
		UserName:      in.UserName,
		UserEmail:     in.UserEmail,
		RequestType:   in.RequestType,
		RequestStatus: models.RequestPending,
		RequestTime:   time.Now().UTC(),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to submit request", err)
	}
	return id, nil
}

// DecideInput is an admin's verdict on a request.
type DecideInput struct {
	Action      string `json:"action" validate:"required,in=accept,reject"`
	UserEmail   string `json:"email" validate:"required,email"`
	RequestType string `json:"requestType" validate:"required,in=chef,admin"`
}

// Decide applies an admin's verdict.
//
// On accept the account is mutated first, and the request is marked approved
// only when that write reports at least one modified document. A grant that
// did not take effect leaves the request pending so the admin can retry.
// This ordering must not be reversed.
func (s *EscalationService) Decide(ctx context.Context, requestID string, in DecideInput) error {
	switch in.Action {
	case "reject":
		_, err := s.requests.SetStatus(ctx, requestID, models.RequestRejected)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.NotFound, "request not found")
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to reject request", err)
		}
		metrics.Escalations.WithLabelValues("reject").Inc()
		return nil

	case "accept":
		account, err := s.users.FindByEmail(ctx, in.UserEmail)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to load user", err)
		}

		role := models.RoleAdmin
		chefID := ""
		if in.RequestType == models.RequestChef {
			role = models.RoleChef
			chefID = account.ChefID
			if chefID == "" {
				chefID = newChefID()
			}
		}

		modified, err := s.users.SetRole(ctx, in.UserEmail, role, chefID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to update user role", err)
		}
		if modified < 1 {
			return apperr.New(apperr.Internal, "role update had no effect, request left pending")
		}

		if _, err := s.requests.SetStatus(ctx, requestID, models.RequestApproved); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.New(apperr.NotFound, "request not found")
			}
			return apperr.Wrap(apperr.Internal, "role granted but request not marked approved", err)
		}

		metrics.Escalations.WithLabelValues("accept").Inc()
		return nil

	default:
		return apperr.New(apperr.InvalidArgument, "action must be accept or reject")
	}
}

// List returns escalation requests, newest first.
func (s *EscalationService) List(ctx context.Context, page, limit int64) ([]models.AdminRequest, int64, error) {
	requests, total, err := s.requests.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "failed to list requests", err)
	}
	return requests, total, nil
}

// newChefID generates the short opaque chef identifier. The range is small
// and uniqueness is not checked against existing accounts.
func newChefID() string {
	return fmt.Sprintf("chef-%04d", rand.Intn(10000))
}
