package service

import (
	"context"
	"strings"
	"sync"

	"books-storefront/internal/client"
	"books-storefront/internal/dto"
	"books-storefront/internal/model"

	"github.com/labstack/gommon/log"
)

// DefaultAdminUsername is the account whose password the settings form changes.
const DefaultAdminUsername = "admin"

type AdminStats struct {
	Books    int `json:"books"`
	Papers   int `json:"papers"`
	Setbooks int `json:"setbooks"`
	Users    int `json:"users"`
}

type AdminService interface {
	Login(ctx context.Context, username, password string) error
	Unlocked() bool
	Lock()
	Stats(ctx context.Context) (*AdminStats, error)
	List(ctx context.Context, resourceType model.ResourceType) ([]model.Resource, error)
	Upload(ctx context.Context, req dto.UploadRequest) (string, error)
	Delete(ctx context.Context, id model.ResourceID) (string, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (string, error)
}

type adminServiceImpl struct {
	marketplace client.MarketplaceClient
	logger      *log.Logger

	mu       sync.RWMutex
	unlocked bool
}

func NewAdminService(marketplace client.MarketplaceClient, logger *log.Logger) AdminService {
	return &adminServiceImpl{
		marketplace: marketplace,
		logger:      logger,
	}
}

// Login unlocks the dashboard on backend success. It does not touch the storefront session.
func (s *adminServiceImpl) Login(ctx context.Context, username, password string) error {
	req := dto.LoginRequest{Username: username, Password: password}
	if err := validateStruct(req, "Please fill in all fields"); err != nil {
		return err
	}
	if _, err := s.marketplace.Login(ctx, req); err != nil {
		s.logger.Warnf("admin login %s: %v", username, err)
		return backendError(ErrAuthFailed, err, "Failed to connect to backend API.")
	}

	s.mu.Lock()
	s.unlocked = true
	s.mu.Unlock()
	return nil
}

func (s *adminServiceImpl) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocked
}

func (s *adminServiceImpl) Lock() {
	s.mu.Lock()
	s.unlocked = false
	s.mu.Unlock()
}

func (s *adminServiceImpl) requireUnlocked() error {
	if !s.Unlocked() {
		return newUserError(ErrUnauthenticated, "Please sign in as admin.", nil)
	}
	return nil
}

func (s *adminServiceImpl) Stats(ctx context.Context) (*AdminStats, error) {
	if err := s.requireUnlocked(); err != nil {
		return nil, err
	}

	res, err := s.marketplace.ListResources(ctx, model.Filter{})
	if err != nil {
		return nil, backendError(ErrBackend, err, "Failed to connect to backend API.")
	}
	users, err := s.marketplace.CountUsers(ctx)
	if err != nil {
		return nil, backendError(ErrBackend, err, "Failed to connect to backend API.")
	}

	return &AdminStats{
		Books:    len(res.Books),
		Papers:   len(res.Papers),
		Setbooks: len(res.Setbooks),
		Users:    users,
	}, nil
}

func (s *adminServiceImpl) List(ctx context.Context, resourceType model.ResourceType) ([]model.Resource, error) {
	if err := s.requireUnlocked(); err != nil {
		return nil, err
	}
	if !resourceType.Valid() {
		return nil, newUserError(ErrValidationFailed, "Unknown resource type.", nil)
	}

	res, err := s.marketplace.ListResources(ctx, model.Filter{})
	if err != nil {
		return nil, backendError(ErrBackend, err, "Failed to load resources.")
	}

	switch resourceType {
	case model.ResourceTypeBook:
		return res.Books, nil
	case model.ResourceTypePaper:
		return res.Papers, nil
	default:
		return res.Setbooks, nil
	}
}

func (s *adminServiceImpl) Upload(ctx context.Context, req dto.UploadRequest) (string, error) {
	if err := s.requireUnlocked(); err != nil {
		return "", err
	}
	if req.ResourceType == "" {
		req.ResourceType = model.ResourceTypeBook
	}
	if err := validateStruct(req, "Please fill in all required fields"); err != nil {
		return "", err
	}
	if !req.ResourceType.Valid() {
		return "", newUserError(ErrValidationFailed, "Unknown resource type.", nil)
	}
	req.Subject = model.SubjectSlug(req.Subject)

	if err := s.marketplace.Upload(ctx, req); err != nil {
		s.logger.Warnf("upload %q: %v", req.Title, err)
		uErr := backendError(ErrBackend, err, "Failed to connect to backend API.")
		if !strings.HasPrefix(uErr.Message, "Failed to connect") {
			uErr.Message = "Upload failed: " + uErr.Message
		}
		return "", uErr
	}
	return "Resource uploaded successfully!", nil
}

func (s *adminServiceImpl) Delete(ctx context.Context, id model.ResourceID) (string, error) {
	if err := s.requireUnlocked(); err != nil {
		return "", err
	}
	if id.Empty() {
		return "", newUserError(ErrResourceNotFound, "Resource ID not found.", nil)
	}

	if err := s.marketplace.DeleteResource(ctx, id); err != nil {
		s.logger.Warnf("delete resource %s: %v", id, err)
		return "", backendError(ErrBackend, err, "Failed to connect to backend API.")
	}
	return "Resource deleted.", nil
}

func (s *adminServiceImpl) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (string, error) {
	if err := s.requireUnlocked(); err != nil {
		return "", err
	}
	if username == "" {
		username = DefaultAdminUsername
	}
	req := dto.ChangePasswordRequest{Username: username, OldPassword: oldPassword, NewPassword: newPassword}
	if err := validateStruct(req, "Please fill in all fields"); err != nil {
		return "", err
	}

	if err := s.marketplace.ChangePassword(ctx, req); err != nil {
		return "", backendError(ErrBackend, err, "Failed to connect to backend API.")
	}
	return "Password updated successfully!", nil
}
