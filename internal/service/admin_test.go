package service

import (
	"context"
	"testing"

	"books-storefront/internal/client"
	"books-storefront/internal/dto"
	"books-storefront/internal/logging"
	"books-storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unlockedAdmin(t *testing.T, market *fakeMarketplace) AdminService {
	t.Helper()
	svc := NewAdminService(market, logging.Discard())
	require.NoError(t, svc.Login(context.Background(), "admin", "pw"))
	require.True(t, svc.Unlocked())
	return svc
}

func TestAdminLocked(t *testing.T) {
	svc := NewAdminService(&fakeMarketplace{}, logging.Discard())

	_, err := svc.Stats(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.Delete(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAdminLoginFailure(t *testing.T) {
	market := &fakeMarketplace{loginFn: func(req dto.LoginRequest) (*model.Session, error) {
		return nil, &client.APIError{Status: 401, Message: "Invalid credentials"}
	}}
	svc := NewAdminService(market, logging.Discard())

	err := svc.Login(context.Background(), "admin", "bad")
	assert.Equal(t, "Invalid credentials", Message(err))
	assert.False(t, svc.Unlocked())
}

func TestAdminStats(t *testing.T) {
	market := &fakeMarketplace{
		users: 5,
		listFn: func(ctx context.Context, f model.Filter) (*dto.ResourcesResponse, error) {
			return &dto.ResourcesResponse{
				Books:    []model.Resource{{ID: "1"}, {ID: "2"}},
				Papers:   []model.Resource{{ID: "3"}},
				Setbooks: []model.Resource{},
			}, nil
		},
	}
	svc := unlockedAdmin(t, market)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &AdminStats{Books: 2, Papers: 1, Setbooks: 0, Users: 5}, stats)

	papers, err := svc.List(context.Background(), model.ResourceTypePaper)
	require.NoError(t, err)
	assert.Len(t, papers, 1)

	_, err = svc.List(context.Background(), "video")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAdminUpload(t *testing.T) {
	market := &fakeMarketplace{}
	svc := unlockedAdmin(t, market)

	_, err := svc.Upload(context.Background(), dto.UploadRequest{ClassGrade: "form1", Title: "x"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, "Please fill in all required fields", Message(err))
	assert.Empty(t, market.uploads)

	msg, err := svc.Upload(context.Background(), dto.UploadRequest{
		ClassGrade: "form1",
		Subject:    "Religious Education",
		Title:      "CRE notes",
	})
	require.NoError(t, err)
	assert.Equal(t, "Resource uploaded successfully!", msg)
	require.Len(t, market.uploads, 1)
	assert.Equal(t, "religious-education", market.uploads[0].Subject)
	assert.Equal(t, model.ResourceTypeBook, market.uploads[0].ResourceType)

	market.uploadFn = func(req dto.UploadRequest) error {
		return &client.APIError{Status: 400, Message: "Invalid file type"}
	}
	_, err = svc.Upload(context.Background(), dto.UploadRequest{ClassGrade: "form1", Subject: "x", Title: "y"})
	assert.Equal(t, "Upload failed: Invalid file type", Message(err))
}

func TestAdminDeleteAndPassword(t *testing.T) {
	market := &fakeMarketplace{}
	svc := unlockedAdmin(t, market)

	market.deleteFn = func(id model.ResourceID) error {
		return &client.APIError{Status: 404, Message: "Resource not found"}
	}
	_, err := svc.Delete(context.Background(), "9")
	assert.Equal(t, "Resource not found", Message(err))

	_, err = svc.Delete(context.Background(), "")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	var got dto.ChangePasswordRequest
	market.changeFn = func(req dto.ChangePasswordRequest) error {
		got = req
		return nil
	}
	msg, err := svc.ChangePassword(context.Background(), "", "old", "new")
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully!", msg)
	assert.Equal(t, DefaultAdminUsername, got.Username)

	svc.Lock()
	_, err = svc.ChangePassword(context.Background(), "", "old", "new")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
