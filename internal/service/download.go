package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"books-storefront/internal/model"
	"books-storefront/internal/repository"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

// SuccessParams are the query parameters of a download-success link.
type SuccessParams struct {
	ResourceID      model.ResourceID `json:"resource_id"`
	Email           string           `json:"email"`
	OrderTrackingID string           `json:"orderTrackingId"`
}

// ParseSuccessParams requires all three parameters. Whether they match a paid order is for the backend to decide.
func ParseSuccessParams(q url.Values) (*SuccessParams, error) {
	p := &SuccessParams{
		ResourceID:      model.ResourceID(strings.TrimSpace(q.Get("resource_id"))),
		Email:           strings.TrimSpace(q.Get("email")),
		OrderTrackingID: strings.TrimSpace(q.Get("orderTrackingId")),
	}

	var missing []string
	if p.ResourceID.Empty() {
		missing = append(missing, "resource_id")
	}
	if p.Email == "" {
		missing = append(missing, "email")
	}
	if p.OrderTrackingID == "" || p.OrderTrackingID == "undefined" {
		missing = append(missing, "orderTrackingId")
	}
	if len(missing) > 0 {
		uErr := newUserError(ErrValidationFailed, "Invalid download link.", nil)
		uErr.Fields = make(map[string]string, len(missing))
		for _, m := range missing {
			uErr.Fields[m] = m + " is a required field"
		}
		return nil, uErr
	}
	return p, nil
}

type DownloadService interface {
	Resolve(ctx context.Context, q url.Values) (string, *SuccessParams, error)
}

type downloadServiceImpl struct {
	downloadURL string
	txnRepo     repository.TransactionRepository
	logger      *log.Logger
}

func NewDownloadService(downloadURL string, txnRepo repository.TransactionRepository, logger *log.Logger) DownloadService {
	return &downloadServiceImpl{
		downloadURL: downloadURL,
		txnRepo:     txnRepo,
		logger:      logger,
	}
}

// Resolve validates a success link and returns the backend download URL to forward the user to.
func (s *downloadServiceImpl) Resolve(ctx context.Context, q url.Values) (string, *SuccessParams, error) {
	p, err := ParseSuccessParams(q)
	if err != nil {
		return "", nil, err
	}

	if s.txnRepo != nil {
		err := s.txnRepo.MarkFollowed(ctx, p.OrderTrackingID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// links initiated from another profile are still forwarded
			s.logger.Infof("no local transaction for %s", p.OrderTrackingID)
		case err != nil:
			s.logger.Warnf("mark transaction %s followed: %v", p.OrderTrackingID, err)
		}
	}

	return DownloadLink(s.downloadURL, p.ResourceID, p.Email, p.OrderTrackingID), p, nil
}
