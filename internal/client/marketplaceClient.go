package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"books-storefront/internal/config"
	"books-storefront/internal/dto"
	"books-storefront/internal/model"
)

var (
	// ErrConnection means the backend could not be reached at all.
	ErrConnection = errors.New("failed to connect to backend API")
	// ErrInvalidResponse means the backend answered with something that is not the expected JSON.
	ErrInvalidResponse = errors.New("invalid backend response")
)

// APIError is a business failure reported by the backend, Message is shown to the user verbatim.
// Message is empty when the backend gave no reason; callers then use their own wording.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// MarketplaceClient consumes the books-management REST API.
type MarketplaceClient interface {
	BaseURL() string
	ListResources(ctx context.Context, filter model.Filter) (*dto.ResourcesResponse, error)
	CountUsers(ctx context.Context) (int, error)
	Login(ctx context.Context, req dto.LoginRequest) (*model.Session, error)
	Register(ctx context.Context, req dto.RegisterRequest) error
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) (string, error)
	ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirmRequest) (string, error)
	Upload(ctx context.Context, req dto.UploadRequest) error
	DeleteResource(ctx context.Context, id model.ResourceID) error
	Pay(ctx context.Context, req dto.PayRequest) (*dto.PayResponse, error)
}

type marketplaceClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewMarketplaceClient(apiCfg *config.API) MarketplaceClient {
	return &marketplaceClientImpl{
		httpClient: &http.Client{
			Timeout: apiCfg.Timeout,
		},
		baseURL: strings.TrimRight(apiCfg.BaseURL, "/"),
	}
}

// DiscoverBaseURL asks GET /config for the API base. Callers keep their default on error.
func DiscoverBaseURL(ctx context.Context, httpClient *http.Client, configURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, configURL, nil)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	var cfg dto.ConfigResponse
	if err := decode(resp, &cfg); err != nil {
		return "", fmt.Errorf("decode config: %w", err)
	}
	if cfg.APIBaseURL == "" {
		return "", fmt.Errorf("%w: API_BASE_URL missing", ErrInvalidResponse)
	}
	return strings.TrimRight(cfg.APIBaseURL, "/"), nil
}

func (c *marketplaceClientImpl) BaseURL() string {
	return c.baseURL
}

func (c *marketplaceClientImpl) ListResources(ctx context.Context, filter model.Filter) (*dto.ResourcesResponse, error) {
	q := url.Values{}
	if filter.ClassGrade != "" {
		q.Set("class", filter.ClassGrade)
	}
	if filter.Subject != "" {
		q.Set("subject", filter.Subject)
	}
	path := "/resources"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	var res dto.ResourcesResponse
	if err := c.do(req, &res); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return &res, nil
}

func (c *marketplaceClientImpl) CountUsers(ctx context.Context) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return 0, err
	}
	var res dto.UsersResponse
	if err := c.do(req, &res); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return res.Count, nil
}

func (c *marketplaceClientImpl) Login(ctx context.Context, body dto.LoginRequest) (*model.Session, error) {
	var res dto.LoginResponse
	if err := c.postJSON(ctx, "/login", body, &res); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := checkResult(res.Result, "Sign in failed"); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if res.User == nil {
		return nil, fmt.Errorf("login: %w: user missing", ErrInvalidResponse)
	}
	return res.User, nil
}

func (c *marketplaceClientImpl) Register(ctx context.Context, body dto.RegisterRequest) error {
	var res dto.Result
	if err := c.postJSON(ctx, "/register", body, &res); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if err := checkResult(res, "Registration failed"); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (c *marketplaceClientImpl) ChangePassword(ctx context.Context, body dto.ChangePasswordRequest) error {
	var res dto.Result
	if err := c.postJSON(ctx, "/change_password", body, &res); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := checkResult(res, "Password update failed."); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (c *marketplaceClientImpl) RequestPasswordReset(ctx context.Context, body dto.PasswordResetRequest) (string, error) {
	var res dto.Result
	if err := c.postJSON(ctx, "/password-reset/request", body, &res); err != nil {
		return "", fmt.Errorf("request password reset: %w", err)
	}
	if err := checkResult(res, "Password reset request failed"); err != nil {
		return "", fmt.Errorf("request password reset: %w", err)
	}
	return res.Message, nil
}

func (c *marketplaceClientImpl) ConfirmPasswordReset(ctx context.Context, body dto.PasswordResetConfirmRequest) (string, error) {
	var res dto.Result
	if err := c.postJSON(ctx, "/password-reset/confirm", body, &res); err != nil {
		return "", fmt.Errorf("confirm password reset: %w", err)
	}
	if err := checkResult(res, "Password reset failed"); err != nil {
		return "", fmt.Errorf("confirm password reset: %w", err)
	}
	return res.Message, nil
}

func (c *marketplaceClientImpl) Upload(ctx context.Context, up dto.UploadRequest) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"resourceType", string(up.ResourceType)},
		{"classGrade", up.ClassGrade},
		{"subject", up.Subject},
		{"title", up.Title},
		{"description", up.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if len(up.Cover) > 0 {
		name := up.CoverName
		if name == "" {
			name = "cover.jpg"
		}
		part, err := w.CreateFormFile("cover", name)
		if err != nil {
			return fmt.Errorf("create cover part: %w", err)
		}
		if _, err := part.Write(up.Cover); err != nil {
			return fmt.Errorf("write cover: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var res dto.Result
	if err := c.do(req, &res); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	if err := checkResult(res, "Unknown error"); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

func (c *marketplaceClientImpl) DeleteResource(ctx context.Context, id model.ResourceID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/resource/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	var res dto.Result
	if err := c.do(req, &res); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if err := checkResult(res, "Delete failed"); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

// Pay issues the payment initiation request once. The response shape is interpreted by the caller.
func (c *marketplaceClientImpl) Pay(ctx context.Context, body dto.PayRequest) (*dto.PayResponse, error) {
	var res dto.PayResponse
	if err := c.postJSON(ctx, "/pay", body, &res); err != nil {
		return nil, fmt.Errorf("pay: %w", err)
	}
	return &res, nil
}

func (c *marketplaceClientImpl) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	return req, nil
}

func (c *marketplaceClientImpl) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *marketplaceClientImpl) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

// decode reads a JSON reply. Non-2xx JSON replies become *APIError carrying the backend's error text,
// non-JSON ones ErrInvalidResponse.
func decode(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrConnection, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var res dto.Result
		if err := json.Unmarshal(body, &res); err != nil {
			return fmt.Errorf("%w: status %d: %w", ErrInvalidResponse, resp.StatusCode, err)
		}
		return &APIError{Status: resp.StatusCode, Message: res.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func checkResult(res dto.Result, fallback string) error {
	if res.Success {
		return nil
	}
	msg := res.Error
	if msg == "" {
		msg = fallback
	}
	return &APIError{Status: http.StatusOK, Message: msg}
}

// defaultDiscoveryTimeout bounds the start-up GET /config call only.
const defaultDiscoveryTimeout = 10 * time.Second

// NewDiscoveryHTTPClient is the client used for endpoint discovery at start-up.
func NewDiscoveryHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultDiscoveryTimeout}
}
