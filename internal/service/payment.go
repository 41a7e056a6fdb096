package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"books-storefront/internal/client"
	"books-storefront/internal/config"
	"books-storefront/internal/dto"
	"books-storefront/internal/metrics"
	"books-storefront/internal/model"
	"books-storefront/internal/repository"

	"github.com/labstack/gommon/log"
)

type PaymentState int

const (
	StateIdle PaymentState = iota
	StateIntentCollected
	StatePaymentInitiating
	StatePaymentPendingExternal
	StateTestPaymentSucceeded
	StateAwaitingUserReturn
	StateTerminal
)

func (s PaymentState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateIntentCollected:
		return "IntentCollected"
	case StatePaymentInitiating:
		return "PaymentInitiating"
	case StatePaymentPendingExternal:
		return "PaymentPendingExternal"
	case StateTestPaymentSucceeded:
		return "TestPaymentSucceeded"
	case StateAwaitingUserReturn:
		return "AwaitingUserReturn"
	case StateTerminal:
		return "Terminal"
	}
	return fmt.Sprintf("PaymentState(%d)", int(s))
}

func (s PaymentState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// transitions lists the moves allowed outside Close, which may leave any state.
var transitions = map[PaymentState][]PaymentState{
	StateIdle:                   {StateIntentCollected},
	StateIntentCollected:        {StatePaymentInitiating},
	StatePaymentInitiating:      {StateTestPaymentSucceeded, StatePaymentPendingExternal, StateIntentCollected},
	StateTestPaymentSucceeded:   {StateTerminal},
	StatePaymentPendingExternal: {StateAwaitingUserReturn},
	StateAwaitingUserReturn:     {StateTerminal},
	StateTerminal:               {},
}

func canTransition(from, to PaymentState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Opener opens a URL in a new browsing context without blocking on it.
type Opener interface {
	Open(ctx context.Context, rawURL string) error
}

// PaymentOutcome is what the download modal shows once a payment has been initiated.
type PaymentOutcome struct {
	State           PaymentState          `json:"state"`
	Kind            model.TransactionKind `json:"kind"`
	Message         string                `json:"message"`
	Link            string                `json:"link"`
	LinkText        string                `json:"link_text"`
	PaymentURL      string                `json:"payment_url,omitempty"`
	OrderTrackingID string                `json:"order_tracking_id"`
}

type PaymentCoordinator interface {
	State() PaymentState
	Intent() *model.DownloadIntent
	Outcome() *PaymentOutcome
	Begin(resourceID model.ResourceID) (*model.DownloadIntent, error)
	Submit(ctx context.Context, form model.DownloadForm) (*PaymentOutcome, error)
	FollowLink(ctx context.Context) (*PaymentOutcome, error)
	Close()
}

type paymentCoordinatorImpl struct {
	marketplace client.MarketplaceClient
	sessions    SessionService
	opener      Opener
	txnRepo     repository.TransactionRepository
	cfg         config.Payment
	amount      model.Amount
	logger      *log.Logger

	mu      sync.Mutex
	state   PaymentState
	intent  *model.DownloadIntent
	outcome *PaymentOutcome
}

func NewPaymentCoordinator(
	marketplace client.MarketplaceClient,
	sessions SessionService,
	opener Opener,
	txnRepo repository.TransactionRepository,
	paymentCfg *config.Payment,
	amount model.Amount,
	logger *log.Logger,
) PaymentCoordinator {
	return &paymentCoordinatorImpl{
		marketplace: marketplace,
		sessions:    sessions,
		opener:      opener,
		txnRepo:     txnRepo,
		cfg:         *paymentCfg,
		amount:      amount,
		logger:      logger,
		state:       StateIdle,
	}
}

func (c *paymentCoordinatorImpl) State() PaymentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *paymentCoordinatorImpl) Intent() *model.DownloadIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intent == nil {
		return nil
	}
	cp := *c.intent
	return &cp
}

func (c *paymentCoordinatorImpl) Outcome() *PaymentOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome == nil {
		return nil
	}
	cp := *c.outcome
	return &cp
}

// Begin opens a download intent for resourceID, discarding any previous one.
func (c *paymentCoordinatorImpl) Begin(resourceID model.ResourceID) (*model.DownloadIntent, error) {
	session := c.sessions.Current()
	if session == nil {
		return nil, newUserError(ErrUnauthenticated, "Please sign in to download resources.", nil)
	}
	if resourceID.Empty() {
		return nil, newUserError(ErrResourceNotFound, "Resource ID not found.", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	c.intent = model.NewDownloadIntent(resourceID, model.DownloadForm{
		Name:  session.Username,
		Email: session.Email,
	})
	if err := c.transition(StateIntentCollected); err != nil {
		return nil, err
	}

	cp := *c.intent
	return &cp, nil
}

// Submit issues exactly one payment initiation for the current intent.
func (c *paymentCoordinatorImpl) Submit(ctx context.Context, form model.DownloadForm) (*PaymentOutcome, error) {
	c.mu.Lock()
	if c.intent == nil || c.state == StateIdle {
		c.mu.Unlock()
		return nil, newUserError(ErrResourceNotFound, "No resource selected.", nil)
	}
	if c.state != StateIntentCollected {
		state := c.state
		c.mu.Unlock()
		return nil, newUserError(ErrInvalidTransition, "Payment is already in progress.", fmt.Errorf("submit in state %s", state))
	}
	if err := validateStruct(form, "Please fill in all fields."); err != nil {
		c.mu.Unlock()
		metrics.PaymentInitiations.WithLabelValues("validation_failed").Inc()
		return nil, err
	}

	c.intent.Form = form
	if err := c.transition(StatePaymentInitiating); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	intent := *c.intent
	c.mu.Unlock()

	res, err := c.marketplace.Pay(ctx, dto.PayRequest{
		ResourceID: intent.ResourceID,
		Email:      form.Email,
		Amount:     c.amount,
		Name:       form.Name,
		Phone:      form.Phone,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	// The modal was closed or another resource was chosen while the request was in flight.
	if c.intent == nil || c.intent.ID != intent.ID || c.state != StatePaymentInitiating {
		c.logger.Infof("dropping payment reply for discarded intent %s", intent.ID)
		if err == nil {
			c.record(ctx, &intent, res, c.classify(res))
		}
		return nil, newUserError(ErrInvalidTransition, "The download was cancelled.", nil)
	}

	if err != nil {
		if tErr := c.transition(StateIntentCollected); tErr != nil {
			return nil, tErr
		}
		metrics.PaymentInitiations.WithLabelValues("failed").Inc()
		c.logger.Warnf("initiate payment for resource %s: %v", intent.ResourceID, err)
		return nil, c.initiationError(err)
	}

	switch c.classify(res) {
	case model.TransactionTest:
		return c.completeTest(ctx, &intent, res)
	case model.TransactionExternal:
		return c.handOff(ctx, &intent, res)
	}

	if err := c.transition(StateIntentCollected); err != nil {
		return nil, err
	}
	if res.Error != "" {
		metrics.PaymentInitiations.WithLabelValues("failed").Inc()
		return nil, newUserError(ErrPaymentInitiationFailed, res.Error, nil)
	}
	metrics.PaymentInitiations.WithLabelValues("unexpected_shape").Inc()
	c.logger.Warnf("unexpected payment response for resource %s: %+v", intent.ResourceID, *res)
	return nil, newUserError(ErrUnexpectedResponseShape, "Failed to initiate payment.", nil)
}

// classify checks the test marker before the payment URL.
func (c *paymentCoordinatorImpl) classify(res *dto.PayResponse) model.TransactionKind {
	if res.Success && res.Message != "" && strings.Contains(res.Message, c.cfg.TestMarker) {
		return model.TransactionTest
	}
	if res.PaymentURL != "" {
		return model.TransactionExternal
	}
	return ""
}

func (c *paymentCoordinatorImpl) completeTest(ctx context.Context, intent *model.DownloadIntent, res *dto.PayResponse) (*PaymentOutcome, error) {
	if err := c.transition(StateTestPaymentSucceeded); err != nil {
		return nil, err
	}
	outcome := &PaymentOutcome{
		Kind:            model.TransactionTest,
		Message:         res.Message,
		Link:            c.downloadLink(intent.ResourceID, intent.Form.Email, res.OrderTrackingID),
		LinkText:        "Click here to download your resource",
		OrderTrackingID: res.OrderTrackingID,
	}
	if err := c.transition(StateTerminal); err != nil {
		return nil, err
	}
	outcome.State = c.state
	c.outcome = outcome

	metrics.PaymentInitiations.WithLabelValues("test_success").Inc()
	c.record(ctx, intent, res, model.TransactionTest)

	cp := *outcome
	return &cp, nil
}

func (c *paymentCoordinatorImpl) handOff(ctx context.Context, intent *model.DownloadIntent, res *dto.PayResponse) (*PaymentOutcome, error) {
	if err := c.transition(StatePaymentPendingExternal); err != nil {
		return nil, err
	}
	if c.opener != nil {
		if err := c.opener.Open(ctx, res.PaymentURL); err != nil {
			c.logger.Warnf("open payment page %s: %v", res.PaymentURL, err)
		}
	}

	outcome := &PaymentOutcome{
		Kind:            model.TransactionExternal,
		Message:         "After completing payment, click here to download your resource.",
		Link:            c.downloadLink(intent.ResourceID, intent.Form.Email, res.OrderTrackingID),
		LinkText:        "click here to download your resource",
		PaymentURL:      res.PaymentURL,
		OrderTrackingID: res.OrderTrackingID,
	}
	if err := c.transition(StateAwaitingUserReturn); err != nil {
		return nil, err
	}
	outcome.State = c.state
	c.outcome = outcome

	metrics.PaymentInitiations.WithLabelValues("external").Inc()
	c.record(ctx, intent, res, model.TransactionExternal)

	cp := *outcome
	return &cp, nil
}

// FollowLink marks the deferred link as followed. Nothing is verified here.
func (c *paymentCoordinatorImpl) FollowLink(ctx context.Context) (*PaymentOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outcome == nil {
		return nil, newUserError(ErrInvalidTransition, "No download link available.", nil)
	}
	if c.state == StateAwaitingUserReturn {
		if err := c.transition(StateTerminal); err != nil {
			return nil, err
		}
		c.outcome.State = c.state
	}
	if c.txnRepo != nil && c.outcome.OrderTrackingID != "" {
		if err := c.txnRepo.MarkFollowed(ctx, c.outcome.OrderTrackingID); err != nil {
			c.logger.Warnf("mark transaction %s followed: %v", c.outcome.OrderTrackingID, err)
		}
	}

	cp := *c.outcome
	return &cp, nil
}

// Close drops the intent and any outcome from whatever state the coordinator is in.
func (c *paymentCoordinatorImpl) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *paymentCoordinatorImpl) reset() {
	c.state = StateIdle
	c.intent = nil
	c.outcome = nil
}

// transition must be called with mu held.
func (c *paymentCoordinatorImpl) transition(to PaymentState) error {
	if !canTransition(c.state, to) {
		return newUserError(ErrInvalidTransition, "Invalid payment state.", fmt.Errorf("%s -> %s", c.state, to))
	}
	c.state = to
	return nil
}

// initiationError keeps the backend's reason. A reply without one reads "Failed to initiate payment.",
// anything that never produced a JSON reply "Failed to connect to payment API.".
func (c *paymentCoordinatorImpl) initiationError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return newUserError(ErrPaymentInitiationFailed, apiErr.Message, err)
		}
		return newUserError(ErrPaymentInitiationFailed, "Failed to initiate payment.", err)
	}
	return newUserError(ErrPaymentInitiationFailed, "Failed to connect to payment API.", err)
}

func (c *paymentCoordinatorImpl) record(ctx context.Context, intent *model.DownloadIntent, res *dto.PayResponse, kind model.TransactionKind) {
	if c.txnRepo == nil || kind == "" {
		return
	}
	if res.OrderTrackingID == "" {
		c.logger.Warnf("payment for resource %s returned no tracking id", intent.ResourceID)
		return
	}
	err := c.txnRepo.Create(ctx, &model.PaymentTransaction{
		OrderTrackingID: res.OrderTrackingID,
		IntentID:        intent.ID,
		ResourceID:      intent.ResourceID.String(),
		Email:           intent.Form.Email,
		Kind:            kind,
		PaymentURL:      res.PaymentURL,
		DownloadLink:    c.downloadLink(intent.ResourceID, intent.Form.Email, res.OrderTrackingID),
	})
	if err != nil {
		c.logger.Errorf("record transaction %s: %v", res.OrderTrackingID, err)
	}
}

func (c *paymentCoordinatorImpl) downloadLink(resourceID model.ResourceID, email, orderTrackingID string) string {
	return DownloadLink(c.cfg.SuccessPageURL, resourceID, email, orderTrackingID)
}

// DownloadLink builds the download-success link with a fixed parameter order.
func DownloadLink(successPage string, resourceID model.ResourceID, email, orderTrackingID string) string {
	sep := "?"
	if strings.Contains(successPage, "?") {
		sep = "&"
	}
	return successPage + sep +
		"resource_id=" + EncodeURIComponent(resourceID.String()) +
		"&email=" + EncodeURIComponent(email) +
		"&orderTrackingId=" + EncodeURIComponent(orderTrackingID)
}

var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s the way browsers escape a URI component.
func EncodeURIComponent(s string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(s))
}
