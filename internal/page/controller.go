package page

import (
	"context"
	"errors"
	"strings"
	"sync"

	"books-storefront/internal/model"
	"books-storefront/internal/service"

	"github.com/labstack/gommon/log"
)

// View is the auth-dependent and modal state a front end renders.
type View struct {
	User            *model.Session           `json:"user,omitempty"`
	Greeting        string                   `json:"greeting"`
	Modals          map[ModalName]ModalState `json:"modals"`
	Payment         service.PaymentState     `json:"payment_state"`
	Intent          *model.DownloadIntent    `json:"intent,omitempty"`
	Outcome         *service.PaymentOutcome  `json:"outcome,omitempty"`
	DownloadMessage string                   `json:"download_message,omitempty"`
	Listing         *model.Listing           `json:"listing,omitempty"`
}

// Controller owns the page state that handlers share: session, listing, download flow and modals.
type Controller struct {
	sessions service.SessionService
	catalog  service.CatalogService
	payments service.PaymentCoordinator
	modals   *Modals
	logger   *log.Logger

	mu              sync.RWMutex
	greeting        string
	listing         *model.Listing
	downloadMessage string
}

func NewController(
	sessions service.SessionService,
	catalog service.CatalogService,
	payments service.PaymentCoordinator,
	logger *log.Logger,
) *Controller {
	c := &Controller{
		sessions: sessions,
		catalog:  catalog,
		payments: payments,
		modals:   NewModals(),
		logger:   logger,
		greeting: greetingFor(nil),
	}
	sessions.OnChange(c.sessionChanged)
	return c
}

// Init restores the persisted session once, at start-up.
func (c *Controller) Init(ctx context.Context) error {
	if _, err := c.sessions.Restore(ctx); err != nil {
		c.logger.Errorf("restore session: %v", err)
		return err
	}
	return nil
}

func greetingFor(s *model.Session) string {
	if s == nil {
		return "Sign In | Register"
	}
	return "Welcome, " + s.Username + "!"
}

func (c *Controller) sessionChanged(s *model.Session) {
	c.mu.Lock()
	c.greeting = greetingFor(s)
	c.mu.Unlock()
	if s == nil {
		// a signed out user cannot keep a download open
		c.closeDownload()
	}
}

func (c *Controller) Greeting() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.greeting
}

func (c *Controller) Modals() *Modals {
	return c.modals
}

// DownloadClicked starts the download flow for a card. Without a session the sign-in modal opens instead.
func (c *Controller) DownloadClicked(resourceID model.ResourceID) (*model.DownloadIntent, error) {
	intent, err := c.payments.Begin(resourceID)
	if errors.Is(err, service.ErrUnauthenticated) {
		c.modals.Open(ModalSignIn)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	c.modals.Open(ModalDownload)
	c.setDownloadMessage("")
	return intent, nil
}

func (c *Controller) SubmitDownload(ctx context.Context, form model.DownloadForm) (*service.PaymentOutcome, error) {
	outcome, err := c.payments.Submit(ctx, form)
	if err != nil {
		c.setDownloadMessage(service.Message(err))
		return nil, err
	}
	c.setDownloadMessage(outcome.Message)
	return outcome, nil
}

// FollowDownloadLink records that the user went to the deferred link.
func (c *Controller) FollowDownloadLink(ctx context.Context) (*service.PaymentOutcome, error) {
	return c.payments.FollowLink(ctx)
}

func (c *Controller) OpenModal(name ModalName) error {
	_, err := c.modals.Open(name)
	return err
}

// CloseModal closes a dialog. Closing the download modal drops the intent.
func (c *Controller) CloseModal(name ModalName) error {
	if name == ModalDownload {
		c.closeDownload()
		return nil
	}
	_, err := c.modals.Close(name)
	return err
}

func (c *Controller) closeDownload() {
	c.payments.Close()
	c.modals.Close(ModalDownload)
	c.setDownloadMessage("")
}

func (c *Controller) SwitchToRegister() error {
	return c.modals.Switch(ModalSignIn, ModalRegister)
}

func (c *Controller) SwitchToSignIn() error {
	return c.modals.Switch(ModalRegister, ModalSignIn)
}

func (c *Controller) SignIn(ctx context.Context, username, password string) (*model.Session, error) {
	session, err := c.sessions.SignIn(ctx, username, password)
	if err != nil {
		return nil, err
	}
	c.modals.Close(ModalSignIn)
	return session, nil
}

func (c *Controller) Register(ctx context.Context, username, email, password string) (string, error) {
	msg, err := c.sessions.Register(ctx, username, email, password)
	if err != nil {
		return "", err
	}
	if err := c.SwitchToSignIn(); err != nil {
		return "", err
	}
	return msg, nil
}

func (c *Controller) SignOut(ctx context.Context) error {
	return c.sessions.SignOut(ctx)
}

func (c *Controller) Session() *model.Session {
	return c.sessions.Current()
}

// FindResources turns the class/subject pickers into a filter; both are required.
func (c *Controller) FindResources(class, subject string) (model.Filter, error) {
	class, subject = strings.TrimSpace(class), strings.TrimSpace(subject)
	if class == "" || subject == "" {
		return model.Filter{}, &service.UserError{Kind: service.ErrValidationFailed, Message: "Please select both class and subject"}
	}
	return model.Filter{ClassGrade: class, Subject: subject}, nil
}

// Refresh fetches and stores one full listing.
func (c *Controller) Refresh(ctx context.Context, filter model.Filter) (*model.Listing, error) {
	listing, err := c.catalog.ListResources(ctx, filter)
	c.render(listing, err)
	return listing, err
}

// Watch keeps the stored listing fresh until ctx is done.
func (c *Controller) Watch(ctx context.Context, filter model.Filter) {
	c.catalog.Watch(ctx, filter, c.render)
}

func (c *Controller) render(listing *model.Listing, err error) {
	if err != nil {
		c.logger.Warnf("render listing: %v", err)
	}
	if listing == nil {
		return
	}
	c.mu.Lock()
	c.listing = listing
	c.mu.Unlock()
}

func (c *Controller) Listing() *model.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listing
}

func (c *Controller) setDownloadMessage(msg string) {
	c.mu.Lock()
	c.downloadMessage = msg
	c.mu.Unlock()
}

func (c *Controller) View() View {
	c.mu.RLock()
	v := View{
		Greeting:        c.greeting,
		DownloadMessage: c.downloadMessage,
		Listing:         c.listing,
	}
	c.mu.RUnlock()

	v.User = c.sessions.Current()
	v.Modals = c.modals.Snapshot()
	v.Payment = c.payments.State()
	v.Intent = c.payments.Intent()
	v.Outcome = c.payments.Outcome()
	return v
}
