// Package console is the presentation engine of the ministranci admin console.
//
// A Console renders backend data into the containers of a Document, guards
// destructive actions behind confirmations and drives exports and imports.
// It never touches a browser or a terminal directly: every interaction goes
// through the UI a driver supplies, and every datum comes from sdk.Backend.
package console

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/celerix-dev/ministranci-console/pkg/sdk"
)

// ErrCancelled is returned when the user declines a confirmation or a prompt.
var ErrCancelled = errors.New("cancelled by user")

// Console is built per interaction; state that must survive lives in Session.
type Console struct {
	backend  sdk.Backend
	ui       UI
	doc      *Document
	sess     *Session
	logger   *zap.Logger
	now      func() time.Time
	validate *validator.Validate
	views    *Views

	formsWired bool
}

// Option configures a Console.
type Option func(*Console)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Console) { c.logger = logger }
}

// WithClock replaces time.Now, used for dates in file names and inputs.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// WithViews replaces the default templates.
func WithViews(v *Views) Option {
	return func(c *Console) { c.views = v }
}

func New(backend sdk.Backend, ui UI, doc *Document, sess *Session, opts ...Option) *Console {
	c := &Console{
		backend:  backend,
		ui:       ui,
		doc:      doc,
		sess:     sess,
		logger:   zap.NewNop(),
		now:      time.Now,
		validate: validate,
		views:    defaultViews,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var validate = validator.New()

func (c *Console) Document() *Document { return c.doc }
func (c *Console) Session() *Session   { return c.sess }

// today is the current UTC date in ISO form.
func (c *Console) today() string {
	return c.now().UTC().Format(time.DateOnly)
}

// alertFailure shows the single alert a failed mutation produces. Backend
// rejections show the backend's message; anything else is a connection error.
func (c *Console) alertFailure(err error) {
	var rejected *sdk.RejectedError
	if errors.As(err, &rejected) {
		msg := rejected.Message
		if msg == "" {
			msg = "Spróbuj ponownie"
		}
		c.ui.Alert("❌ Błąd: " + msg)
		return
	}
	c.ui.Alert("❌ Błąd połączenia: " + err.Error())
}

// confirm asks message and maps a refusal to ErrCancelled.
func (c *Console) confirm(message string) error {
	if !c.ui.Confirm(message) {
		return ErrCancelled
	}
	return nil
}

func zapUser(username string) zap.Field {
	return zap.String("username", username)
}
