// Package auth implements the client side of the login protocol: it POSTs
// credentials to the login endpoint and maps the answer to an Outcome.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/models"
)

// DefaultEndpoint is the production login endpoint.
const DefaultEndpoint = "https://taxi.markadai.com/validate_login.php"

// Authenticator checks credentials against a remote login endpoint.
// Each call issues exactly one request; nothing is retried or cached.
type Authenticator struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithHTTPClient sets the client used for requests. Defaults to a client
// with no timeout, so the transport defaults apply.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Authenticator) {
		if c != nil {
			a.client = c
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.log = l
		}
	}
}

// New returns an Authenticator for endpoint. The endpoint is validated on
// each call, not here, so a bad value surfaces as a MalformedEndpoint outcome.
func New(endpoint string, opts ...Option) *Authenticator {
	a := &Authenticator{
		endpoint: endpoint,
		client:   &http.Client{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Endpoint returns the configured endpoint URL.
func (a *Authenticator) Endpoint() string { return a.endpoint }

// Submit starts a login attempt and returns a channel that receives exactly
// one Outcome and is then closed. The attempt cannot be cancelled.
func (a *Authenticator) Submit(creds models.LoginCredentials) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		out <- a.Authenticate(context.Background(), creds)
	}()
	return out
}

// Authenticate performs one login attempt and blocks until it completes.
// Empty identifier or secret are sent as-is.
func (a *Authenticator) Authenticate(ctx context.Context, creds models.LoginCredentials) Outcome {
	outcome := a.authenticate(ctx, creds)
	if outcome.OK() {
		u, _ := outcome.User()
		a.log.Debug("login succeeded", zap.String("endpoint", a.endpoint), zap.Int("user_id", u.ID))
	} else {
		a.log.Debug("login failed",
			zap.String("endpoint", a.endpoint),
			zap.Stringer("kind", outcome.Kind()),
			zap.Error(outcome.Err()),
		)
	}
	return outcome
}

func (a *Authenticator) authenticate(ctx context.Context, creds models.LoginCredentials) Outcome {
	target, err := parseEndpoint(a.endpoint)
	if err != nil {
		return Failure(MalformedEndpoint, msgInvalidURL, err)
	}

	payload, err := json.Marshal(models.LoginRequest{
		LoginInput: creds.Identifier,
		Password:   creds.Secret,
	})
	if err != nil {
		return Failure(DecodeFailure, msgDecodeFailure, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return Failure(MalformedEndpoint, msgInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	a.log.Debug("sending login request", zap.String("endpoint", a.endpoint))
	resp, err := a.client.Do(req)
	if err != nil {
		return Failure(TransportFailure, msgConnectionPref+err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failure(TransportFailure, msgConnectionPref+err.Error(), err)
	}

	if len(body) == 0 {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			err := fmt.Errorf("server returned %s", resp.Status)
			return Failure(TransportFailure, msgConnectionPref+err.Error(), err)
		}
		return Failure(EmptyResponse, msgEmptyResponse, nil)
	}

	return decodeOutcome(body)
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// wireResponse mirrors models.LoginResponse with every field optional so
// missing keys can be told apart from zero values.
type wireResponse struct {
	Success *bool     `json:"success"`
	Message *string   `json:"message"`
	User    *wireUser `json:"user"`
}

type wireUser struct {
	ID       *int    `json:"id"`
	Name     *string `json:"name"`
	Apellido *string `json:"apellido"`
	TypeU    *string `json:"typeu"`
	Status   *string `json:"status"`
}

var (
	errMissingSuccess = errors.New("response has no success field")
	errMissingUser    = errors.New("success response has no user")
	errIncompleteUser = errors.New("user object is missing fields")
)

func decodeOutcome(body []byte) Outcome {
	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return Failure(DecodeFailure, msgDecodeFailure, err)
	}
	if wr.Success == nil {
		return Failure(DecodeFailure, msgDecodeFailure, errMissingSuccess)
	}

	var user *models.User
	if wr.User != nil {
		u, err := wr.User.toModel()
		if err != nil {
			return Failure(DecodeFailure, msgDecodeFailure, err)
		}
		user = &u
	}

	if !*wr.Success {
		msg := msgUnknownError
		if wr.Message != nil {
			msg = *wr.Message
		}
		return Failure(RejectedCredentials, msg, nil)
	}

	if user == nil {
		return Failure(DecodeFailure, msgDecodeFailure, errMissingUser)
	}
	return Success(*user)
}

func (w *wireUser) toModel() (models.User, error) {
	if w.ID == nil || w.Name == nil || w.Apellido == nil || w.TypeU == nil || w.Status == nil {
		return models.User{}, errIncompleteUser
	}
	return models.User{
		ID:       *w.ID,
		Name:     *w.Name,
		Apellido: *w.Apellido,
		TypeU:    *w.TypeU,
		Status:   *w.Status,
	}, nil
}
