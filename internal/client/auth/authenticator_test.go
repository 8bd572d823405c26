package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/markadai/taxidispatch/internal/models"
)

// roundTripperFunc lets a test stand in for the network.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn, Timeout: time.Second}
}

func respond(status int, body string) roundTripperFunc {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	}
}

var johnCreds = models.LoginCredentials{Identifier: "john@x.com", Secret: "pw"}

func TestAuthenticate_ResponseMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantOK   bool
		wantUser models.User
		wantMsg  string
		wantKind ErrorKind
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"success":true,"message":null,"user":{"id":1,"name":"John","apellido":"Doe","typeu":"driver","status":"Active"}}`,
			wantOK:   true,
			wantUser: models.User{ID: 1, Name: "John", Apellido: "Doe", TypeU: "driver", Status: "Active"},
		},
		{
			name:     "success with message",
			status:   http.StatusOK,
			body:     `{"success":true,"message":"welcome back","user":{"id":7,"name":"Ana","apellido":"Perez","typeu":"admin","status":"Active"}}`,
			wantOK:   true,
			wantUser: models.User{ID: 7, Name: "Ana", Apellido: "Perez", TypeU: "admin", Status: "Active"},
		},
		{
			name:     "rejected with message",
			status:   http.StatusOK,
			body:     `{"success":false,"message":"Invalid credentials","user":null}`,
			wantMsg:  "Invalid credentials",
			wantKind: RejectedCredentials,
		},
		{
			name:     "rejected without message",
			status:   http.StatusOK,
			body:     `{"success":false,"user":null}`,
			wantMsg:  "Unknown error",
			wantKind: RejectedCredentials,
		},
		{
			name:     "rejected with null message",
			status:   http.StatusOK,
			body:     `{"success":false,"message":null,"user":null}`,
			wantMsg:  "Unknown error",
			wantKind: RejectedCredentials,
		},
		{
			name:     "rejected on error status keeps server message",
			status:   http.StatusUnauthorized,
			body:     `{"success":false,"message":"Invalid credentials","user":null}`,
			wantMsg:  "Invalid credentials",
			wantKind: RejectedCredentials,
		},
		{
			name:     "not json",
			status:   http.StatusOK,
			body:     `not json`,
			wantMsg:  "Failed to process server response",
			wantKind: DecodeFailure,
		},
		{
			name:     "json null",
			status:   http.StatusOK,
			body:     `null`,
			wantMsg:  "Failed to process server response",
			wantKind: DecodeFailure,
		},
		{
			name:     "missing success",
			status:   http.StatusOK,
			body:     `{"message":"hi"}`,
			wantMsg:  "Failed to process server response",
			wantKind: DecodeFailure,
		},
		{
			name:     "wrong type for id",
			status:   http.StatusOK,
			body:     `{"success":true,"user":{"id":"1","name":"John","apellido":"Doe","typeu":"driver","status":"Active"}}`,
			wantMsg:  "Failed to process server response",
			wantKind: DecodeFailure,
		},
		{
			name:     "user missing fields",
			status:   http.StatusOK,
			body:     `{"success":true,"user":{"id":1,"name":"John"}}`,
			wantMsg:  "Failed to process server response",
			wantKind: DecodeFailure,
		},
		{
			name:     "success without user",
			status:   http.StatusOK,
			body:     `{"success":true,"message":null,"user":null}`,
			wantMsg:  "Failed to process server response",
			wantKind: DecodeFailure,
		},
		{
			name:     "empty body",
			status:   http.StatusOK,
			body:     ``,
			wantMsg:  "Empty server response",
			wantKind: EmptyResponse,
		},
		{
			name:     "whitespace body",
			status:   http.StatusOK,
			body:     " \n",
			wantMsg:  "Failed to process server response",
			wantKind: DecodeFailure,
		},
		{
			name:     "error status without body",
			status:   http.StatusBadGateway,
			body:     ``,
			wantMsg:  "Connection error: server returned Bad Gateway",
			wantKind: TransportFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(DefaultEndpoint, WithHTTPClient(newTestClient(respond(tt.status, tt.body))))

			out := a.Authenticate(t.Context(), johnCreds)

			require.Equal(t, tt.wantOK, out.OK(), "message: %q", out.Message())
			if tt.wantOK {
				u, ok := out.User()
				require.True(t, ok)
				assert.Equal(t, tt.wantUser, u)
				assert.NoError(t, out.Err())
				assert.Empty(t, out.Message())
				return
			}
			assert.Equal(t, tt.wantMsg, out.Message())
			assert.Equal(t, tt.wantKind, out.Kind())
			require.Error(t, out.Err())
			assert.Equal(t, tt.wantMsg, out.Err().Error())
		})
	}
}

func TestAuthenticate_RequestShape(t *testing.T) {
	var (
		gotMethod string
		gotCT     string
		gotPath   string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":false,"message":"nope","user":null}`))
	}))
	defer srv.Close()

	a := New(srv.URL + "/validate_login.php")
	out := a.Authenticate(t.Context(), johnCreds)

	assert.Equal(t, "nope", out.Message())
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "/validate_login.php", gotPath)
	assert.Equal(t, map[string]any{"loginInput": "john@x.com", "password": "pw"}, gotBody)
}

func TestAuthenticate_EmptyFieldsAreSent(t *testing.T) {
	var raw []byte
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		raw, _ = io.ReadAll(req.Body)
		return respond(http.StatusOK, `{"success":false,"message":"Missing fields","user":null}`)(req)
	})

	out := New(DefaultEndpoint, WithHTTPClient(client)).Authenticate(t.Context(), models.LoginCredentials{})

	assert.JSONEq(t, `{"loginInput":"","password":""}`, string(raw))
	assert.Equal(t, "Missing fields", out.Message())
}

func TestAuthenticate_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := New(url + "/validate_login.php").Authenticate(t.Context(), johnCreds)

	assert.False(t, out.OK())
	assert.Equal(t, TransportFailure, out.Kind())
	assert.True(t, strings.HasPrefix(out.Message(), "Connection error: "), out.Message())
}

func TestAuthenticate_TransportErrorIsWrapped(t *testing.T) {
	netErr := errors.New("network down")
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, netErr
	})

	out := New(DefaultEndpoint, WithHTTPClient(client)).Authenticate(t.Context(), johnCreds)

	assert.Equal(t, TransportFailure, out.Kind())
	assert.Contains(t, out.Message(), "Connection error: ")
	assert.Contains(t, out.Message(), "network down")
	assert.ErrorIs(t, out.Err(), netErr)

	var authErr *Error
	require.ErrorAs(t, out.Err(), &authErr)
	assert.Equal(t, TransportFailure, authErr.Kind)
}

func TestAuthenticate_MalformedEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "://bad", "ftp://taxi.markadai.com/x", "https://"} {
		t.Run(endpoint, func(t *testing.T) {
			called := false
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				called = true
				return respond(http.StatusOK, `{}`)(req)
			})

			out := New(endpoint, WithHTTPClient(client)).Authenticate(t.Context(), johnCreds)

			assert.Equal(t, MalformedEndpoint, out.Kind())
			assert.Equal(t, "Invalid URL", out.Message())
			assert.False(t, called, "no request should be issued")
		})
	}
}

func TestAuthenticate_OneRequestPerCall(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return respond(http.StatusOK, `not json`)(req)
	})
	a := New(DefaultEndpoint, WithHTTPClient(client))

	a.Authenticate(t.Context(), johnCreds)
	a.Authenticate(t.Context(), johnCreds)

	assert.Equal(t, 2, calls)
}

func TestSubmit_DeliversOnceAndCloses(t *testing.T) {
	client := newTestClient(respond(http.StatusOK,
		`{"success":true,"message":null,"user":{"id":1,"name":"John","apellido":"Doe","typeu":"driver","status":"Active"}}`))
	a := New(DefaultEndpoint, WithHTTPClient(client))

	ch := a.Submit(johnCreds)

	select {
	case out, ok := <-ch:
		require.True(t, ok)
		u, ok := out.User()
		require.True(t, ok)
		assert.Equal(t, 1, u.ID)
		assert.Equal(t, "John", u.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome delivered")
	}

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after the outcome")
}

func TestAuthenticate_NeverLogsPassword(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	client := newTestClient(respond(http.StatusOK, `{"success":false,"message":"Invalid credentials","user":null}`))
	a := New(DefaultEndpoint, WithHTTPClient(client), WithLogger(zap.New(core)))

	a.Authenticate(t.Context(), models.LoginCredentials{Identifier: "john@x.com", Secret: "s3cr3t-pass"})

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, "s3cr3t-pass")
		for _, v := range entry.ContextMap() {
			assert.NotContains(t, toString(v), "s3cr3t-pass")
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("login failed").Len())
}

func toString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "transport_failure", TransportFailure.String())
	assert.Equal(t, "rejected_credentials", RejectedCredentials.String())
	assert.Equal(t, "kind(42)", ErrorKind(42).String())
}
