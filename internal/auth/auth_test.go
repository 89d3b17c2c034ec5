package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	cfg := NewConfig("id", "secret", "http://localhost/oauth")

	tk, err := NewToken(cfg, path)
	require.NoError(t, err)

	_, err = tk.OAuthToken()
	require.ErrorIs(t, err, ErrTokenNotSet)

	require.NoError(t, tk.Persist())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing is written without a token")

	tk.token = &oauth2.Token{AccessToken: "access-1234", TokenType: "Bearer"}
	require.NoError(t, tk.Persist())

	loaded, err := NewToken(cfg, path)
	require.NoError(t, err)
	got, err := loaded.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "access-1234", got.AccessToken)
}

func TestStateIsSingleUseAndExpires(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tk, err := NewToken(NewConfig("id", "secret", "http://localhost/oauth"), "")
	require.NoError(t, err)
	tk.now = func() time.Time { return now }

	u, err := tk.AuthCodeURL()
	require.NoError(t, err)
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Contains(t, parsed.Query().Get("scope"), "gmail.send")

	assert.True(t, tk.consumeState(state))
	assert.False(t, tk.consumeState(state))
	assert.False(t, tk.consumeState(""))

	state2, err := tk.newState()
	require.NoError(t, err)
	now = now.Add(stateTTL + time.Second)
	assert.False(t, tk.consumeState(state2))

	err = tk.AuthorizeCode(context.Background(), "code", "unknown")
	assert.ErrorIs(t, err, ErrInvalidState)
}

type tokMock struct {
	url     string
	token   *oauth2.Token
	authErr error
	gotCode string
}

func (m *tokMock) AuthorizeCode(_ context.Context, code, _ string) error {
	m.gotCode = code
	return m.authErr
}

func (m *tokMock) OAuthToken() (*oauth2.Token, error) {
	if m.token == nil {
		return nil, ErrTokenNotSet
	}
	return m.token, nil
}

func (m *tokMock) AuthCodeURL() (string, error) {
	return m.url, nil
}

func TestHTTPHandler(t *testing.T) {
	m := &tokMock{url: "https://accounts.example/consent"}
	h := NewHTTPHandler(m)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?redirect=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, m.url, rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?code=abc&state=s", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "abc", m.gotCode)

	m.authErr = ErrInvalidState
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth?code=abc&state=s", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	m.token = &oauth2.Token{AccessToken: "secret-token-9876", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "XXXXXXXXXXXXX9876")
	assert.NotContains(t, rec.Body.String(), "secret-token")
}
