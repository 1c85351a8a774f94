package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Tokens are refreshed this long before their reported expiry so an in-flight
// search never carries a token that lapses mid-call.
const tokenExpiryBuffer = 300 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenSource fetches and caches an OAuth2 client-credentials token.
// Safe for concurrent use.
type TokenSource struct {
	client       *http.Client
	provider     string
	tokenURL     string
	clientID     string
	clientSecret string

	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
}

func NewTokenSource(client *http.Client, provider, tokenURL, clientID, clientSecret string) *TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenSource{
		client:       client,
		provider:     provider,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// Token returns the cached access token, refreshing it when less than the
// expiry buffer remains.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiry) {
		return s.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &TransportError{Provider: s.provider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Provider: s.provider, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthenticationError{Provider: s.provider, Detail: "token endpoint returned " + resp.Status}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", &ResponseFormatError{Provider: s.provider, Err: err}
	}
	if tr.AccessToken == "" {
		return "", &AuthenticationError{Provider: s.provider, Detail: "token endpoint returned no access token"}
	}

	s.token = tr.AccessToken
	s.expiry = s.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryBuffer)
	return s.token, nil
}
