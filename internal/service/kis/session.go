package kis

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"KisTrader/internal/domain/models"
	drepo "KisTrader/internal/domain/repository"
	"KisTrader/pkg/config"
	xhttp "KisTrader/pkg/http"
	xlogger "KisTrader/pkg/logger"
)

// MockToken is the sentinel returned by mock-mode sessions.
const MockToken = "MOCK_TOKEN"

// Session owns the single brokerage credential/token pair. It is the only
// state shared across requests; the mutex serializes the check-then-fetch
// sequence so N racing callers cause exactly one refresh.
type Session struct {
	httpc    *xhttp.Client
	baseURL  string
	custType string
	strategy string
	mock     bool
	metrics  drepo.Metrics
	log      *xlogger.Logger

	mu        sync.Mutex
	appKey    string
	appSecret string
	mode      string
	token     string
	expires   time.Time
}

// NewSession creates the shared credential session from config.
func NewSession(cfg *config.Config, httpc *xhttp.Client, m drepo.Metrics, l *xlogger.Logger) *Session {
	return &Session{
		httpc:     httpc,
		baseURL:   cfg.KIS.BaseURL,
		custType:  cfg.KIS.CustType,
		strategy:  cfg.KIS.TokenTTLStrategy,
		mock:      cfg.KIS.Mock,
		metrics:   m,
		log:       l,
		appKey:    cfg.KIS.AppKey,
		appSecret: cfg.KIS.AppSecret,
		mode:      cfg.KIS.Mode,
	}
}

var _ drepo.TokenProvider = (*Session)(nil)

type tokenExchangeBody struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

type tokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
}

// Acquire returns the cached token while it is valid, otherwise refreshes.
// Overrides permanently replace the stored credentials before the cache
// check; replacing them does not by itself invalidate a live token.
func (s *Session) Acquire(ctx context.Context, overrideKey, overrideSecret string) (models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if overrideKey != "" {
		s.appKey = overrideKey
	}
	if overrideSecret != "" {
		s.appSecret = overrideSecret
	}

	now := time.Now().UTC()
	if s.token != "" && now.Before(s.expires) {
		return models.Token{AccessToken: s.token, ExpiresAt: s.expires}, nil
	}

	if s.mock {
		s.token = MockToken
		s.expires = now.Add(s.ttl())
		if s.metrics != nil {
			s.metrics.RecordTokenRefresh(s.mode)
		}
		return models.Token{AccessToken: s.token, ExpiresAt: s.expires}, nil
	}

	resp, err := s.httpc.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     s.baseURL + "/oauth2/tokenP",
		Headers: map[string]string{"content-type": "application/json"},
		Body:    tokenExchangeBody{GrantType: "client_credentials", AppKey: s.appKey, AppSecret: s.appSecret},
	})
	if err != nil {
		return models.Token{}, &models.AuthError{Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		s.log.Error("token exchange rejected",
			xlogger.Int("status", resp.StatusCode),
			xlogger.String("body", string(raw)),
		)
		return models.Token{}, &models.AuthError{Status: resp.StatusCode, Body: string(raw)}
	}

	var tr tokenExchangeResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return models.Token{}, &models.AuthError{Status: resp.StatusCode, Body: err.Error()}
	}

	s.token = tr.AccessToken
	s.expires = now.Add(s.ttl())
	if s.metrics != nil {
		s.metrics.RecordTokenRefresh(s.mode)
	}
	s.log.Info("token refreshed", xlogger.String("mode", s.mode))
	return models.Token{AccessToken: s.token, ExpiresAt: s.expires}, nil
}

// ttl keeps a one-hour safety margin against clock skew.
func (s *Session) ttl() time.Duration {
	hours := 24
	if s.strategy == "long" {
		hours = 24 * 90
	}
	return time.Duration(hours-1) * time.Hour
}

// Mode reports the current trading mode (real or virtual).
func (s *Session) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches between real and virtual trading.
func (s *Session) SetMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Credentials returns the current app key/secret pair for request headers.
func (s *Session) Credentials() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appKey, s.appSecret
}

// CustType returns the customer type header value.
func (s *Session) CustType() string { return s.custType }
