package kis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"KisTrader/internal/domain/models"
	"KisTrader/pkg/config"
	xhttp "KisTrader/pkg/http"
	xlogger "KisTrader/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	mu        sync.Mutex
	refreshes int
	orders    int
	errors    int
}

func (m *countingMetrics) RecordTokenRefresh(string) {
	m.mu.Lock()
	m.refreshes++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordQuoteLatency(float64) {}
func (m *countingMetrics) RecordOrderSubmitted(string, string) {
	m.mu.Lock()
	m.orders++
	m.mu.Unlock()
}
func (m *countingMetrics) RecordLastPrice(string, float64) {}
func (m *countingMetrics) RecordError(string) {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

func mockConfig() *config.Config {
	cfg := &config.Config{}
	cfg.KIS.BaseURL = "http://unused"
	cfg.KIS.CustType = "P"
	cfg.KIS.Mode = "virtual"
	cfg.KIS.Mock = true
	cfg.KIS.TokenTTLStrategy = "short"
	cfg.KIS.CANO = "12345678"
	cfg.KIS.AcntPrdtCd = "01"
	return cfg
}

func TestAcquireCachesWithinTTL(t *testing.T) {
	m := &countingMetrics{}
	s := NewSession(mockConfig(), xhttp.NewClient(), m, xlogger.Nop())

	first, err := s.Acquire(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, MockToken, first.AccessToken)

	second, err := s.Acquire(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
	assert.Equal(t, 1, m.refreshes, "second acquire within TTL must not refresh")
}

func TestAcquireSingleRefreshUnderContention(t *testing.T) {
	m := &countingMetrics{}
	s := NewSession(mockConfig(), xhttp.NewClient(), m, xlogger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Acquire(context.Background(), "", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.refreshes, "N racing callers must cause exactly one refresh")
}

func TestTokenTTLKeepsSafetyMargin(t *testing.T) {
	s := NewSession(mockConfig(), xhttp.NewClient(), nil, xlogger.Nop())
	tok, err := s.Acquire(context.Background(), "", "")
	require.NoError(t, err)

	want := time.Now().UTC().Add(23 * time.Hour)
	assert.WithinDuration(t, want, tok.ExpiresAt, time.Minute)

	cfg := mockConfig()
	cfg.KIS.TokenTTLStrategy = "long"
	long := NewSession(cfg, xhttp.NewClient(), nil, xlogger.Nop())
	tok, err = long.Acquire(context.Background(), "", "")
	require.NoError(t, err)

	want = time.Now().UTC().Add((24*90 - 1) * time.Hour)
	assert.WithinDuration(t, want, tok.ExpiresAt, time.Minute)
}

func TestAcquireOverridesReplaceCredentialsWithoutInvalidating(t *testing.T) {
	m := &countingMetrics{}
	s := NewSession(mockConfig(), xhttp.NewClient(), m, xlogger.Nop())

	first, err := s.Acquire(context.Background(), "", "")
	require.NoError(t, err)

	second, err := s.Acquire(context.Background(), "new-key", "new-secret")
	require.NoError(t, err)
	assert.Equal(t, first.AccessToken, second.AccessToken, "live token survives a credential swap")
	assert.Equal(t, 1, m.refreshes)

	key, secret := s.Credentials()
	assert.Equal(t, "new-key", key)
	assert.Equal(t, "new-secret", secret)
}

func TestAcquireLiveExchange(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth2/tokenP", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"live-token"}`))
	}))
	defer srv.Close()

	cfg := mockConfig()
	cfg.KIS.Mock = false
	cfg.KIS.BaseURL = srv.URL
	s := NewSession(cfg, xhttp.NewClient(), nil, xlogger.Nop())

	tok, err := s.Acquire(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "live-token", tok.AccessToken)

	_, err = s.Acquire(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "cached token must not hit the exchange endpoint again")
}

func TestAcquireLiveRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error_description":"invalid credentials"}`))
	}))
	defer srv.Close()

	cfg := mockConfig()
	cfg.KIS.Mock = false
	cfg.KIS.BaseURL = srv.URL
	s := NewSession(cfg, xhttp.NewClient(), nil, xlogger.Nop())

	_, err := s.Acquire(context.Background(), "", "")
	var authErr *models.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusForbidden, authErr.Status)
	assert.Contains(t, authErr.Body, "invalid credentials")
}

func TestSetMode(t *testing.T) {
	s := NewSession(mockConfig(), xhttp.NewClient(), nil, xlogger.Nop())
	assert.Equal(t, "virtual", s.Mode())
	s.SetMode("real")
	assert.Equal(t, "real", s.Mode())
}
