package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"stock-forecaster/src/helpers"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/models"
)

// defaultMaxBodyBytes caps one response. Fifteen years of daily bars is well under 2MB.
const defaultMaxBodyBytes = 16 << 20

// NetworkManager issues GET requests for the data sources with retries,
// backoff and proxy rotation.
type NetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger
	BaseDelay    time.Duration
	MaxBodyBytes int64

	mu     sync.Mutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &NetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(log, proxies, cfg.Network.UserAgent),
		Logger:       log,
		BaseDelay:    time.Second,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) currentClient() *http.Client {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.client
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	nm.mu.Lock()
	nm.client = nm.createClient()
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and proxy rotation. 400 and 404
// responses are returned at once as terminal NetworkErrors.
func (nm *NetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqURL.RawQuery = q.Encode()
	finalURL := reqURL.String()

	attempt := 0
	body, err := helpers.RetryWithBackoff(ctx, nm.Logger, "GET "+reqURL.Host+reqURL.Path, nm.Config.Network.MaxRetries, nm.BaseDelay, func() ([]byte, error) {
		if attempt > 0 {
			nm.rotateProxy()
		}
		attempt++
		return nm.do(ctx, finalURL)
	})
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", reqURL.Host, err)
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (nm *NetworkManager) do(ctx context.Context, finalURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "application/json, text/csv, */*")

	resp, err := nm.currentClient().Do(req)
	if err != nil {
		return nil, &helpers.NetworkError{ForecasterError: helpers.ForecasterError{Message: "request failed", Cause: err}}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, &helpers.NetworkError{
			ForecasterError: helpers.ForecasterError{Message: fmt.Sprintf("bad status: %d", resp.StatusCode)},
			StatusCode:      resp.StatusCode,
			Terminal:        true,
		}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		nm.Logger.Info("Request blocked (%d). Rotating proxy.", resp.StatusCode)
		return nil, &helpers.NetworkError{
			ForecasterError: helpers.ForecasterError{Message: fmt.Sprintf("blocked (status %d)", resp.StatusCode)},
			StatusCode:      resp.StatusCode,
		}
	default:
		return nil, &helpers.NetworkError{
			ForecasterError: helpers.ForecasterError{Message: fmt.Sprintf("bad status: %d", resp.StatusCode)},
			StatusCode:      resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, nm.MaxBodyBytes+1))
	if err != nil {
		return nil, &helpers.NetworkError{ForecasterError: helpers.ForecasterError{Message: "read body", Cause: err}}
	}
	if int64(len(body)) > nm.MaxBodyBytes {
		return nil, &helpers.NetworkError{
			ForecasterError: helpers.ForecasterError{Message: fmt.Sprintf("response body exceeds %d bytes", nm.MaxBodyBytes)},
			Terminal:        true,
		}
	}
	return body, nil
}
