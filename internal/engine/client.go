package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lexora/translation-gateway/internal/translator"
	"github.com/lexora/translation-gateway/pkg/logger"
	"github.com/valyala/fasthttp"
)

var ErrNoAvailableProviders = errors.New("no available translation providers")

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type TranslateResponse struct {
	Text       string `json:"text"`
	EngineID   string `json:"engine_id"`
	DurationMs int64  `json:"duration_ms"`
}

type ProviderState int32

const (
	StateHealthy ProviderState = iota
	StateCircuitOpen
)

// Provider is one upstream translation engine endpoint.
type Provider struct {
	name             string
	url              string
	client           *fasthttp.Client
	weight           int
	consecutiveFails atomic.Int32
	totalRequests    atomic.Int64
	failedRequests   atomic.Int64
	state            atomic.Int32
	circuitOpenUntil atomic.Int64
}

func NewProvider(name, url string, weight int, client *fasthttp.Client) *Provider {
	p := &Provider{name: name, url: url, weight: weight, client: client}
	p.state.Store(int32(StateHealthy))
	return p
}

func (p *Provider) IsAvailable() bool {
	if ProviderState(p.state.Load()) == StateCircuitOpen {
		if time.Now().Unix() > p.circuitOpenUntil.Load() {
			p.state.Store(int32(StateHealthy))
			p.consecutiveFails.Store(0)
			return true
		}
		return false
	}
	return true
}

func (p *Provider) recordSuccess() {
	p.totalRequests.Add(1)
	p.consecutiveFails.Store(0)
}

func (p *Provider) recordFailure() {
	p.totalRequests.Add(1)
	p.failedRequests.Add(1)
	p.consecutiveFails.Add(1)
}

type ProviderConfig struct {
	Name   string
	URL    string
	Weight int
}

type Config struct {
	Providers               []ProviderConfig
	Timeout                 time.Duration
	MaxRetries              int
	RetryDelay              time.Duration
	MaxConns                int
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
}

// Client fans translation calls out to the configured engines with
// failover and a per-provider circuit breaker. It satisfies
// translator.Translator so the worker can swap it in for the builtin
// dictionary.
type Client struct {
	config    *Config
	providers []*Provider
	mu        sync.RWMutex
}

func NewClient(config *Config) (*Client, error) {
	if config == nil || len(config.Providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.CircuitBreakerThreshold == 0 {
		config.CircuitBreakerThreshold = 5
	}
	if config.CircuitBreakerTimeout == 0 {
		config.CircuitBreakerTimeout = time.Minute
	}

	c := &Client{config: config}
	for _, pc := range config.Providers {
		httpClient := &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		}
		c.providers = append(c.providers, NewProvider(pc.Name, pc.URL, pc.Weight, httpClient))
		logger.Info("Engine provider initialized", "name", pc.Name, "url", pc.URL, "weight", pc.Weight)
	}
	return c, nil
}

// selectProvider picks the available provider with the highest weight.
func (c *Client) selectProvider() (*Provider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var best *Provider
	for _, p := range c.providers {
		if !p.IsAvailable() {
			continue
		}
		if best == nil || p.weight > best.weight {
			best = p
		}
	}
	if best == nil {
		return nil, ErrNoAvailableProviders
	}
	return best, nil
}

// Translate implements translator.Translator against the HTTP engines.
// A 422 from the engine means the pair is unsupported and is terminal;
// everything else is retried across providers up to MaxRetries.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := json.Marshal(TranslateRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", translator.ErrTranslationFailed
			case <-time.After(c.config.RetryDelay):
			}
		}

		provider, err := c.selectProvider()
		if err != nil {
			lastErr = err
			continue
		}

		respBody, status, err := c.doRequest(ctx, provider, body)
		if err != nil {
			provider.recordFailure()
			c.checkCircuitBreaker(provider)
			logger.Warn("Engine request failed, retrying", "error", err, "provider", provider.name, "attempt", attempt+1)
			lastErr = err
			continue
		}

		if status == fasthttp.StatusUnprocessableEntity {
			provider.recordSuccess()
			return "", translator.ErrUnsupportedLanguagePair
		}
		if status != fasthttp.StatusOK {
			provider.recordFailure()
			c.checkCircuitBreaker(provider)
			lastErr = fmt.Errorf("unexpected status code %d", status)
			continue
		}

		provider.recordSuccess()
		var resp TranslateResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return "", translator.ErrTranslationFailed
		}
		return resp.Text, nil
	}

	logger.Error("Engine translate exhausted retries", "error", lastErr)
	return "", translator.ErrTranslationFailed
}

func (c *Client) doRequest(ctx context.Context, provider *Provider, body []byte) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(provider.url + "/api/v1/translate")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}
	if err := provider.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, resp.StatusCode(), nil
}

func (c *Client) checkCircuitBreaker(provider *Provider) {
	if provider.consecutiveFails.Load() >= c.config.CircuitBreakerThreshold {
		provider.state.Store(int32(StateCircuitOpen))
		provider.circuitOpenUntil.Store(time.Now().Add(c.config.CircuitBreakerTimeout).Unix())
		logger.Warn("Circuit breaker opened", "provider", provider.name, "timeout", c.config.CircuitBreakerTimeout)
	}
}
