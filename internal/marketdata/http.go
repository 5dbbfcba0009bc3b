package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"position-sizer/internal/errors"
	"position-sizer/internal/models"
	"position-sizer/pkg/utils"
)

// HTTPConfig configures an HTTPProvider.
type HTTPConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Retry     utils.RetryConfig

	// Consecutive failed fetches before the provider stops calling the
	// endpoint for BreakerCooldown. Zero uses 5; negative disables.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// HTTPProvider fetches candles from a JSON endpoint:
//
//	GET {base}/candles?symbol=AAPL&limit=30 -> {"symbol":"AAPL","candles":[{timestamp,open,high,low,close,volume}]}
type HTTPProvider struct {
	client  *resty.Client
	limiter *RateLimiter
	breaker *Breaker
	retry   utils.RetryConfig
	log     zerolog.Logger
}

type candlesResponse struct {
	Symbol  string          `json:"symbol"`
	Candles []models.Candle `json:"candles"`
}

// statusError carries a non-2xx response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.code, e.body)
}

// NewHTTPProvider creates a provider for cfg.BaseURL.
func NewHTTPProvider(cfg HTTPConfig, log zerolog.Logger) *HTTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = utils.DefaultRetryConfig()
	}
	cfg.Retry.Retryable = isRetryable

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}

	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	var limiter *RateLimiter
	if cfg.RateLimit > 0 {
		limiter = NewRateLimiter(cfg.RateLimit, int(cfg.RateLimit)+1)
	}

	return &HTTPProvider{
		client:  client,
		limiter: limiter,
		breaker: NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		retry:   cfg.Retry,
		log:     log.With().Str("component", "http_provider").Logger(),
	}
}

// Candles implements Provider.
func (p *HTTPProvider) Candles(ctx context.Context, symbol string, limit int) (models.Series, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	params := map[string]string{"symbol": symbol}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	if err := p.breaker.Allow(); err != nil {
		p.log.Debug().Str("symbol", symbol).Msg("Candle fetch skipped, circuit open")
		return nil, errors.NewDataError("candles", symbol, "fetch skipped", err)
	}

	start := time.Now()
	body, err := utils.RetryWithResult(ctx, p.retry, func() (*candlesResponse, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var out candlesResponse
		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(&out).
			Get("/candles")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, &statusError{code: resp.StatusCode(), body: resp.String()}
		}
		return &out, nil
	})

	event := p.log.Debug().
		Str("symbol", symbol).
		Int("limit", limit).
		Dur("duration", time.Since(start))
	if err != nil {
		event.Err(err).Msg("Candle fetch failed")
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			p.breaker.Record(false)
			return nil, errors.NewDataError("candles", symbol, "unknown symbol", errors.ErrDataNotFound)
		}
		// Client errors and cancellations say nothing about the endpoint's health.
		p.breaker.Record(isRetryable(err))
		return nil, errors.NewDataError("candles", symbol, "fetch failed", fmt.Errorf("%w: %v", errors.ErrProviderUnavailable, err))
	}
	p.breaker.Record(false)
	event.Int("count", len(body.Candles)).Msg("Candle fetch completed")

	return prepare(symbol, body.Candles, limit)
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}
