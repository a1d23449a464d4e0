package utils

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

var (
	// GlobalHTTPClient is a shared HTTP client with sane defaults and retries on 5xx.
	GlobalHTTPClient *http.Client
)

// leveledZerolog adapts zerolog to retryablehttp's LeveledLogger. Errors are
// demoted to warnings since the request is usually retried.
type leveledZerolog struct{}

func fields(keysAndValues []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			m[k] = keysAndValues[i+1]
		}
	}
	return m
}

func (leveledZerolog) Error(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(fields(keysAndValues)).Msg(msg)
}

func (leveledZerolog) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(fields(keysAndValues)).Msg(msg)
}

func (leveledZerolog) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(fields(keysAndValues)).Msg(msg)
}

func (leveledZerolog) Debug(msg string, keysAndValues ...interface{}) {
	log.Trace().Fields(fields(keysAndValues)).Msg(msg)
}

// NewRetryingClient returns a standard client that retries connection errors and
// 5xx responses. 429s are not retried; Discord returns them with its own backoff.
func NewRetryingClient(maxRetries int, timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   10,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = transport
	retryClient.RetryMax = maxRetries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZerolog{})
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err == nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	client := retryClient.StandardClient()
	client.Timeout = timeout
	return client
}

func init() {
	GlobalHTTPClient = NewRetryingClient(3, 60*time.Second)
}
