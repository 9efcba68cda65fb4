package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

const (
	retryAttempts = 1
	retryBackoff  = 500 * time.Millisecond
)

// getWithRetry runs an idempotent request once and retries it a single time
// after a short pause when the attempt failed at the transport level or the
// upstream answered 5xx. Search-initiating and booking POSTs must never go
// through here; replaying them can start duplicate upstream work.
//
// When retries are exhausted the last upstream response, if any, is returned
// so the caller can classify its status normally.
func getWithRetry(ctx context.Context, do func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	var resp *resty.Response

	backoff := retry.WithMaxRetries(retryAttempts, retry.NewConstant(retryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, doErr := do(ctx)
		if doErr != nil {
			return retry.RetryableError(doErr)
		}

		resp = r
		if r.StatusCode() >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("upstream status %d", r.StatusCode()))
		}
		return nil
	})

	if resp == nil {
		return nil, err
	}
	return resp, nil
}
