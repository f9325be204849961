package ghstats

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v68/github"
)

// Error kinds for upstream API failures. Callers distinguish them with
// errors.Is; everything else wraps one of these.
var (
	// ErrNotFound means the requested user does not exist upstream.
	ErrNotFound = errors.New("not found")
	// ErrUpstream means the API answered with a non-2xx, non-404 status.
	ErrUpstream = errors.New("upstream error")
	// ErrNetwork means the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")
	// ErrGraphQL means the GraphQL response carried structured errors.
	// It marks a feature as unavailable, not the whole request as failed.
	ErrGraphQL = errors.New("graphql error")
)

// classifyREST maps a go-github error to one of the error kinds above.
// Rate-limit responses count as upstream failures: the core makes a
// single attempt per call and never waits for a limit window to pass.
func classifyREST(err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, errResp.Message)
		}
		return fmt.Errorf("%w: %s", ErrUpstream, errResp.Message)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: rate limited until %s", ErrUpstream, rateErr.Rate.Reset.Time)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: secondary rate limit", ErrUpstream)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// classifyGraphQL wraps any GraphQL failure as ErrGraphQL. Every GraphQL
// caller in this package absorbs the failure and substitutes a zero
// value, so a finer split would have no consumer.
func classifyGraphQL(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrGraphQL, err)
}
