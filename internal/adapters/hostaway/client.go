package hostaway

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// Client fetches raw reviews from the Hostaway API (and, when configured,
// Google Places). With no Hostaway API key it serves an embedded sample
// payload so the system works out of the box.
type Client struct {
	base      string
	hc        *http.Client
	key       string
	accountID string
	googleKey string
	rl        *rate.Limiter
}

func New(base, key, accountID, googleKey string, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:      base,
		hc:        &http.Client{Timeout: 20 * time.Second},
		key:       key,
		accountID: accountID,
		googleKey: googleKey,
		rl:        rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// hostawayEnvelope is the /reviews response wrapper.
type hostawayEnvelope struct {
	Status string       `json:"status"`
	Result []wireReview `json:"result"`
}

// wireReview tolerates numeric ids in the upstream payload.
type wireReview struct {
	ID             json.Number          `json:"id"`
	Type           string               `json:"type"`
	Status         string               `json:"status"`
	Rating         *float64             `json:"rating"`
	PublicReview   string               `json:"publicReview"`
	ReviewCategory []domain.RawCategory `json:"reviewCategory"`
	SubmittedAt    string               `json:"submittedAt"`
	GuestName      string               `json:"guestName"`
	ListingName    string               `json:"listingName"`
}

func (w wireReview) toRaw(source string) domain.RawReview {
	return domain.RawReview{
		ID:             w.ID.String(),
		ListingName:    w.ListingName,
		GuestName:      w.GuestName,
		PublicReview:   w.PublicReview,
		ReviewCategory: w.ReviewCategory,
		SubmittedAt:    w.SubmittedAt,
		Type:           w.Type,
		Status:         w.Status,
		Source:         source,
		Rating:         w.Rating,
	}
}

func (c *Client) FetchFromHostaway(ctx context.Context) ([]domain.RawReview, error) {
	if c.key == "" {
		log.Info().Msg("no hostaway API key configured, serving sample reviews")
		return sampleReviews(), nil
	}

	start := time.Now()
	u := fmt.Sprintf("%s/reviews?accountId=%s", c.base, c.accountID)
	var env hostawayEnvelope
	if err := c.get(ctx, u, &env); err != nil {
		observability.ObserveExternal("hostaway", "/reviews", 0, time.Since(start))
		return nil, err
	}
	observability.ObserveExternal("hostaway", "/reviews", http.StatusOK, time.Since(start))

	if env.Status != "success" {
		return nil, fmt.Errorf("hostaway: unexpected response status %q", env.Status)
	}
	out := make([]domain.RawReview, 0, len(env.Result))
	for _, w := range env.Result {
		out = append(out, w.toRaw("hostaway"))
	}
	log.Info().Int("count", len(out)).Dur("duration", time.Since(start)).
		Msg("fetched reviews from hostaway")
	return out, nil
}

func (c *Client) FetchFromGoogle(ctx context.Context) ([]domain.RawReview, error) {
	if c.googleKey == "" {
		log.Warn().Msg("google places API key not configured, skipping google reviews")
		return nil, nil
	}
	// TODO: map Places Details reviews once per-listing place ids are stored.
	log.Info().Msg("google places integration not yet implemented")
	return nil, nil
}

// ---- internals ----

var (
	ErrNotFound     = errors.New("hostaway: not found")
	ErrUnauthorized = errors.New("hostaway: unauthorized")
	ErrForbidden    = errors.New("hostaway: forbidden")
)

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter from crypto/rand, safe under concurrency.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
