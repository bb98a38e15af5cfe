package mailer

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/time/rate"

	"qrate/internal/adapters/observability"
)

const (
	sendEndpoint = "/v3/mail/send"
	maxAttempts  = 4
)

var ErrRejected = errors.New("sendgrid: message rejected")

// Client dispatches HTML mail through the SendGrid v3 API with client-side
// rate limiting and retries on 429/5xx.
type Client struct {
	host string
	key  string
	from *mail.Email
	rl   *rate.Limiter
}

// New builds a client. An empty host targets the public SendGrid API.
func New(host, key, fromName, fromAddr string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("SendGrid API key is required")
	}
	if fromAddr == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if host == "" {
		host = "https://api.sendgrid.com"
	}
	return &Client{
		host: strings.TrimRight(host, "/"),
		key:  key,
		from: mail.NewEmail(fromName, fromAddr),
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	msg := mail.NewSingleEmail(c.from, subject, mail.NewEmail("", to), "", htmlBody)
	body := mail.GetRequestBody(msg)

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req := sendgrid.GetRequest(c.key, sendEndpoint, c.host)
		req.Method = rest.Post
		req.Body = body

		start := time.Now()
		resp, err := sendgrid.MakeRequestWithContext(ctx, req)
		if err != nil {
			observability.ObserveExternal("sendgrid", sendEndpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("sendgrid", sendEndpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			log.Debug().Str("to", to).Int("status", resp.StatusCode).Msg("mail accepted")
			return nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(http.Header(resp.Headers))
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("sendgrid %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b := resp.Body
			if len(b) > 4096 {
				b = b[:4096]
			}
			return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(b))
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

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
