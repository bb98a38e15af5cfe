package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// ---- fakes ----

// fakeCache round-trips values through JSON the way the Redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	gets  int
	hits  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// fakeTokens treats "tok:<email>" as a valid credential.
type fakeTokens struct{}

func (fakeTokens) Issue(email string) (string, error) { return "tok:" + email, nil }
func (fakeTokens) Verify(token string) (string, error) {
	if !strings.HasPrefix(token, "tok:") {
		return "", errors.New("bad signature")
	}
	return strings.TrimPrefix(token, "tok:"), nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }
func (fakeHasher) Compare(plain, digest string) bool  { return digest == "h:"+plain }

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

type sentMail struct{ to, subject, body string }

func (n *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{to, subject, body})
	return nil
}

// fakeLexicon flags any text containing one of its words.
type fakeLexicon []string

func (l fakeLexicon) IsProfane(text string) bool {
	low := strings.ToLower(text)
	for _, w := range l {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }

const longComment = "This course was well organized and the assignments were genuinely useful."

type recorded struct {
	mu       sync.Mutex
	auth     []string
	rejected []string
}

func (r *recorded) AuthEvent(op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth = append(r.auth, op+":"+outcome)
}

func (r *recorded) ModerationRejected(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, field)
}
