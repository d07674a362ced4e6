package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sandlovubiz-ctrl/mureza/pkg/ratelimit"
)

const defaultHost = "https://api.mureza.app"

type Client struct {
	client    *http.Client
	debug     bool
	ratelimit ratelimit.Lock
	host      string
	poll      time.Duration
	key       string
	keyStore  KeyStore
}

type Config struct {
	Wait     time.Duration
	Poll     time.Duration
	Debug    bool
	Client   *http.Client
	Host     string
	KeyStore KeyStore
}

type keyStore struct {
	path string
}

func (k *keyStore) GetKey(ctx context.Context) (string, error) {
	b, err := os.ReadFile(k.path)
	if err != nil {
		return "", fmt.Errorf("synth: couldn't read key: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (k *keyStore) SetKey(ctx context.Context, key string) error {
	if err := os.WriteFile(k.path, []byte(key), 0644); err != nil {
		return fmt.Errorf("synth: couldn't write key: %w", err)
	}
	return nil
}

func NewKeyStore(path string) KeyStore {
	return &keyStore{
		path: path,
	}
}

type KeyStore interface {
	GetKey(context.Context) (string, error)
	SetKey(context.Context, string) error
}

func New(cfg *Config) *Client {
	wait := cfg.Wait
	if wait == 0 {
		wait = 1 * time.Second
	}
	poll := cfg.Poll
	if poll == 0 {
		poll = 5 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: 2 * time.Minute,
		}
	}
	host := strings.TrimSuffix(cfg.Host, "/")
	if host == "" {
		host = defaultHost
	}
	return &Client{
		client:    client,
		ratelimit: ratelimit.New(wait),
		debug:     cfg.Debug,
		host:      host,
		poll:      poll,
		keyStore:  cfg.KeyStore,
	}
}

func (c *Client) Start(ctx context.Context) error {
	key, err := c.keyStore.GetKey(ctx)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("synth: key is empty")
	}
	c.key = key

	// Check that the key is valid before accepting work.
	if _, err := c.do(ctx, "GET", "v1/models", nil, nil); err != nil {
		return fmt.Errorf("synth: couldn't authenticate: %w", err)
	}
	return nil
}

func (c *Client) Stop(ctx context.Context) error {
	if c.key == "" {
		return nil
	}
	return c.keyStore.SetKey(ctx, c.key)
}

func (c *Client) log(format string, args ...interface{}) {
	if c.debug {
		format += "\n"
		log.Printf(format, args...)
	}
}

var backoff = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	2 * time.Minute,
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) ([]byte, error) {
	maxAttempts := 3
	attempts := 0
	var err error
	for {
		if err != nil {
			log.Println("retrying...", err)
		}
		var b []byte
		b, err = c.doAttempt(ctx, method, path, in, out)
		if err == nil {
			return b, nil
		}
		// Increase attempts and check if we should stop
		attempts++
		if attempts >= maxAttempts {
			return nil, err
		}
		// If the error is temporary retry
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}

		// Check if we should retry after waiting
		var retry bool
		var wait bool

		// Check status code
		var errStatus errStatusCode
		if errors.As(err, &errStatus) {
			switch int(errStatus) {
			case http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusTooManyRequests, 520:
				// Retry on these status codes
				retry = true
				wait = true
			default:
				return nil, err
			}
		}
		if !retry {
			return nil, err
		}

		// Wait before retrying
		if wait {
			idx := attempts - 1
			if idx >= len(backoff) {
				idx = len(backoff) - 1
			}
			waitTime := backoff[idx]
			c.log("synth: server seems to be down, waiting %s before retrying", waitTime)
			t := time.NewTimer(waitTime)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return fmt.Sprintf("%d", e)
}

func (c *Client) doAttempt(ctx context.Context, method, path string, in, out any) ([]byte, error) {
	var body []byte
	var reqBody io.Reader
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("synth: couldn't marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(body)
	}
	logBody := string(body)
	if len(logBody) > 100 {
		logBody = logBody[:100] + "..."
	}
	c.log("synth: do %s %s %s", method, path, logBody)

	// Check if path is absolute
	u := fmt.Sprintf("%s/%s", c.host, path)
	if strings.HasPrefix(path, "http") {
		u = path
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("synth: couldn't create request: %w", err)
	}
	c.addHeaders(req)

	unlock := c.ratelimit.Lock(ctx)
	defer unlock()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synth: couldn't %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("synth: couldn't read response body: %w", err)
	}
	c.log("synth: response %s %s %d", method, path, resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMessage := string(respBody)
		if len(errMessage) > 100 {
			errMessage = errMessage[:100] + "..."
		}
		return nil, fmt.Errorf("synth: %s %s returned (%s): %w", method, u, errMessage, errStatusCode(resp.StatusCode))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("synth: couldn't unmarshal response body (%T): %w", out, err)
		}
	}
	return respBody, nil
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("authorization", fmt.Sprintf("Bearer %s", c.key))
	req.Header.Set("user-agent", "mureza")
}
