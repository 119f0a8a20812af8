// Package client talks to the pakegate HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/pakegate/internal/common"
)

// Client exposes the two rounds of each flow plus the account lookup.
type Client interface {
	RegisterStart(ctx context.Context, username string, request []byte, wallet, salt string) (key string, response []byte, err error)
	RegisterFinish(ctx context.Context, key string, message []byte) error
	LoginStart(ctx context.Context, username string, request []byte) (key string, response []byte, err error)
	LoginFinish(ctx context.Context, key string, message []byte) (*LoginResult, error)
	Account(ctx context.Context, accessToken string) (string, error)
}

type LoginResult struct {
	Wallet      string `json:"wallet"`
	Salt        string `json:"salt"`
	AccessToken string `json:"access_token"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL. A nil hc means
// http.DefaultClient.
func NewHTTPClient(baseURL string, hc *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}, nil
}

type startResponse struct {
	Key      string `json:"key"`
	Response []int  `json:"response"`
}

func (c *HTTPClient) RegisterStart(ctx context.Context, username string, request []byte, wallet, salt string) (string, []byte, error) {
	var out startResponse
	err := c.do(ctx, http.MethodPost, "/register", "", map[string]any{
		"username": username,
		"request":  toInts(request),
		"wallet":   wallet,
		"salt":     salt,
	}, &out)
	if err != nil {
		return "", nil, err
	}
	msg, err := fromInts(out.Response)
	return out.Key, msg, err
}

func (c *HTTPClient) RegisterFinish(ctx context.Context, key string, message []byte) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, "/register/"+url.PathEscape(key), "", map[string]any{"message": toInts(message)}, &out); err != nil {
		return err
	}
	if !out.Success {
		return errors.New("registration not confirmed by server")
	}
	return nil
}

func (c *HTTPClient) LoginStart(ctx context.Context, username string, request []byte) (string, []byte, error) {
	var out startResponse
	err := c.do(ctx, http.MethodPost, "/login", "", map[string]any{
		"username": username,
		"request":  toInts(request),
	}, &out)
	if err != nil {
		return "", nil, err
	}
	msg, err := fromInts(out.Response)
	return out.Key, msg, err
}

func (c *HTTPClient) LoginFinish(ctx context.Context, key string, message []byte) (*LoginResult, error) {
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/login/"+url.PathEscape(key), "", map[string]any{"message": toInts(message)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Account(ctx context.Context, accessToken string) (string, error) {
	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/account", accessToken, nil, &out); err != nil {
		return "", err
	}
	return out.UserID, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func fromInts(v []int) ([]byte, error) {
	out := make([]byte, len(v))
	for i, n := range v {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("response byte %d out of range", n)
		}
		out[i] = byte(n)
	}
	return out, nil
}
