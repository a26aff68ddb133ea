package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Challenge is a parsed WWW-Authenticate header.
type Challenge struct {
	Scheme string
	Params map[string]string
}

// Realm, Service and Scope are the bearer token parameters.
func (c Challenge) Realm() string   { return c.Params["realm"] }
func (c Challenge) Service() string { return c.Params["service"] }
func (c Challenge) Scope() string   { return c.Params["scope"] }

// ParseChallenge parses `Bearer realm="...",service="...",scope="..."`.
// Quoted values may contain commas (scopes often do).
func ParseChallenge(header string) (Challenge, bool) {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	if !found || scheme == "" {
		return Challenge{}, false
	}
	ch := Challenge{Scheme: scheme, Params: map[string]string{}}

	for rest = strings.TrimSpace(rest); rest != ""; {
		key, after, ok := strings.Cut(rest, "=")
		if !ok {
			break
		}
		key = strings.ToLower(strings.TrimSpace(key))
		after = strings.TrimSpace(after)

		var value string
		if strings.HasPrefix(after, `"`) {
			end := strings.Index(after[1:], `"`)
			if end < 0 {
				value, after = after[1:], ""
			} else {
				value, after = after[1:end+1], after[end+2:]
			}
		} else {
			value, after, _ = strings.Cut(after, ",")
			value = strings.TrimSpace(value)
			after = "," + after
		}
		if key != "" {
			ch.Params[key] = value
		}
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(after), ","))
	}
	return ch, true
}

type tokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// fetchToken exchanges a bearer challenge for a pull token. The scope
// defaults to pull access on the image's repository.
func (c *Client) fetchToken(ctx context.Context, ch Challenge, ref ImageRef) (string, error) {
	realm, err := url.Parse(ch.Realm())
	if err != nil || realm.Host == "" {
		return "", fmt.Errorf("invalid token realm %q", ch.Realm())
	}

	scope := ch.Scope()
	if scope == "" {
		scope = "repository:" + ref.Path + ":pull"
	}
	q := realm.Query()
	q.Set("scope", scope)
	if svc := ch.Service(); svc != "" {
		q.Set("service", svc)
	}
	realm.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, realm.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	clientLog.Printf("Requesting token: realm=%s scope=%s", ch.Realm(), scope)
	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, URL: ch.Realm()}
	}

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.Token != "" {
		return tr.Token, nil
	}
	if tr.AccessToken != "" {
		return tr.AccessToken, nil
	}
	return "", fmt.Errorf("token response from %s has no token", ch.Realm())
}
