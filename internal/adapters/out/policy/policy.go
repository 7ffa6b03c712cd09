// Package policy fetches the notification policy document from the hosting
// platform and answers per-role, per-stage delivery questions against a cached
// copy. The policy source being down must never drop notifications, so every
// failure path answers "notify".
package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"fulfillment/internal/core/domain/model/stage"
)

const cacheKey = "policy-document"

// policyDocument is the wire format served by the hosting platform. Muted maps
// a role to the stage ids it opted out of; roles absent from the map receive
// everything.
type policyDocument struct {
	Muted map[string][]string `json:"muted"`
}

func (d policyDocument) shouldNotify(role string, s stage.Stage) bool {
	for _, id := range d.Muted[role] {
		if id == s.ID() {
			return false
		}
	}
	return true
}

// HTTPPolicy implements ports.NotificationPolicy over an HTTP JSON endpoint
// with a TTL cache in front of it.
type HTTPPolicy struct {
	url    string
	client *http.Client
	cache  *gocache.Cache
	logger *slog.Logger
}

// NewHTTPPolicy creates a policy backed by the given endpoint. The cached
// document expires after ttl; an expired cache triggers a synchronous
// re-fetch on the next lookup.
func NewHTTPPolicy(url string, ttl time.Duration, logger *slog.Logger) *HTTPPolicy {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPPolicy{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		cache:  gocache.New(ttl, ttl),
		logger: logger,
	}
}

// ShouldNotify reports whether the role receives notifications for the stage.
// Returns true when the policy source is unavailable.
func (p *HTTPPolicy) ShouldNotify(ctx context.Context, role string, s stage.Stage) bool {
	doc, err := p.document(ctx)
	if err != nil {
		p.logger.Warn("policy lookup failed, notifying anyway", "error", err)
		return true
	}
	return doc.shouldNotify(role, s)
}

// Refresh re-fetches the policy from its source, replacing the cached copy.
func (p *HTTPPolicy) Refresh(ctx context.Context) error {
	doc, err := p.fetch(ctx)
	if err != nil {
		return err
	}

	p.cache.SetDefault(cacheKey, doc)
	return nil
}

func (p *HTTPPolicy) document(ctx context.Context) (policyDocument, error) {
	if cached, ok := p.cache.Get(cacheKey); ok {
		if doc, isDoc := cached.(policyDocument); isDoc {
			return doc, nil
		}
	}

	doc, err := p.fetch(ctx)
	if err != nil {
		return policyDocument{}, err
	}

	p.cache.SetDefault(cacheKey, doc)
	return doc, nil
}

func (p *HTTPPolicy) fetch(ctx context.Context) (policyDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return policyDocument{}, fmt.Errorf("build policy request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return policyDocument{}, fmt.Errorf("fetch policy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return policyDocument{}, fmt.Errorf("fetch policy: unexpected status %d", resp.StatusCode)
	}

	var doc policyDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return policyDocument{}, fmt.Errorf("decode policy: %w", err)
	}
	return doc, nil
}
