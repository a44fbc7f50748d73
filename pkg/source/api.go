package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/matzehuels/brewlens/pkg/brew"
	"github.com/matzehuels/brewlens/pkg/cache"
	"github.com/matzehuels/brewlens/pkg/httputil"
)

// Bulk manifest endpoints published by Homebrew.
const (
	DefaultFormulaURL = "https://formulae.brew.sh/api/formula.json"
	DefaultCaskURL    = "https://formulae.brew.sh/api/cask.json"
)

// DefaultManifestTTL is how long fetched manifests stay valid in the
// persistent cache backend.
const DefaultManifestTTL = 24 * time.Hour

const fetchTimeout = 30 * time.Second

// Cache keys for the two manifests.
const (
	formulaCacheKey = "api:formula"
	caskCacheKey    = "api:cask"
)

// APIOptions configures an APISource.
type APIOptions struct {
	FormulaURL string        // Bulk formula manifest URL (default: DefaultFormulaURL)
	CaskURL    string        // Bulk cask manifest URL (default: DefaultCaskURL)
	HTTPClient *http.Client  // HTTP client (default: 30s timeout)
	Cache      cache.Cache   // Persistent manifest cache (default: none)
	CacheTTL   time.Duration // TTL for cached manifests (default: DefaultManifestTTL)
	Refresh    bool          // Bypass the persistent cache
}

func (o APIOptions) withDefaults() APIOptions {
	if o.FormulaURL == "" {
		o.FormulaURL = DefaultFormulaURL
	}
	if o.CaskURL == "" {
		o.CaskURL = DefaultCaskURL
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: fetchTimeout}
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultManifestTTL
	}
	return o
}

// APISource resolves every identity from the two bulk manifests on
// formulae.brew.sh. The manifests are fetched at most once per instance,
// lazily on the first Resolve, and answer all subsequent lookups with zero
// network calls.
//
// The source fails closed: if either manifest cannot be fetched or decoded,
// Resolve reports total unavailability via [ErrUnavailable] and keeps no
// partial state, so a later call (or a fallback source) starts clean.
type APISource struct {
	opts APIOptions

	mu       sync.Mutex
	loaded   bool
	formulas map[string]*infoJSON // keyed by name
	casks    map[string]*infoJSON // keyed by token
}

// NewAPISource creates a bulk-manifest source.
func NewAPISource(opts APIOptions) *APISource {
	return &APISource{opts: opts.withDefaults()}
}

// Name returns "api".
func (s *APISource) Name() string { return "api" }

// Resolve loads the manifests if needed and answers every identity from the
// in-memory maps. Identities absent from the manifests are omitted.
func (s *APISource) Resolve(ctx context.Context, ids []brew.Identity) (map[string]*brew.Package, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	out := make(map[string]*brew.Package, len(ids))
	for _, id := range ids {
		table := s.formulas
		if id.Kind == brew.Cask {
			table = s.casks
		}
		if obj, ok := table[id.Name]; ok {
			out[id.Name] = obj.pkg(id)
		}
	}
	return out, nil
}

// ensureLoaded fetches and indexes both manifests exactly once. State is only
// committed after both succeed.
func (s *APISource) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	formulaObjs, err := s.manifest(ctx, s.opts.FormulaURL, formulaCacheKey)
	if err != nil {
		return fmt.Errorf("formula manifest: %w", err)
	}
	caskObjs, err := s.manifest(ctx, s.opts.CaskURL, caskCacheKey)
	if err != nil {
		return fmt.Errorf("cask manifest: %w", err)
	}

	s.formulas = index(formulaObjs, brew.Formula)
	s.casks = index(caskObjs, brew.Cask)
	s.loaded = true
	return nil
}

// manifest returns the decoded manifest at url, consulting the persistent
// cache first unless Refresh is set.
func (s *APISource) manifest(ctx context.Context, url, cacheKey string) ([]infoJSON, error) {
	if !s.opts.Refresh {
		if data, ok, _ := s.opts.Cache.Get(ctx, cacheKey); ok {
			var objs []infoJSON
			if err := json.Unmarshal(data, &objs); err == nil {
				return objs, nil
			}
			// Undecodable cache entry: fall through to a fresh fetch.
			_ = s.opts.Cache.Delete(ctx, cacheKey)
		}
	}

	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	var objs []infoJSON
	if err := json.Unmarshal(data, &objs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	_ = s.opts.Cache.Set(ctx, cacheKey, data, s.opts.CacheTTL)
	return objs, nil
}

// fetch downloads url with retries on transient failures.
func (s *APISource) fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := s.opts.HTTPClient.Do(req)
		if err != nil {
			return httputil.Retryable(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500:
			return httputil.Retryable(fmt.Errorf("GET %s: status %d", url, resp.StatusCode))
		default:
			return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return httputil.Retryable(err)
		}
		return nil
	})
	return data, err
}

func index(objs []infoJSON, kind brew.Kind) map[string]*infoJSON {
	m := make(map[string]*infoJSON, len(objs))
	for i := range objs {
		if key := objs[i].key(kind); key != "" {
			m[key] = &objs[i]
		}
	}
	return m
}

var _ Source = (*APISource)(nil)
