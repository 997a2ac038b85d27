package steam

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	errs "steamreviews/pkg/errors"
	"steamreviews/pkg/logger"
	"steamreviews/pkg/retry"
)

// AppDetails holds the subset of store metadata the analyzers use.
type AppDetails struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	ShortDescription string   `json:"short_description"`
	IsFree           bool     `json:"is_free"`
	Developers       []string `json:"developers"`
	Publishers       []string `json:"publishers"`
}

// appDetailsEntry is one appid's entry in the store appdetails response.
type appDetailsEntry struct {
	Success bool       `json:"success"`
	Data    AppDetails `json:"data"`
}

// NameResolver resolves appids to game names, cache-first: an in-memory LRU
// in front of a JSON disk cache, with the store API as the source of truth.
// The API is called at most once per appid per cache lifetime.
type NameResolver struct {
	client   *Client
	cacheDir string
	memCache *lru.Cache[int, *AppDetails]
	logger   logger.Logger
}

// NewNameResolver creates a resolver caching under cacheDir.
func NewNameResolver(client *Client, cacheDir string, log logger.Logger) (*NameResolver, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create app details cache directory: %w", err)
	}
	memCache, err := lru.New[int, *AppDetails](128)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &NameResolver{
		client:   client,
		cacheDir: cacheDir,
		memCache: memCache,
		logger:   log,
	}, nil
}

// Details returns the store details for an appid, fetching and caching on
// miss.
func (r *NameResolver) Details(appid int) (*AppDetails, error) {
	if details, ok := r.memCache.Get(appid); ok {
		return details, nil
	}

	if details := r.loadFromDisk(appid); details != nil {
		r.memCache.Add(appid, details)
		return details, nil
	}

	details, err := retry.Do(func() (*AppDetails, error) {
		return r.fetch(appid)
	}, nil)
	if err != nil {
		return nil, err
	}

	r.saveToDisk(appid, details)
	r.memCache.Add(appid, details)
	return details, nil
}

// Name returns the game name for an appid, or "AppID_{appid}" if the lookup
// fails. Analyzers embed the result in filenames, so failure is non-fatal.
func (r *NameResolver) Name(appid int) string {
	details, err := r.Details(appid)
	if err != nil || details.Name == "" {
		r.logger.WarnWithFields("game name lookup failed", map[string]interface{}{
			"appid": appid,
		})
		return fmt.Sprintf("AppID_%d", appid)
	}
	return details.Name
}

func (r *NameResolver) cachePath(appid int) string {
	return filepath.Join(r.cacheDir, fmt.Sprintf("%d_details.json", appid))
}

func (r *NameResolver) loadFromDisk(appid int) *AppDetails {
	data, err := os.ReadFile(r.cachePath(appid))
	if err != nil {
		return nil
	}
	var details AppDetails
	if err := json.Unmarshal(data, &details); err != nil {
		r.logger.WarnWithFields("discarding unreadable app details cache entry", map[string]interface{}{
			"appid": appid,
			"error": err.Error(),
		})
		return nil
	}
	return &details
}

func (r *NameResolver) saveToDisk(appid int, details *AppDetails) {
	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(r.cachePath(appid), data, 0644); err != nil {
		r.logger.WarnWithFields("failed to write app details cache entry", map[string]interface{}{
			"appid": appid,
			"error": err.Error(),
		})
	}
}

func (r *NameResolver) fetch(appid int) (*AppDetails, error) {
	body, err := r.client.getBody(AppDetailsURL(r.client.storeBaseURL, appid))
	if err != nil {
		return nil, err
	}

	var resp map[string]appDetailsEntry
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errs.New(errs.KindMalformed, 0, err, "failed to parse app details")
	}

	entry, ok := resp[strconv.Itoa(appid)]
	if !ok || !entry.Success {
		return nil, errs.New(errs.KindAPIFailure, 0, nil, "no app details for appid %d", appid)
	}

	r.logger.InfoWithFields("game details fetched", map[string]interface{}{
		"appid": appid,
		"name":  entry.Data.Name,
	})
	return &entry.Data, nil
}
