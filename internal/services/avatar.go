package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"match-backend/internal/metrics"

	"github.com/rs/zerolog/log"
)

const (
	avatarUserAgent    = "Mozilla/5.0 (compatible; match-backend/1.0)"
	avatarMaxBodyBytes = 1 << 20
	avatarCachePrefix  = "avatar:"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)

	errAvatarMissing = errors.New("profile picture not available")
)

// AvatarOptions configures the external avatar provider
type AvatarOptions struct {
	Endpoint string // %s is replaced by the escaped username
	Headers  map[string]string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// AvatarResult is a successfully resolved profile picture
type AvatarResult struct {
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// AvatarService looks up public profile pictures on a third-party provider.
// Failures of any kind are reported as "not found", never as errors.
type AvatarService struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
	cache    JSONCache
	cacheTTL time.Duration
}

// NewAvatarService creates a new avatar service. cache may be nil.
func NewAvatarService(opts AvatarOptions, cache JSONCache) *AvatarService {
	return &AvatarService{
		endpoint: opts.Endpoint,
		headers:  opts.Headers,
		client:   &http.Client{Timeout: opts.Timeout},
		cache:    cache,
		cacheTTL: opts.CacheTTL,
	}
}

type avatarPayload struct {
	Data struct {
		User *struct {
			ProfilePicURL   string `json:"profile_pic_url"`
			ProfilePicURLHD string `json:"profile_pic_url_hd"`
		} `json:"user"`
	} `json:"data"`
}

// GetProfilePicture resolves username's public profile picture. The second
// return value is false when the picture could not be resolved.
func (s *AvatarService) GetProfilePicture(ctx context.Context, username string) (*AvatarResult, bool) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if !usernamePattern.MatchString(username) {
		metrics.AvatarLookupsTotal.WithLabelValues("invalid").Inc()
		return nil, false
	}

	cacheKey := avatarCachePrefix + strings.ToLower(username)
	if s.cache != nil {
		var cached AvatarResult
		if found, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && found {
			cached.Username = username
			metrics.AvatarLookupsTotal.WithLabelValues("cached").Inc()
			return &cached, true
		}
	}

	pictureURL, err := s.fetch(ctx, username)
	if err != nil {
		metrics.AvatarLookupsTotal.WithLabelValues("not_found").Inc()
		log.Warn().Err(err).Str("username", username).Msg("Avatar lookup failed")
		return nil, false
	}

	result := &AvatarResult{Username: username, ProfilePictureURL: pictureURL}
	metrics.AvatarLookupsTotal.WithLabelValues("found").Inc()

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, result, s.cacheTTL); err != nil {
			log.Debug().Err(err).Str("username", username).Msg("Failed to cache avatar")
		}
	}
	return result, true
}

func (s *AvatarService) fetch(ctx context.Context, username string) (string, error) {
	endpoint := fmt.Sprintf(s.endpoint, url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", avatarUserAgent)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var payload avatarPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, avatarMaxBodyBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode upstream response: %w", err)
	}
	if payload.Data.User == nil {
		return "", errAvatarMissing
	}

	pictureURL := payload.Data.User.ProfilePicURLHD
	if pictureURL == "" {
		pictureURL = payload.Data.User.ProfilePicURL
	}
	if !strings.HasPrefix(pictureURL, "http") {
		return "", errAvatarMissing
	}
	return pictureURL, nil
}
