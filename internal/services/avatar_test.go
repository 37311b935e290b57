package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvatarUpstream(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func avatarOptions(srv *httptest.Server) AvatarOptions {
	return AvatarOptions{
		Endpoint: srv.URL + "/users/%s",
		Headers:  map[string]string{"X-App-Id": "123"},
		Timeout:  time.Second,
		CacheTTL: time.Minute,
	}
}

func TestGetProfilePicture(t *testing.T) {
	srv, _ := newAvatarUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/jane.doe", r.URL.Path)
		assert.Equal(t, "123", r.Header.Get("X-App-Id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"user":{"profile_pic_url":"https://img.example.com/sd.jpg","profile_pic_url_hd":"https://img.example.com/hd.jpg"}}}`))
	})

	svc := NewAvatarService(avatarOptions(srv), nil)
	res, ok := svc.GetProfilePicture(context.Background(), "@jane.doe")
	require.True(t, ok)
	assert.Equal(t, "jane.doe", res.Username)
	assert.Equal(t, "https://img.example.com/hd.jpg", res.ProfilePictureURL)
}

func TestGetProfilePicture_FallsBackToStandardResolution(t *testing.T) {
	srv, _ := newAvatarUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":{"profile_pic_url":"https://img.example.com/sd.jpg"}}}`))
	})

	res, ok := NewAvatarService(avatarOptions(srv), nil).GetProfilePicture(context.Background(), "jane")
	require.True(t, ok)
	assert.Equal(t, "https://img.example.com/sd.jpg", res.ProfilePictureURL)
}

func TestGetProfilePicture_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"upstream 404", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"upstream 500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>login required</html>`))
		}},
		{"missing user", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{}}`))
		}},
		{"missing picture", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"user":{"profile_pic_url":""}}}`))
		}},
		{"not a url", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"user":{"profile_pic_url":"/static/default.png"}}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAvatarUpstream(t, tt.handler)
			res, ok := NewAvatarService(avatarOptions(srv), nil).GetProfilePicture(context.Background(), "jane")
			assert.False(t, ok)
			assert.Nil(t, res)
		})
	}
}

func TestGetProfilePicture_Timeout(t *testing.T) {
	srv, _ := newAvatarUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	opts := avatarOptions(srv)
	opts.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, ok := NewAvatarService(opts, nil).GetProfilePicture(context.Background(), "jane")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGetProfilePicture_InvalidUsernameSkipsUpstream(t *testing.T) {
	srv, calls := newAvatarUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":{"profile_pic_url":"https://img.example.com/sd.jpg"}}}`))
	})
	svc := NewAvatarService(avatarOptions(srv), nil)

	for _, username := range []string{"", "@", "has space", "../etc/passwd", "waytoolongusername_waytoolongusername"} {
		_, ok := svc.GetProfilePicture(context.Background(), username)
		assert.False(t, ok, username)
	}
	assert.Zero(t, calls.Load())
}

func TestGetProfilePicture_Cached(t *testing.T) {
	srv, calls := newAvatarUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"user":{"profile_pic_url_hd":"https://img.example.com/hd.jpg"}}}`))
	})
	cache := newMemCache()
	svc := NewAvatarService(avatarOptions(srv), cache)
	ctx := context.Background()

	first, ok := svc.GetProfilePicture(ctx, "Jane")
	require.True(t, ok)
	second, ok := svc.GetProfilePicture(ctx, "jane")
	require.True(t, ok)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.ProfilePictureURL, second.ProfilePictureURL)
	assert.Equal(t, "Jane", first.Username)
	assert.Equal(t, "jane", second.Username)
	assert.Contains(t, cache.data, "avatar:jane")
}

func TestGetProfilePicture_FailuresAreNotCached(t *testing.T) {
	srv, calls := newAvatarUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	cache := newMemCache()
	svc := NewAvatarService(avatarOptions(srv), cache)

	for i := 0; i < 2; i++ {
		_, ok := svc.GetProfilePicture(context.Background(), "ghost")
		assert.False(t, ok)
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, cache.data)
}
