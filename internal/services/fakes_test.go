package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"match-backend/internal/models"
	"match-backend/internal/repository"
)

// memDB is an in-memory stand-in for the PostgreSQL tables, honoring the
// same unique constraints and error contracts as the repositories.
type memDB struct {
	mu       sync.Mutex
	seq      int64
	clock    time.Time
	users    map[int64]*models.Profile
	photos   []models.Photo
	swipes   map[[2]int64]models.Swipe
	pairs    map[[2]int64]models.Pair
	messages []models.Message
}

func newMemDB() *memDB {
	return &memDB{
		clock:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		users:  make(map[int64]*models.Profile),
		swipes: make(map[[2]int64]models.Swipe),
		pairs:  make(map[[2]int64]models.Pair),
	}
}

// next must be called with mu held
func (db *memDB) next() (int64, time.Time) {
	db.seq++
	db.clock = db.clock.Add(time.Second)
	return db.seq, db.clock
}

type memUsers struct{ *memDB }

func (m memUsers) Create(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == p.Email {
			return fmt.Errorf("email %q: %w", p.Email, repository.ErrDuplicate)
		}
	}
	id, now := m.next()
	p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
	stored := *p
	m.users[id] = &stored
	return nil
}

func (m memUsers) GetByID(_ context.Context, id int64) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	p := *u
	return &p, nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			p := *u
			return &p, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, repository.ErrNotFound)
}

func (m memUsers) Update(_ context.Context, id int64, patch models.ProfilePatch) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}
	if patch.Gender != nil {
		u.Gender = *patch.Gender
	}
	if patch.InterestedIn != nil {
		u.InterestedIn = *patch.InterestedIn
	}
	if patch.Description != nil {
		u.Description = *patch.Description
	}
	if patch.Instagram != nil {
		u.Instagram = *patch.Instagram
	}
	if patch.WhatsApp != nil {
		u.WhatsApp = *patch.WhatsApp
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	_, u.UpdatedAt = m.next()
	p := *u
	return &p, nil
}

func (m memUsers) ListCandidates(_ context.Context, requesterID int64, gender models.Gender) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Profile{}
	for id, u := range m.users {
		if id == requesterID || u.Gender != gender {
			continue
		}
		if _, swiped := m.swipes[[2]int64{requesterID, id}]; swiped {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memPhotos struct{ *memDB }

func (m memPhotos) Create(_ context.Context, photo *models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := 0
	for _, p := range m.photos {
		if p.UserID == photo.UserID && p.Order >= order {
			order = p.Order + 1
		}
	}
	id, now := m.next()
	photo.ID, photo.Order, photo.CreatedAt, photo.UpdatedAt = id, order, now, now
	m.photos = append(m.photos, *photo)
	return nil
}

func (m memPhotos) ListByUserID(_ context.Context, userID int64) ([]models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Photo{}
	for _, p := range m.photos {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

type memSwipes struct{ *memDB }

func (m memSwipes) Append(_ context.Context, swipe *models.Swipe) (*models.Swipe, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{swipe.SwiperID, swipe.SwipedID}
	if existing, ok := m.swipes[key]; ok {
		return &existing, false, nil
	}
	id, now := m.next()
	s := models.Swipe{ID: id, SwiperID: swipe.SwiperID, SwipedID: swipe.SwipedID, Type: swipe.Type, CreatedAt: now}
	m.swipes[key] = s
	return &s, true, nil
}

func (m memSwipes) HasLiked(_ context.Context, swiperID, swipedID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.swipes[[2]int64{swiperID, swipedID}]
	return ok && s.Type == models.SwipeLike, nil
}

type memPairs struct{ *memDB }

func (m memPairs) Create(_ context.Context, users models.UserPair) (*models.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{users.User1(), users.User2()}
	if _, exists := m.pairs[key]; exists {
		return nil, fmt.Errorf("pair %d/%d: %w", key[0], key[1], repository.ErrDuplicate)
	}
	id, now := m.next()
	p := models.Pair{ID: id, User1ID: key[0], User2ID: key[1], CreatedAt: now}
	m.pairs[key] = p
	return &p, nil
}

func (m memPairs) GetByID(_ context.Context, id int64) (*models.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pairs {
		if p.ID == id {
			pair := p
			return &pair, nil
		}
	}
	return nil, fmt.Errorf("pair %d: %w", id, repository.ErrNotFound)
}

func (m memPairs) GetByUsers(_ context.Context, users models.UserPair) (*models.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pairs[[2]int64{users.User1(), users.User2()}]
	if !ok {
		return nil, fmt.Errorf("pair: %w", repository.ErrNotFound)
	}
	return &p, nil
}

func (m memPairs) ListByUserID(_ context.Context, userID int64) ([]models.Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Pair{}
	for _, p := range m.pairs {
		if p.HasMember(userID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memPairs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pairs)
}

type memMessages struct{ *memDB }

func (m memMessages) Create(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, now := m.next()
	msg.ID, msg.CreatedAt = id, now
	m.messages = append(m.messages, *msg)
	return nil
}

func (m memMessages) ListByPairID(_ context.Context, pairID int64) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Message{}
	for _, msg := range m.messages {
		if msg.PairID == pairID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// memObjects records uploaded objects
type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (o *memObjects) Put(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[key] = buf.Bytes()
	o.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (o *memObjects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, key)
	delete(o.types, key)
	return nil
}

func (o *memObjects) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}

// memCache is a map-backed JSONCache
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (db *memDB) addUser(t *testing.T, name string, gender, interestedIn models.Gender) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Email:        name + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Age:          30,
		Gender:       gender,
		InterestedIn: interestedIn,
	}
	if err := (memUsers{db}).Create(context.Background(), p); err != nil {
		t.Fatalf("add user %s: %v", name, err)
	}
	return p
}

func (db *memDB) addSwipe(swiperID, swipedID int64, swipeType models.SwipeType) {
	_, _, _ = memSwipes{db}.Append(context.Background(), &models.Swipe{SwiperID: swiperID, SwipedID: swipedID, Type: swipeType})
}
