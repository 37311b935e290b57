package handlers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"match-backend/internal/models"
	"match-backend/internal/repository"
)

// fakeDB backs the store fakes used by the handler tests
type fakeDB struct {
	mu       sync.Mutex
	seq      int64
	users    map[int64]*models.Profile
	photos   []models.Photo
	swipes   map[[2]int64]models.Swipe
	pairs    []models.Pair
	messages []models.Message
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:  make(map[int64]*models.Profile),
		swipes: make(map[[2]int64]models.Swipe),
	}
}

func (db *fakeDB) next() (int64, time.Time) {
	db.seq++
	return db.seq, time.Date(2026, 1, 1, 0, 0, int(db.seq), 0, time.UTC)
}

type fakeUsers struct{ *fakeDB }

func (f fakeUsers) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == p.Email {
			return repository.ErrDuplicate
		}
	}
	p.ID, p.CreatedAt = f.next()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	f.users[p.ID] = &stored
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		p := *u
		return &p, nil
	}
	return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			p := *u
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) Update(ctx context.Context, id int64, _ models.ProfilePatch) (*models.Profile, error) {
	return f.GetByID(ctx, id)
}

func (f fakeUsers) ListCandidates(context.Context, int64, models.Gender) ([]models.Profile, error) {
	return []models.Profile{}, nil
}

type fakePhotos struct{ *fakeDB }

func (f fakePhotos) Create(_ context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.photos {
		if p.UserID == photo.UserID {
			photo.Order++
		}
	}
	photo.ID, photo.CreatedAt = f.next()
	photo.UpdatedAt = photo.CreatedAt
	f.photos = append(f.photos, *photo)
	return nil
}

func (f fakePhotos) ListByUserID(_ context.Context, userID int64) ([]models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Photo{}
	for _, p := range f.photos {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSwipes struct{ *fakeDB }

func (f fakeSwipes) Append(_ context.Context, swipe *models.Swipe) (*models.Swipe, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{swipe.SwiperID, swipe.SwipedID}
	if existing, ok := f.swipes[key]; ok {
		return &existing, false, nil
	}
	s := *swipe
	s.ID, s.CreatedAt = f.next()
	f.swipes[key] = s
	return &s, true, nil
}

func (f fakeSwipes) HasLiked(_ context.Context, swiperID, swipedID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.swipes[[2]int64{swiperID, swipedID}]
	return ok && s.Type == models.SwipeLike, nil
}

type fakePairs struct{ *fakeDB }

func (f fakePairs) Create(_ context.Context, users models.UserPair) (*models.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pairs {
		if p.User1ID == users.User1() && p.User2ID == users.User2() {
			return nil, repository.ErrDuplicate
		}
	}
	p := models.Pair{User1ID: users.User1(), User2ID: users.User2()}
	p.ID, p.CreatedAt = f.next()
	f.pairs = append(f.pairs, p)
	return &p, nil
}

func (f fakePairs) GetByID(_ context.Context, id int64) (*models.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pairs {
		if p.ID == id {
			pair := p
			return &pair, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakePairs) GetByUsers(_ context.Context, users models.UserPair) (*models.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pairs {
		if p.User1ID == users.User1() && p.User2ID == users.User2() {
			pair := p
			return &pair, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakePairs) ListByUserID(_ context.Context, userID int64) ([]models.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Pair{}
	for _, p := range f.pairs {
		if p.HasMember(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeMessages struct{ *fakeDB }

func (f fakeMessages) Create(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID, msg.CreatedAt = f.next()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f fakeMessages) ListByPairID(_ context.Context, pairID int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for _, m := range f.messages {
		if m.PairID == pairID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeObjects struct{}

func (fakeObjects) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + key, nil
}

func (fakeObjects) Delete(context.Context, string) error { return nil }
