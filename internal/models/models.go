package models

import (
	"fmt"
	"time"
)

// Gender is used both for a profile's own gender and for its preference
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// SwipeType is the decision recorded by a swipe
type SwipeType string

const (
	SwipeLike    SwipeType = "like"
	SwipeDislike SwipeType = "dislike"
)

// Valid reports whether t is like or dislike
func (t SwipeType) Valid() bool {
	return t == SwipeLike || t == SwipeDislike
}

// Profile represents a registered user of the matching service
type Profile struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Gender       Gender    `json:"gender"`
	InterestedIn Gender    `json:"interested_in"`
	Description  string    `json:"description"`
	Instagram    string    `json:"instagram"`
	WhatsApp     string    `json:"whatsapp"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfilePatch holds the optional fields of a profile update.
// A nil field is left untouched.
type ProfilePatch struct {
	Name         *string `json:"name"`
	Age          *int    `json:"age"`
	Gender       *Gender `json:"gender"`
	InterestedIn *Gender `json:"interested_in"`
	Description  *string `json:"description"`
	Instagram    *string `json:"instagram"`
	WhatsApp     *string `json:"whatsapp"`
	Password     *string `json:"password"`

	// PasswordHash is filled by the service once Password has been hashed
	PasswordHash *string `json:"-"`
}

// Empty reports whether the patch changes nothing
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil && p.InterestedIn == nil &&
		p.Description == nil && p.Instagram == nil && p.WhatsApp == nil && p.PasswordHash == nil
}

// Photo represents a photo owned by a profile
type Photo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"match_user_id"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileWithPhotos is a profile together with its photos ordered by Order
type ProfileWithPhotos struct {
	Profile
	Photos []Photo `json:"photos"`
}

// Swipe is a single like or dislike decision
type Swipe struct {
	ID        int64     `json:"id"`
	SwiperID  int64     `json:"swiper_id"`
	SwipedID  int64     `json:"swiped_id"`
	Type      SwipeType `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPair is an unordered couple of user ids stored as (min, max)
type UserPair struct {
	user1 int64
	user2 int64
}

// NewUserPair builds the canonical pair for a and b
func NewUserPair(a, b int64) (UserPair, error) {
	if a == b {
		return UserPair{}, fmt.Errorf("pair members must differ: %d", a)
	}
	if a > b {
		a, b = b, a
	}
	return UserPair{user1: a, user2: b}, nil
}

// User1 returns the smaller id
func (p UserPair) User1() int64 { return p.user1 }

// User2 returns the larger id
func (p UserPair) User2() int64 { return p.user2 }

// Pair is a persisted mutual match
type Pair struct {
	ID        int64     `json:"id"`
	User1ID   int64     `json:"user_1_id"`
	User2ID   int64     `json:"user_2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember checks whether userID is one of the two participants
func (p *Pair) HasMember(userID int64) bool {
	return p.User1ID == userID || p.User2ID == userID
}

// PartnerOf returns the other participant
func (p *Pair) PartnerOf(userID int64) (int64, bool) {
	switch userID {
	case p.User1ID:
		return p.User2ID, true
	case p.User2ID:
		return p.User1ID, true
	}
	return 0, false
}

// Message is an immutable message inside a pair's conversation
type Message struct {
	ID        int64     `json:"id"`
	PairID    int64     `json:"pair_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
