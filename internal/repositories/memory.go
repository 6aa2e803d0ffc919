package repositories

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/models"
)

// MemoryStore keeps every table in process memory. It enforces the same
// uniqueness and ownership rules as the Postgres schema and is meant for
// tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	accounts    map[uuid.UUID]models.Account
	profiles    map[uuid.UUID]models.Profile
	friendships map[uuid.UUID]models.Friendship
	statuses    map[uuid.UUID]models.UserStatus
	cache       map[uuid.UUID]models.UserStatus
	peeps       []models.PeepEvent
	pushTokens  map[uuid.UUID]models.PushToken
	sessions    map[string]models.Session
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:    make(map[uuid.UUID]models.Account),
		profiles:    make(map[uuid.UUID]models.Profile),
		friendships: make(map[uuid.UUID]models.Friendship),
		statuses:    make(map[uuid.UUID]models.UserStatus),
		cache:       make(map[uuid.UUID]models.UserStatus),
		pushTokens:  make(map[uuid.UUID]models.PushToken),
		sessions:    make(map[string]models.Session),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Accounts() AccountRepository       { return memoryAccounts{s} }
func (s *MemoryStore) Profiles() ProfileRepository       { return memoryProfiles{s} }
func (s *MemoryStore) Friendships() FriendshipRepository { return memoryFriendships{s} }
func (s *MemoryStore) Statuses() StatusRepository        { return memoryStatuses{s} }
func (s *MemoryStore) StatusCache() StatusCache          { return memoryCache{s} }
func (s *MemoryStore) Peeps() PeepRepository             { return memoryPeeps{s} }
func (s *MemoryStore) PushTokens() PushTokenRepository   { return memoryPushTokens{s} }
func (s *MemoryStore) Sessions() SessionRepository       { return memorySessions{s} }

type memoryAccounts struct{ s *MemoryStore }

func (r memoryAccounts) Register(_ context.Context, account *models.Account, profile *models.Profile) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return ErrEmailTaken
		}
	}
	for _, p := range s.profiles {
		if p.Username == profile.Username {
			return ErrUsernameTaken
		}
	}

	now := s.now()
	account.ID = uuid.New()
	account.CreatedAt, account.UpdatedAt = now, now
	profile.ID = account.ID
	profile.CreatedAt = now

	s.accounts[account.ID] = *account
	s.profiles[profile.ID] = *profile
	return nil
}

func (r memoryAccounts) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r memoryAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryAccounts) Delete(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id)
	delete(s.profiles, id)
	delete(s.statuses, id)
	delete(s.cache, id)
	delete(s.pushTokens, id)
	for fid, f := range s.friendships {
		if f.UserID == id || f.FriendID == id {
			delete(s.friendships, fid)
		}
	}
	s.peeps = slices.DeleteFunc(s.peeps, func(p models.PeepEvent) bool {
		return p.FromUserID == id || p.ToUserID == id
	})
	return nil
}

type memoryProfiles struct{ s *MemoryStore }

func (r memoryProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memoryProfiles) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.profiles {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

type memoryFriendships struct{ s *MemoryStore }

func (r memoryFriendships) Create(_ context.Context, friendship *models.Friendship) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if friendship.UserID == friendship.FriendID {
		return ErrConflict
	}
	if _, ok := s.profiles[friendship.UserID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.profiles[friendship.FriendID]; !ok {
		return ErrNotFound
	}
	for _, f := range s.friendships {
		if f.UserID == friendship.UserID && f.FriendID == friendship.FriendID {
			return ErrConflict
		}
	}

	if friendship.Status == "" {
		friendship.Status = models.FriendshipPending
	}
	friendship.ID = uuid.New()
	friendship.CreatedAt = s.now()
	s.friendships[friendship.ID] = *friendship
	return nil
}

func (r memoryFriendships) FindBetween(_ context.Context, a, b uuid.UUID) (*models.Friendship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *models.Friendship
	for _, f := range r.s.friendships {
		if (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a) {
			if found == nil || f.CreatedAt.Before(found.CreatedAt) {
				f := f
				found = &f
			}
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r memoryFriendships) Accept(_ context.Context, id, receiverID uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[id]
	if !ok || f.FriendID != receiverID || f.Status != models.FriendshipPending {
		return ErrNotFound
	}
	f.Status = models.FriendshipAccepted
	s.friendships[id] = f
	return nil
}

func (r memoryFriendships) Delete(_ context.Context, id, userID uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[id]
	if !ok || (f.UserID != userID && f.FriendID != userID) {
		return ErrNotFound
	}
	delete(s.friendships, id)
	return nil
}

func (r memoryFriendships) ListAccepted(_ context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var profiles []*models.Profile
	for _, f := range s.friendships {
		if f.Status != models.FriendshipAccepted {
			continue
		}
		var other uuid.UUID
		switch userID {
		case f.UserID:
			other = f.FriendID
		case f.FriendID:
			other = f.UserID
		default:
			continue
		}
		if p, ok := s.profiles[other]; ok {
			profiles = append(profiles, &p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Username < profiles[j].Username })
	return profiles, nil
}

func (r memoryFriendships) ListPending(_ context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var requests []*models.FriendRequest
	for _, f := range s.friendships {
		if f.FriendID != userID || f.Status != models.FriendshipPending {
			continue
		}
		requests = append(requests, &models.FriendRequest{
			ID:        f.ID,
			From:      s.profiles[f.UserID],
			CreatedAt: f.CreatedAt,
		})
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests, nil
}

type memoryStatuses struct{ s *MemoryStore }

func (r memoryStatuses) Upsert(_ context.Context, status *models.UserStatus) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[status.UserID]; !ok {
		return ErrNotFound
	}
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = s.now()
	}
	s.statuses[status.UserID] = *status
	return nil
}

func (r memoryStatuses) GetByUserID(_ context.Context, userID uuid.UUID) (*models.UserStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.statuses[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (r memoryStatuses) ListByUserIDs(_ context.Context, userIDs []uuid.UUID) ([]*models.UserStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.UserStatus
	for _, id := range userIDs {
		if st, ok := r.s.statuses[id]; ok {
			out = append(out, &st)
		}
	}
	return out, nil
}

type memoryCache struct{ s *MemoryStore }

func (c memoryCache) Set(_ context.Context, status *models.UserStatus) error {
	c.s.mu.Lock()
	c.s.cache[status.UserID] = *status
	c.s.mu.Unlock()
	return nil
}

func (c memoryCache) Get(_ context.Context, userID uuid.UUID) (*models.UserStatus, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	st, ok := c.s.cache[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (c memoryCache) Delete(_ context.Context, userID uuid.UUID) error {
	c.s.mu.Lock()
	delete(c.s.cache, userID)
	c.s.mu.Unlock()
	return nil
}

type memoryPeeps struct{ s *MemoryStore }

func (r memoryPeeps) Append(_ context.Context, peep *models.PeepEvent) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[peep.FromUserID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.profiles[peep.ToUserID]; !ok {
		return ErrNotFound
	}
	peep.ID = uuid.New()
	peep.CreatedAt = s.now()
	s.peeps = append(s.peeps, *peep)
	return nil
}

func (r memoryPeeps) GetByID(_ context.Context, id uuid.UUID) (*models.PeepEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.peeps {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryPeeps) LatestForUser(_ context.Context, userID uuid.UUID) (*models.PeepEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.peeps) - 1; i >= 0; i-- {
		if p := r.s.peeps[i]; p.ToUserID == userID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryPeeps) ListSince(_ context.Context, userID uuid.UUID, since time.Time) ([]*models.PeepEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*models.PeepEvent
	for _, p := range r.s.peeps {
		if p.ToUserID == userID && p.CreatedAt.After(since) {
			out = append(out, &p)
		}
	}
	return out, nil
}

type memoryPushTokens struct{ s *MemoryStore }

func (r memoryPushTokens) Upsert(_ context.Context, token *models.PushToken) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[token.UserID]; !ok {
		return ErrNotFound
	}
	if token.Platform == "" {
		token.Platform = "expo"
	}
	token.UpdatedAt = s.now()
	s.pushTokens[token.UserID] = *token
	return nil
}

func (r memoryPushTokens) GetByUserID(_ context.Context, userID uuid.UUID) (*models.PushToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.pushTokens[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r memoryPushTokens) Delete(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	delete(r.s.pushTokens, userID)
	r.s.mu.Unlock()
	return nil
}

type memorySessions struct{ s *MemoryStore }

func (r memorySessions) Create(_ context.Context, session *models.Session) error {
	r.s.mu.Lock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.s.now()
	}
	r.s.sessions[session.ID] = *session
	r.s.mu.Unlock()
	return nil
}

func (r memorySessions) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[id]
	if !ok || !sess.ExpiresAt.After(r.s.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (r memorySessions) ListByAccountID(_ context.Context, accountID uuid.UUID) ([]*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	now := r.s.now()
	var out []*models.Session
	for _, sess := range r.s.sessions {
		if sess.AccountID == accountID && sess.ExpiresAt.After(now) {
			out = append(out, &sess)
		}
	}
	return out, nil
}

func (r memorySessions) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

func (r memorySessions) DeleteAllForAccount(_ context.Context, accountID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sess := range r.s.sessions {
		if sess.AccountID == accountID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}
