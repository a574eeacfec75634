package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

// MemoryRepository keeps users in process memory. Uniqueness checks and the
// insert happen under one lock, so concurrent saves cannot both win.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.User
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[int64]models.User{}, now: time.Now}
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *MemoryRepository) FindByEmailOrUsername(_ context.Context, identifier string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == identifier || u.Username == identifier })
}

// find returns a copy of the lowest-id record matching pred.
func (r *MemoryRepository) find(pred func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.User
	for id, u := range r.byID {
		if !pred(&u) {
			continue
		}
		if found == nil || id < found.ID {
			c := u
			found = &c
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) Save(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if user.IsNew() {
		for _, u := range r.byID {
			if u.Username == user.Username {
				return nil, common.UsernameConflict(user.Username)
			}
		}
		for _, u := range r.byID {
			if u.Email == user.Email {
				return nil, common.EmailConflict(user.Email)
			}
		}
		r.nextID++
		user.ID = r.nextID
		user.CreatedAt = now
		user.UpdatedAt = now
		r.byID[user.ID] = *user
		return user, nil
	}

	stored, ok := r.byID[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	stored.FullName = user.FullName
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = now
	r.byID[user.ID] = stored

	*user = stored
	return user, nil
}
