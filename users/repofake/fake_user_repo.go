package fakeuserrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/jrsteele09/go-calendar-gateway/internal/errors"
	"github.com/jrsteele09/go-calendar-gateway/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users  map[int64]*users.User
	nextID int64
	lock   sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:  make(map[int64]*users.User),
		nextID: 1,
	}
}

func (ur *FakeUserRepo) List(_ context.Context) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	if ur.Err != nil {
		return nil, ur.Err
	}

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		u := *v
		userList = append(userList, &u)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})
	return userList, nil
}

func (ur *FakeUserRepo) Create(_ context.Context, fields users.Fields) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	if ur.Err != nil {
		return nil, ur.Err
	}

	user := fields.ToUser(ur.nextID)
	ur.nextID++
	ur.users[user.ID] = user
	u := *user
	return &u, nil
}

func (ur *FakeUserRepo) Update(_ context.Context, id int64, fields users.Fields) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	if ur.Err != nil {
		return nil, ur.Err
	}

	if _, ok := ur.users[id]; !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "user %d", id)
	}
	user := fields.ToUser(id)
	ur.users[id] = user
	u := *user
	return &u, nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, id int64) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	if ur.Err != nil {
		return ur.Err
	}

	if _, ok := ur.users[id]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "user %d", id)
	}
	delete(ur.users, id)
	return nil
}
