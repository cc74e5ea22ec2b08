package usecase

import (
	"context"
	"sort"

	"github.com/hhyyy9/logistics-platform"
	"github.com/hhyyy9/logistics-platform/codec"
	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/observable"
	"github.com/hhyyy9/logistics-platform/schemas"
)

// UserStore caches user records fetched from user_management, keyed by address.
type UserStore struct {
	ledger  *ledger
	users   *observable.Value[map[string]domain.User]
	loading *observable.Value[bool]
}

func NewUserStore(deps Deps) *UserStore {
	return &UserStore{
		ledger:  newLedger(deps),
		users:   observable.New(map[string]domain.User{}),
		loading: observable.New(false),
	}
}

func (s *UserStore) RegisterUser(ctx context.Context, email string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	if err := validateText("email", email); err != nil {
		return logistics.SubmitResult{}, err
	}
	return s.ledger.submit(ctx, txCall{
		operation: "registerUser",
		module:    schemas.ModuleUserManagement,
		function:  schemas.RegisterUser,
		args:      []any{codec.EncodeText(email)},
		success:   "User registered successfully",
		event:     domain.EventUserRegistered,
		subject:   email,
	}, signer, nil, nil)
}

func (s *UserStore) UpdateUserInfo(ctx context.Context, email string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	if err := validateText("email", email); err != nil {
		return logistics.SubmitResult{}, err
	}
	return s.ledger.submit(ctx, txCall{
		operation: "updateUserInfo",
		module:    schemas.ModuleUserManagement,
		function:  schemas.UpdateUserInfo,
		args:      []any{codec.EncodeText(email)},
		success:   "User info updated successfully",
		event:     domain.EventUserUpdated,
		subject:   email,
	}, signer, nil, nil)
}

// DeactivateUser flips the cached IsActive once the ledger accepts the call.
// An uncached address is left uncached.
func (s *UserStore) DeactivateUser(ctx context.Context, address string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	return s.setActive(ctx, address, false, signer)
}

func (s *UserStore) ReactivateUser(ctx context.Context, address string, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	return s.setActive(ctx, address, true, signer)
}

func (s *UserStore) setActive(ctx context.Context, address string, active bool, signer logistics.SubmitFunc) (logistics.SubmitResult, error) {
	if err := validateAddress("address", address); err != nil {
		return logistics.SubmitResult{}, err
	}

	call := txCall{
		operation: "deactivateUser",
		module:    schemas.ModuleUserManagement,
		function:  schemas.DeactivateUser,
		args:      []any{address},
		success:   "User deactivated successfully",
		event:     domain.EventUserDeactivated,
		subject:   address,
	}
	if active {
		call.operation = "reactivateUser"
		call.function = schemas.ReactivateUser
		call.success = "User reactivated successfully"
		call.event = domain.EventUserReactivated
	}

	key := logistics.NormalizeAddress(address)
	return s.ledger.submit(ctx, call, signer, nil, func() {
		s.users.Update(func(current map[string]domain.User) map[string]domain.User {
			user, found := current[key]
			if !found {
				return current
			}
			next := copyUsers(current)
			next[key] = user.WithActive(active)
			return next
		})
	})
}

// FetchUser reads one user's record and replaces the cached entry. A
// response of unexpected shape evicts the entry.
func (s *UserStore) FetchUser(ctx context.Context, address string) (domain.User, error) {
	if err := validateAddress("address", address); err != nil {
		return domain.User{}, err
	}

	s.loading.Set(true)
	defer s.loading.Set(false)

	function, res, err := s.ledger.view(ctx, schemas.ModuleUserManagement, schemas.GetUserInfoView, address)
	if err != nil {
		return domain.User{}, err
	}

	key := logistics.NormalizeAddress(address)
	d := decodeUser(address, res)
	if !d.ok() {
		s.ledger.anomaly(function, d.err(function))
		s.users.Update(func(current map[string]domain.User) map[string]domain.User {
			if _, found := current[key]; !found {
				return current
			}
			next := copyUsers(current)
			delete(next, key)
			return next
		})
		return domain.User{}, nil
	}

	user := d.value
	user.LastSyncedAt = s.ledger.now()
	s.users.Update(func(current map[string]domain.User) map[string]domain.User {
		next := copyUsers(current)
		next[key] = user
		return next
	})
	return user, nil
}

func (s *UserStore) User(address string) (domain.User, bool) {
	user, found := s.users.Get()[logistics.NormalizeAddress(address)]
	return user, found
}

// Users returns the cached users ordered by address.
func (s *UserStore) Users() []domain.User {
	return sortedUsers(s.users.Get())
}

func (s *UserStore) Stats() domain.UserStats {
	users := s.users.Get()
	stats := domain.UserStats{TotalUsers: uint64(len(users))}
	for _, u := range users {
		if u.IsActive {
			stats.ActiveUsers++
		}
	}
	return stats
}

func (s *UserStore) IsLoading() bool {
	return s.loading.Get()
}

func (s *UserStore) Subscribe(fn func([]domain.User)) func() {
	return s.users.Subscribe(func(users map[string]domain.User) {
		fn(sortedUsers(users))
	})
}

func (s *UserStore) SubscribeLoading(fn func(bool)) func() {
	return s.loading.Subscribe(fn)
}

func copyUsers(src map[string]domain.User) map[string]domain.User {
	dst := make(map[string]domain.User, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedUsers(users map[string]domain.User) []domain.User {
	list := make([]domain.User, 0, len(users))
	for _, u := range users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Address < list[j].Address
	})
	return list
}
