package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"crudapi/internal/models"
)

// MemoryStore is an in-memory backing store shared by MemoryUserRepository
// and MemoryAddressRepository. One lock guards both tables so a user delete
// and its address cascade are observed atomically.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[uint]models.User
	addresses     map[uint]models.Address
	nextUserID    uint
	nextAddressID uint
	now           func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uint]models.User),
		addresses: make(map[uint]models.Address),
		now:       time.Now,
	}
}

// Users returns a UserRepository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

// Addresses returns an AddressRepository view of the store.
func (s *MemoryStore) Addresses() *MemoryAddressRepository {
	return &MemoryAddressRepository{store: s}
}

// emailTaken reports whether email belongs to a user other than exceptID.
// Callers must hold the lock.
func (s *MemoryStore) emailTaken(email string, exceptID uint) bool {
	for id, u := range s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

// withOwner copies the owner into the address. Callers must hold the lock.
func (s *MemoryStore) withOwner(a models.Address) models.Address {
	if owner, ok := s.users[a.UserID]; ok {
		a.User = &owner
	}
	return a
}

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	store *MemoryStore
}

// FindAll returns all users, newest first.
func (r *MemoryUserRepository) FindAll(_ context.Context) ([]models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]models.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

// FindByID returns a user by its ID.
func (r *MemoryUserRepository) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &user, nil
}

// FindByEmail returns the user whose email matches exactly.
func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrRecordNotFound
}

// Create adds a new user, assigning its ID and timestamps.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.emailTaken(user.Email, 0) {
		return fmt.Errorf("failed to create user: %w", ErrDuplicateKey)
	}
	r.store.nextUserID++
	now := r.store.now()
	user.ID = r.store.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.users[user.ID] = *user
	return nil
}

// Update replaces name, email and age of an existing user.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.users[user.ID]
	if !ok {
		return ErrRecordNotFound
	}
	if r.store.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("failed to update user: %w", ErrDuplicateKey)
	}
	current.Name = user.Name
	current.Email = user.Email
	current.Age = user.Age
	current.UpdatedAt = r.store.now()
	r.store.users[user.ID] = current
	*user = current
	return nil
}

// Delete removes the user and every address it owns.
func (r *MemoryUserRepository) Delete(_ context.Context, id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return ErrRecordNotFound
	}
	for addrID, a := range r.store.addresses {
		if a.UserID == id {
			delete(r.store.addresses, addrID)
		}
	}
	delete(r.store.users, id)
	return nil
}

// MemoryAddressRepository is an in-memory implementation of AddressRepository.
type MemoryAddressRepository struct {
	store *MemoryStore
}

func (r *MemoryAddressRepository) collect(match func(models.Address) bool) []models.Address {
	addresses := make([]models.Address, 0)
	for _, a := range r.store.addresses {
		if match(a) {
			addresses = append(addresses, r.store.withOwner(a))
		}
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].ID < addresses[j].ID })
	return addresses
}

// FindAll returns all addresses with their owners.
func (r *MemoryAddressRepository) FindAll(_ context.Context) ([]models.Address, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(models.Address) bool { return true }), nil
}

// FindByID returns an address with its owner.
func (r *MemoryAddressRepository) FindByID(_ context.Context, id uint) (*models.Address, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	address, ok := r.store.addresses[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	address = r.store.withOwner(address)
	return &address, nil
}

// FindByUserID returns the addresses owned by userID.
func (r *MemoryAddressRepository) FindByUserID(_ context.Context, userID uint) ([]models.Address, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.collect(func(a models.Address) bool { return a.UserID == userID }), nil
}

// Create adds a new address. Like a foreign key, it refuses unknown owners.
func (r *MemoryAddressRepository) Create(_ context.Context, address *models.Address) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[address.UserID]; !ok {
		return fmt.Errorf("failed to create address: owner %d does not exist", address.UserID)
	}
	r.store.nextAddressID++
	now := r.store.now()
	address.ID = r.store.nextAddressID
	address.CreatedAt = now
	address.UpdatedAt = now
	stored := *address
	stored.User = nil
	r.store.addresses[address.ID] = stored
	return nil
}

// Update replaces the mutable columns of an existing address.
func (r *MemoryAddressRepository) Update(_ context.Context, address *models.Address) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.addresses[address.ID]
	if !ok {
		return ErrRecordNotFound
	}
	current.Street = address.Street
	current.City = address.City
	current.ZipCode = address.ZipCode
	current.Country = address.Country
	current.UpdatedAt = r.store.now()
	r.store.addresses[address.ID] = current

	owner := address.User
	*address = current
	address.User = owner
	return nil
}

// Delete removes an address by its ID.
func (r *MemoryAddressRepository) Delete(_ context.Context, id uint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.addresses[id]; !ok {
		return ErrRecordNotFound
	}
	delete(r.store.addresses, id)
	return nil
}
