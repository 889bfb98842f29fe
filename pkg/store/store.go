// Package store provides a generic, thread-safe, in-memory table for the
// Connect twin. Records get sequential integer IDs and list in insertion
// order with Connect-style page/per_page pagination.
package store

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Store is a generic, thread-safe, in-memory table of T keyed by int ID.
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[int]T
	order   []int
	counter int
}

// New creates an empty Store.
func New[T any]() *Store[T] {
	return &Store[T]{
		items: make(map[int]T),
		order: make([]int, 0),
	}
}

// NextID reserves the next sequential ID, starting at 1.
func (s *Store[T]) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter
}

// Insert stores item under a fresh ID built by fn and returns it.
func (s *Store[T]) Insert(fn func(id int) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	id := s.counter
	item := fn(id)
	s.items[id] = item
	s.order = append(s.order, id)
	return item
}

// Set stores an item with the given ID. Overwriting keeps the original
// position in insertion order.
func (s *Store[T]) Set(id int, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	if id > s.counter {
		s.counter = id
	}
	s.items[id] = item
}

// Get retrieves an item by ID.
func (s *Store[T]) Get(id int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Update applies fn to the stored item under the write lock. It reports
// false when id does not exist or fn returns false.
func (s *Store[T]) Update(id int, fn func(item *T) bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	if !fn(&item) {
		return item, false
	}
	s.items[id] = item
	return item, true
}

// Delete removes an item by ID. Returns true if the item existed.
func (s *Store[T]) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all items in insertion order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.items[id])
	}
	return result
}

// Filter returns items that match the predicate, in insertion order.
func (s *Store[T]) Filter(predicate func(id int, item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []T
	for _, id := range s.order {
		if predicate(id, s.items[id]) {
			result = append(result, s.items[id])
		}
	}
	return result
}

// Count returns the number of items in the store.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset clears all items and restarts IDs at 1.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int]T)
	s.order = make([]int, 0)
	s.counter = 0
}

// Page is one page of a list response, shaped like Connect's list envelope.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	LastPage    int `json:"last_page"`
	Total       int `json:"total"`
}

// Paginate slices items into a page. Pages start at 1; perPage <= 0 returns
// everything on one page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = max(total, 1)
	}
	lastPage := 1
	if total > 0 {
		lastPage = (total-1)/perPage + 1
	}

	// Pages past the end are empty. Bounds are checked before any
	// arithmetic so huge page or perPage values cannot overflow.
	start := total
	if page-1 < lastPage {
		start = min((page-1)*perPage, total)
	}
	end := start + min(perPage, total-start)

	data := make([]T, end-start)
	copy(data, items[start:end])
	return Page[T]{
		Data:        data,
		CurrentPage: page,
		PerPage:     perPage,
		LastPage:    lastPage,
		Total:       total,
	}
}

// Snapshot returns all items keyed by decimal ID.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]T, len(s.items))
	for k, v := range s.items {
		snapshot[strconv.Itoa(k)] = v
	}
	return snapshot
}

// LoadSnapshot replaces all items. IDs are sorted numerically so listing
// order is deterministic, and new IDs continue after the largest one.
func (s *Store[T]) LoadSnapshot(snapshot map[string]T) error {
	items := make(map[int]T, len(snapshot))
	order := make([]int, 0, len(snapshot))
	counter := 0
	for k, v := range snapshot {
		id, err := strconv.Atoi(k)
		if err != nil {
			return err
		}
		items[id] = v
		order = append(order, id)
		counter = max(counter, id)
	}
	sort.Ints(order)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.order = order
	s.counter = counter
	return nil
}

// MarshalJSON serializes the store as its snapshot.
func (s *Store[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON replaces the store contents from a snapshot.
func (s *Store[T]) UnmarshalJSON(data []byte) error {
	var snapshot map[string]T
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	return s.LoadSnapshot(snapshot)
}

// Clock is a simulated clock anchored at a fixed instant so twin
// timestamps are reproducible across runs.
type Clock struct {
	mu     sync.RWMutex
	base   time.Time
	offset time.Duration
}

// NewClock creates a clock that reads base until advanced.
func NewClock(base time.Time) *Clock {
	return &Clock{base: base.UTC()}
}

// Now returns the simulated time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base.Add(c.offset)
}

// Advance moves the simulated clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// Reset returns the clock to its base instant.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
}

// Offset returns how far the clock has been advanced.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}
