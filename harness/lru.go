package harness

import "sync"

// LRUStore is an in-memory LRU cache in front of a backing Store. Saves
// write through; loads fill the cache on miss.
type LRUStore struct {
	mu   sync.Mutex
	cap  int
	back Store

	// Doubly-linked list for recency ordering, most recent at head.
	head, tail *cacheEntry
	items      map[string]*cacheEntry
}

type cacheEntry struct {
	key    string
	report *RunReport
	prev   *cacheEntry
	next   *cacheEntry
}

// NewLRUStore creates a cache with the given capacity in front of back.
// Capacity below 1 is raised to 1.
func NewLRUStore(capacity int, back Store) *LRUStore {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUStore{
		cap:   capacity,
		back:  back,
		items: make(map[string]*cacheEntry, capacity),
	}
}

// Save caches the report and writes it through to the backing store.
func (s *LRUStore) Save(report *RunReport) error {
	s.mu.Lock()
	s.insertLocked(report.ID, report)
	s.mu.Unlock()

	return s.back.Save(report)
}

// Load checks the cache first. On miss it loads from the backing store
// and promotes the report into the cache.
func (s *LRUStore) Load(runID string) (*RunReport, error) {
	s.mu.Lock()
	if e, ok := s.items[runID]; ok {
		s.moveToFront(e)
		report := e.report
		s.mu.Unlock()
		return report, nil
	}
	s.mu.Unlock()

	report, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.insertLocked(runID, report)
	s.mu.Unlock()
	return report, nil
}

// insertLocked updates or inserts an entry and evicts past capacity.
// The caller holds the mutex.
func (s *LRUStore) insertLocked(key string, report *RunReport) {
	if e, ok := s.items[key]; ok {
		e.report = report
		s.moveToFront(e)
		return
	}
	e := &cacheEntry{key: key, report: report}
	s.items[key] = e
	s.pushFront(e)
	if len(s.items) > s.cap {
		s.evict()
	}
}

func (s *LRUStore) pushFront(e *cacheEntry) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *LRUStore) moveToFront(e *cacheEntry) {
	if s.head == e {
		return
	}
	s.remove(e)
	s.pushFront(e)
}

func (s *LRUStore) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *LRUStore) evict() {
	if s.tail == nil {
		return
	}
	e := s.tail
	s.remove(e)
	delete(s.items, e.key)
}
