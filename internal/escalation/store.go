package escalation

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Store is the in-memory registry of escalation requests. It is the only
// writer of request state; the router and the HTTP surface both go through
// its methods. All operations are cheap and never block on I/O, so callers
// may use them from any goroutine.
type Store struct {
	mu       sync.Mutex
	requests []*Request
	byID     map[string]*Request
	lastMs   int64
	seq      uint64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Request)}
}

// AddRequest registers a new pending request and returns its ID.
// IDs are time-derived and strictly increasing in creation order; a
// per-process sequence disambiguates requests created within the same
// millisecond.
func (s *Store) AddRequest(user string, timestamp time.Time, message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := timestamp.UnixMilli()
	if ms <= s.lastMs {
		ms = s.lastMs
	}
	s.lastMs = ms
	s.seq++

	req := &Request{
		ID:        fmt.Sprintf("%d-%06d", ms, s.seq),
		User:      user,
		UserName:  displayName(user),
		Timestamp: timestamp,
		Message:   message,
		Status:    StatusPending,
	}
	s.requests = append(s.requests, req)
	s.byID[req.ID] = req

	slog.Info("escalation request registered", "id", req.ID, "user", req.UserName)
	return req.ID
}

// PendingRequests returns a snapshot of all pending requests in creation order.
func (s *Store) PendingRequests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, 0, len(s.requests))
	for _, req := range s.requests {
		if req.Status == StatusPending {
			out = append(out, *req)
		}
	}
	return out
}

// AllRequests returns a snapshot of every request (pending and resolved)
// in creation order.
func (s *Store) AllRequests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	for i, req := range s.requests {
		out[i] = *req
	}
	return out
}

// RequestByID returns a copy of the request with the given ID.
func (s *Store) RequestByID(id string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.byID[id]
	if !ok {
		return Request{}, false
	}
	return *req, true
}

// Resolve marks a request as resolved and records who resolved it
// (DefaultResolvedBy when resolvedBy is empty). Returns false without side
// effects when the ID is unknown. Resolving an already-resolved request is
// permitted and overwrites ResolvedAt/ResolvedBy.
func (s *Store) Resolve(id, resolvedBy string) bool {
	if resolvedBy == "" {
		resolvedBy = DefaultResolvedBy
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.byID[id]
	if !ok {
		return false
	}

	now := time.Now()
	req.Status = StatusResolved
	req.ResolvedAt = &now
	req.ResolvedBy = &resolvedBy

	slog.Info("escalation request resolved", "id", id, "resolved_by", resolvedBy)
	return true
}

// Len returns the total number of requests ever registered.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
