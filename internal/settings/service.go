package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

const asyncWriteTimeout = 5 * time.Second

// Service provides typed access to a Store and notifies per-key subscribers.
type Service struct {
	store  Store
	logger *slog.Logger

	mu       sync.Mutex
	watchers map[Key]map[int]chan string
	nextID   int

	pending sync.WaitGroup
}

// NewService creates a settings service over store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		logger:   logger,
		watchers: make(map[Key]map[int]chan string),
	}
}

// String returns the value for key, or its default when it was never written.
func (s *Service) String(ctx context.Context, key Key) (string, error) {
	v, ok, err := s.store.Get(ctx, string(key))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return Default(key), nil
	}
	return v, nil
}

// Bool returns the value for key parsed as a boolean. Unparsable values read as false.
func (s *Service) Bool(ctx context.Context, key Key) (bool, error) {
	v, err := s.String(ctx, key)
	if err != nil {
		return false, err
	}
	b, _ := strconv.ParseBool(v)
	return b, nil
}

// Set writes a single value.
func (s *Service) Set(ctx context.Context, key Key, value string) error {
	return s.SetMany(ctx, map[Key]string{key: value})
}

// SetBool writes a boolean value.
func (s *Service) SetBool(ctx context.Context, key Key, value bool) error {
	return s.Set(ctx, key, strconv.FormatBool(value))
}

// SetMany writes all values atomically and then notifies subscribers.
func (s *Service) SetMany(ctx context.Context, values map[Key]string) error {
	if len(values) == 0 {
		return nil
	}

	raw := make(map[string]string, len(values))
	for k, v := range values {
		raw[string(k)] = v
	}
	if err := s.store.SetMany(ctx, raw); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		for _, ch := range s.watchers[k] {
			deliver(ch, v)
		}
	}
	return nil
}

// SaveAsync writes values in the background. Failures are logged and dropped.
func (s *Service) SaveAsync(values map[Key]string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
		defer cancel()

		if err := s.SetMany(ctx, values); err != nil {
			s.logger.Warn("background settings write failed", "keys", len(values), "error", err)
		}
	}()
}

// Wait blocks until every SaveAsync write issued so far has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// Watch subscribes to key. The channel receives the current value first and then
// every later write; a slow reader only sees the latest value. Calling the returned
// function closes this subscription only.
func (s *Service) Watch(ctx context.Context, key Key) (<-chan string, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.String(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan string, 1)
	ch <- current

	id := s.nextID
	s.nextID++
	if s.watchers[key] == nil {
		s.watchers[key] = make(map[int]chan string)
	}
	s.watchers[key][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers[key], id)
			if len(s.watchers[key]) == 0 {
				delete(s.watchers, key)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

// deliver replaces any undelivered value with v. Callers hold s.mu, so they are
// the only senders on ch.
func deliver(ch chan string, v string) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// All returns every stored setting plus the defaults of keys never written.
func (s *Service) All(ctx context.Context) (map[Key]string, error) {
	raw, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	out := make(map[Key]string, len(raw)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range raw {
		out[Key(k)] = v
	}
	return out, nil
}
