package todo

import (
	"errors"
	"fmt"
	"sync"
)

var ErrNotFound = errors.New("todo not found")

type Todo struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Store is an in-memory todo list. Ids are assigned from 1 and never reused.
type Store struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]Todo
	order  []int
}

func NewStore() *Store {
	return &Store{nextID: 1, items: make(map[int]Todo)}
}

func (s *Store) List() []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Todo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *Store) Create(title string, done bool) Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := Todo{ID: s.nextID, Title: title, Done: done}
	s.nextID++
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item
}

func (s *Store) Get(id int) (Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return Todo{}, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// SetDone updates the done flag, the only mutable field of a todo.
func (s *Store) SetDone(id int, done bool) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return Todo{}, fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	item.Done = done
	s.items[id] = item
	return item, nil
}

func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("todo %d: %w", id, ErrNotFound)
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
