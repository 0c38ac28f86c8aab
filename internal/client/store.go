package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/planner"
)

// State is what the client keeps between runs.
type State struct {
	Token     string       `json:"token,omitempty"`
	User      *models.User `json:"user,omitempty"`
	Favorites []string     `json:"favorites,omitempty"`
	MealPlan  planner.Plan `json:"mealPlan"`
}

// SignedIn reports whether a session token is stored.
func (s *State) SignedIn() bool { return s.Token != "" }

func (s *State) ClearSession() {
	s.Token = ""
	s.User = nil
	s.Favorites = nil
}

func (s *State) IsFavorite(id string) bool {
	for _, f := range s.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// SetFavorite updates the cached favorites list.
func (s *State) SetFavorite(id string, favorite bool) {
	out := s.Favorites[:0]
	for _, f := range s.Favorites {
		if f != id {
			out = append(out, f)
		}
	}
	if favorite {
		out = append(out, id)
	}
	s.Favorites = out
}

// LocalStore persists State in a single JSON file. Concurrent writers are
// not coordinated; the last save wins.
type LocalStore struct {
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// DefaultStatePath is state.json under the user's config directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "healthy-cookbook", "state.json"), nil
}

func (s *LocalStore) Path() string { return s.path }

// Load returns the stored state, or an empty one when nothing is saved yet.
func (s *LocalStore) Load() (*State, error) {
	st := &State{MealPlan: planner.Plan{}}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	if st.MealPlan == nil {
		st.MealPlan = planner.Plan{}
	}
	return st, nil
}

// Save writes to a temporary file and renames it over the old state.
func (s *LocalStore) Save(st *State) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Update loads the state, applies fn and saves the result. Nothing is
// written when fn fails.
func (s *LocalStore) Update(fn func(*State) error) (*State, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.Save(st); err != nil {
		return nil, err
	}
	return st, nil
}
