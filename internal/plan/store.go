package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	// PiDir is the project-local directory all plan state lives under.
	PiDir = ".pi"
	// PlansDir holds the plan documents inside PiDir.
	PlansDir = "plans"
	// SessionsDir holds per-plan checkpoint logs inside PlansDir.
	SessionsDir = "sessions"
	// FilePrefix namespaces plan files so foreign files in the plans
	// directory are never mistaken for plans.
	FilePrefix = "PLAN-"
)

// PlansPath returns the plans directory for a project root.
func PlansPath(root string) string {
	return filepath.Join(root, PiDir, PlansDir)
}

// SessionsPath returns the checkpoint log directory for a project root.
func SessionsPath(root string) string {
	return filepath.Join(PlansPath(root), SessionsDir)
}

// FilePath returns the document path for a plan id.
func FilePath(root, id string) string {
	return filepath.Join(PlansPath(root), FilePrefix+id+".md")
}

// Store is the persistence interface for plans. Update takes a mutation
// closure so every caller goes through the same versioned write path.
type Store interface {
	Create(title string, steps []Step, context, executorModel string) (*Plan, error)
	Get(id string) (*Plan, error)
	List(statuses ...Status) ([]*Plan, error)
	Update(id string, mutate func(*Plan) error) (*Plan, error)
	Delete(id string) error
	Invalidate(id string)
	InvalidateAll()
}

// FileStore keeps each plan as a document under <root>/.pi/plans and
// caches parsed plans by id. The disk is the source of truth: writers
// re-read the file before committing, so concurrent sessions sharing the
// directory get version conflicts instead of silent lost updates.
type FileStore struct {
	root string

	mu    sync.Mutex
	cache map[string]*Plan
}

// NewFileStore returns a store rooted at the given project directory.
func NewFileStore(projectRoot string) *FileStore {
	return &FileStore{
		root:  projectRoot,
		cache: make(map[string]*Plan),
	}
}

// Create validates and persists a new plan in status proposed, version 1.
func (s *FileStore) Create(title string, steps []Step, context, executorModel string) (*Plan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("plan title is required")
	}
	if err := ValidateSteps(steps); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(PlansPath(s.root), 0o755); err != nil {
		return nil, fmt.Errorf("creating plans directory: %w", err)
	}

	id, err := s.freshID()
	if err != nil {
		return nil, err
	}

	trimmed := make([]Step, len(steps))
	for i, st := range steps {
		trimmed[i] = Step{
			Description: strings.TrimSpace(st.Description),
			Tool:        strings.TrimSpace(st.Tool),
			Operation:   strings.TrimSpace(st.Operation),
			Target:      strings.TrimSpace(st.Target),
		}
	}

	now := nowRFC3339()
	p := &Plan{
		ID:            id,
		Title:         title,
		Status:        StatusProposed,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Steps:         trimmed,
		ToolsRequired: ToolsFromSteps(trimmed),
		Context:       strings.TrimSpace(context),
		ExecutorModel: strings.TrimSpace(executorModel),
	}

	tmp, err := s.writeTemp(p)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, FilePath(s.root, id)); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("writing plan file: %w", err)
	}

	s.cachePut(p)
	return p.Copy(), nil
}

// Get returns the plan with the given id, from cache when present.
func (s *FileStore) Get(id string) (*Plan, error) {
	if p := s.cacheGet(id); p != nil {
		return p, nil
	}
	p, err := s.readFile(id)
	if err != nil {
		return nil, err
	}
	s.cachePut(p)
	return p.Copy(), nil
}

// List returns plans sorted by creation time, oldest first, optionally
// filtered to the given statuses. Unreadable files are skipped so one
// corrupt document never hides the rest.
func (s *FileStore) List(statuses ...Status) ([]*Plan, error) {
	entries, err := os.ReadDir(PlansPath(s.root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading plans directory: %w", err)
	}

	var plans []*Plan
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ".md") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), ".md")
		p, err := s.readFile(id)
		if err != nil {
			continue // skip unreadable plans
		}
		if len(statuses) > 0 && !statusIn(p.Status, statuses) {
			continue
		}
		s.cachePut(p)
		plans = append(plans, p.Copy())
	}

	sort.Slice(plans, func(i, j int) bool {
		if plans[i].CreatedAt != plans[j].CreatedAt {
			return plans[i].CreatedAt < plans[j].CreatedAt
		}
		return plans[i].ID < plans[j].ID
	})
	return plans, nil
}

// Update applies a mutation under optimistic concurrency. The plan is
// read, mutated, and written to a temp file; the on-disk version is then
// read again and the commit only proceeds if it still matches what the
// mutation was based on. A concurrent bump aborts with a version conflict
// and leaves no temp file behind.
func (s *FileStore) Update(id string, mutate func(*Plan) error) (*Plan, error) {
	current, err := s.readFile(id)
	if err != nil {
		return nil, err
	}
	expected := current.Version

	next := current.Copy()
	if err := mutate(next); err != nil {
		return nil, err
	}
	if len(next.Steps) != len(current.Steps) {
		return nil, fmt.Errorf("plan %q: step list is immutable after creation", id)
	}
	next.Version = expected + 1
	next.UpdatedAt = nowRFC3339()

	tmp, err := s.writeTemp(next)
	if err != nil {
		return nil, err
	}

	check, err := s.readFile(id)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if check.Version != expected {
		os.Remove(tmp)
		return nil, &VersionConflictError{ID: id, Expected: expected, Found: check.Version}
	}

	if err := os.Rename(tmp, FilePath(s.root, id)); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("writing plan file: %w", err)
	}

	s.cachePut(next)
	return next.Copy(), nil
}

// Delete removes a plan document. Executing plans cannot be deleted; stop
// or finish the execution first.
func (s *FileStore) Delete(id string) error {
	p, err := s.readFile(id)
	if err != nil {
		return err
	}
	if p.Status == StatusExecuting {
		return &StateError{ID: id, Status: p.Status, Op: "delete", Need: "a non-executing status"}
	}
	if err := os.Remove(FilePath(s.root, id)); err != nil {
		return fmt.Errorf("deleting plan file: %w", err)
	}
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
	return nil
}

// Invalidate drops one plan from the cache, forcing the next read to hit
// disk. Use it when another process may have rewritten the file.
func (s *FileStore) Invalidate(id string) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// InvalidateAll drops the whole cache.
func (s *FileStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]*Plan)
	s.mu.Unlock()
}

// --- internals ---

// readFile loads and parses a plan document straight from disk.
func (s *FileStore) readFile(id string) (*Plan, error) {
	path := FilePath(s.root, id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("plan %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if p.ID != id {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("metadata id %q does not match filename", p.ID)}
	}
	return p, nil
}

// writeTemp writes the plan to a temp file in the plans directory and
// returns its path. Same directory as the final file, so the commit
// rename stays atomic.
func (s *FileStore) writeTemp(p *Plan) (string, error) {
	f, err := os.CreateTemp(PlansPath(s.root), FilePrefix+p.ID+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp plan file: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(Marshal(p)); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("writing temp plan file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("writing temp plan file: %w", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("writing temp plan file: %w", err)
	}
	return name, nil
}

// freshID draws ids until one is unused. Collisions on 8 hex chars are
// rare; ten tries failing means something else is wrong.
func (s *FileStore) freshID() (string, error) {
	for i := 0; i < 10; i++ {
		id := NewID()
		if _, err := os.Stat(FilePath(s.root, id)); errors.Is(err, os.ErrNotExist) {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate an unused plan id")
}

func (s *FileStore) cacheGet(id string) *Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.cache[id]; ok {
		return p.Copy()
	}
	return nil
}

func (s *FileStore) cachePut(p *Plan) {
	s.mu.Lock()
	s.cache[p.ID] = p.Copy()
	s.mu.Unlock()
}

func statusIn(st Status, set []Status) bool {
	for _, v := range set {
		if v == st {
			return true
		}
	}
	return false
}
