package editor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/domain"
)

// Loader loads the stored snapshot of an interview.
type Loader interface {
	FindByID(ctx context.Context, id uuid.UUID, ownerEmail string) (*domain.Interview, error)
}

// Saver persists an edited snapshot.
type Saver interface {
	Handle(ctx context.Context, cmd commands.SaveInterviewCommand) (*commands.SaveResult, error)
}

// Creator creates a new interview.
type Creator interface {
	Handle(ctx context.Context, cmd commands.CreateInterviewCommand) (*domain.Interview, error)
}

type session struct {
	original *domain.Interview
	edited   *domain.Interview
	dirty    bool
	saving   bool
}

// Store keeps one editing session per interview. It is safe for concurrent
// use.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	loader   Loader
	saver    Saver
	creator  Creator
	logger   *slog.Logger
}

// NewStore creates a new Store.
func NewStore(loader Loader, saver Saver, creator Creator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[uuid.UUID]*session),
		loader:   loader,
		saver:    saver,
		creator:  creator,
		logger:   logger,
	}
}

// Create creates an interview and opens a session on it.
func (s *Store) Create(ctx context.Context, ownerEmail, title string) (*domain.Interview, error) {
	interview, err := s.creator.Handle(ctx, commands.CreateInterviewCommand{OwnerEmail: ownerEmail, Title: title})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[interview.ID()] = &session{original: interview.Clone(), edited: interview.Clone()}
	return interview.Clone(), nil
}

// Open returns the edited snapshot, loading the interview when no session
// exists yet.
func (s *Store) Open(ctx context.Context, id uuid.UUID, ownerEmail string) (*domain.Interview, error) {
	ownerEmail = domain.NormalizeOwner(ownerEmail)

	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		defer s.mu.Unlock()
		if sess.original.OwnerEmail() != ownerEmail {
			return nil, domain.ErrInterviewNotFound
		}
		return sess.edited.Clone(), nil
	}
	s.mu.Unlock()

	interview, err := s.loader.FindByID(ctx, id, ownerEmail)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another caller may have opened it meanwhile
	if sess, ok := s.sessions[id]; ok {
		return sess.edited.Clone(), nil
	}
	s.sessions[id] = &session{original: interview, edited: interview.Clone()}
	return interview.Clone(), nil
}

// session returns the session of id. Callers hold s.mu.
func (s *Store) session(id uuid.UUID, ownerEmail string) (*session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotOpen
	}
	if sess.original.OwnerEmail() != domain.NormalizeOwner(ownerEmail) {
		return nil, domain.ErrInterviewNotFound
	}
	return sess, nil
}

// Dispatch applies actions to the edited snapshot and returns the result.
// Either all actions apply or none does.
func (s *Store) Dispatch(id uuid.UUID, ownerEmail string, actions ...Action) (*domain.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(id, ownerEmail)
	if err != nil {
		return nil, err
	}
	if sess.saving {
		return nil, ErrSaveInFlight
	}

	next, err := ReduceAll(sess.edited, actions...)
	if err != nil {
		return nil, err
	}
	sess.edited = next
	if len(actions) > 0 {
		sess.dirty = true
	}
	return next.Clone(), nil
}

// Edited returns the edited snapshot.
func (s *Store) Edited(id uuid.UUID, ownerEmail string) (*domain.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(id, ownerEmail)
	if err != nil {
		return nil, err
	}
	return sess.edited.Clone(), nil
}

// IsDirty reports whether the session has unsaved edits.
func (s *Store) IsDirty(id uuid.UUID, ownerEmail string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(id, ownerEmail)
	if err != nil {
		return false, err
	}
	return sess.dirty, nil
}

// Save persists the edited snapshot. On success the canonical interview
// replaces both snapshots; on failure the edits stay in place.
func (s *Store) Save(ctx context.Context, id uuid.UUID, ownerEmail string) (*commands.SaveResult, error) {
	return s.save(ctx, id, ownerEmail, nil)
}

// Publish makes the interview live and saves it. When the save fails the
// edited snapshot returns to its pre-publish state.
func (s *Store) Publish(ctx context.Context, id uuid.UUID, ownerEmail string) (*commands.SaveResult, error) {
	return s.save(ctx, id, ownerEmail, PublishInterview{})
}

// Close closes the interview and saves it, restoring on failure like Publish.
func (s *Store) Close(ctx context.Context, id uuid.UUID, ownerEmail string) (*commands.SaveResult, error) {
	return s.save(ctx, id, ownerEmail, CloseInterview{})
}

func (s *Store) save(ctx context.Context, id uuid.UUID, ownerEmail string, transition Action) (*commands.SaveResult, error) {
	s.mu.Lock()
	sess, err := s.session(id, ownerEmail)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sess.saving {
		s.mu.Unlock()
		return nil, ErrSaveInFlight
	}

	restore := sess.edited
	if transition != nil {
		next, err := Reduce(sess.edited, transition)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		sess.edited = next
	}
	sess.saving = true
	cmd := commands.SaveInterviewCommand{Original: sess.original.Clone(), Edited: sess.edited.Clone()}
	s.mu.Unlock()

	result, err := s.saver.Handle(ctx, cmd)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.saving = false
	if err != nil {
		sess.edited = restore
		s.logger.WarnContext(ctx, "editor save failed", "interview_id", id, "error", err)
		return nil, err
	}

	sess.original = result.Interview.Clone()
	sess.edited = result.Interview.Clone()
	sess.dirty = false
	return result, nil
}

// Sync moves a clean session onto interview after it was saved outside the
// session. A dirty session keeps its edits and its next save fails with
// domain.ErrStaleInterview.
func (s *Store) Sync(interview *domain.Interview) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[interview.ID()]
	if !ok || sess.dirty || sess.saving || sess.original.OwnerEmail() != interview.OwnerEmail() {
		return
	}
	sess.original = interview.Clone()
	sess.edited = interview.Clone()
}

// Discard drops the session and its unsaved edits.
func (s *Store) Discard(id uuid.UUID, ownerEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.session(id, ownerEmail); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

// Edit opens the interview, applies actions and saves in one call. A failed
// save leaves the edits in the session.
func (s *Store) Edit(ctx context.Context, id uuid.UUID, ownerEmail string, actions ...Action) (*commands.SaveResult, error) {
	if _, err := s.Open(ctx, id, ownerEmail); err != nil {
		return nil, err
	}
	if _, err := s.Dispatch(id, ownerEmail, actions...); err != nil {
		return nil, err
	}
	return s.Save(ctx, id, ownerEmail)
}
