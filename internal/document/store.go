package document

import "sync"

// Store holds one document and enforces the section lifecycle invariants.
// It has no side effects beyond its own state; snapshotting and task
// management live with the caller.
type Store struct {
	mu  sync.Mutex
	doc Document
}

// NewStore instantiates a store with an empty document built from the template.
func NewStore(tmpl Template, brief string) *Store {
	return &Store{doc: tmpl.NewDocument(brief)}
}

// Document returns a deep copy of the current document.
func (s *Store) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Section returns a copy of the named section.
func (s *Store) Section(title string) (Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.doc.Section(title)
	if !ok {
		return Section{}, ErrSectionNotFound
	}
	return sec, nil
}

// SetBrief replaces the freeform brief that seeds generation prompts.
func (s *Store) SetBrief(brief string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Brief = brief
}

// SetContent applies a manual edit. Edits are rejected while a generation
// task is in flight, and always leave the section in Reviewing: edited
// content has to be re-confirmed before it counts as completed.
func (s *Store) SetContent(title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.section(title)
	if sec == nil {
		return ErrSectionNotFound
	}
	if sec.GenState == GenerationRunning {
		return ErrSectionLocked
	}
	sec.Content = content
	sec.Status = StatusReviewing
	return nil
}

// Confirm promotes a reviewed section to Completed so dependent sections can
// be generated. Confirming an empty section is rejected.
func (s *Store) Confirm(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.section(title)
	if sec == nil {
		return ErrSectionNotFound
	}
	if sec.GenState == GenerationRunning {
		return ErrSectionLocked
	}
	if sec.Content == "" {
		return ErrEmptySection
	}
	sec.Status = StatusCompleted
	return nil
}

// MarkGenerating is the single-flight admission point: it fails if a task is
// already running for the section.
func (s *Store) MarkGenerating(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.section(title)
	if sec == nil {
		return ErrSectionNotFound
	}
	if sec.GenState == GenerationRunning {
		return ErrAlreadyGenerating
	}
	sec.GenState = GenerationRunning
	return nil
}

// ApplyGenerationResult installs a successful generation: content replaced,
// status Completed, generation state back to idle.
func (s *Store) ApplyGenerationResult(title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.section(title)
	if sec == nil {
		return ErrSectionNotFound
	}
	sec.Content = content
	sec.Status = StatusCompleted
	sec.GenState = GenerationIdle
	return nil
}

// ClearGenerating returns the section to idle without touching content or
// status. Used on failure and cancellation.
func (s *Store) ClearGenerating(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sec := s.section(title); sec != nil {
		sec.GenState = GenerationIdle
	}
}

func (s *Store) section(title string) *Section {
	for i := range s.doc.Sections {
		if s.doc.Sections[i].Title == title {
			return &s.doc.Sections[i]
		}
	}
	return nil
}
