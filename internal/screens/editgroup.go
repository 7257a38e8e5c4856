package screens

import (
	"context"
	"errors"
	"sync"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/forms"
	"github.com/turnupspot/turnupspot-client/internal/nav"
	"github.com/turnupspot/turnupspot-client/internal/notify"
)

// ErrNotLoaded is returned when an edit is submitted before its group loaded
var ErrNotLoaded = errors.New("group not loaded")

// draftHolder serializes edits of one SportGroupDraft
type draftHolder struct {
	mu    sync.Mutex
	draft forms.SportGroupDraft
}

func (h *draftHolder) Draft() forms.SportGroupDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.draft
}

// Update replaces the draft with fn applied to it
func (h *draftHolder) Update(fn func(forms.SportGroupDraft) forms.SportGroupDraft) forms.SportGroupDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draft = fn(h.draft)
	return h.draft
}

// TypeAddress runs suggestion lookup outside the lock so slow providers do
// not block other edits
func (h *draftHolder) TypeAddress(ctx context.Context, deps *Deps, text string) forms.SportGroupDraft {
	prev := h.Draft()
	next := prev.TypeAddress(ctx, deps.Places, text)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.draft.VenueAddress != prev.VenueAddress {
		// a newer keystroke landed meanwhile
		return h.draft
	}
	h.draft = next
	return h.draft
}

func (h *draftHolder) SelectSuggestion(ctx context.Context, deps *Deps, placeID string) (forms.SportGroupDraft, error) {
	next, err := h.Draft().SelectSuggestion(ctx, deps.Places, placeID)
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.draft.ShowSuggestions = false
		notify.Failure(deps.notifier(), "Could not resolve that address")
		return h.draft, err
	}
	h.draft = next
	return h.draft, nil
}

// CreateGroup is the new group form
type CreateGroup struct {
	draftHolder
	deps *Deps
}

func NewCreateGroup(deps *Deps, sport domain.SportsType) *CreateGroup {
	s := &CreateGroup{deps: deps}
	s.draft = forms.NewSportGroupDraft(sport)
	return s
}

func (s *CreateGroup) TypeAddress(ctx context.Context, text string) forms.SportGroupDraft {
	return s.draftHolder.TypeAddress(ctx, s.deps, text)
}

func (s *CreateGroup) SelectSuggestion(ctx context.Context, placeID string) (forms.SportGroupDraft, error) {
	return s.draftHolder.SelectSuggestion(ctx, s.deps, placeID)
}

// Submit validates and creates the group, then opens it. Validation errors
// are returned without a request.
func (s *CreateGroup) Submit(ctx context.Context) (*domain.SportGroup, error) {
	if _, err := s.deps.requireToken(); err != nil {
		return nil, err
	}
	fields, img, err := s.Draft().Submission()
	if err != nil {
		return nil, err
	}

	var created *domain.SportGroup
	err = s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "create_group",
		Do: func(ctx context.Context) error {
			g, err := s.deps.Groups.Create(ctx, fields, img)
			created = g
			return err
		},
		Apply:   func() { s.deps.Nav.Navigate(nav.MyGroupDetail(created.ID.String())) },
		Success: "Sport group created successfully!",
		Failure: "Failed to create sport group",
	})
	return created, err
}

// EditGroup edits an existing group. The draft is seeded from the first
// successful load and never overwritten by later loads.
type EditGroup struct {
	draftHolder
	deps   *Deps
	id     string
	group  *fetch.Resource[*domain.SportGroup]
	seeded bool
}

func NewEditGroup(deps *Deps, groupID string) *EditGroup {
	s := &EditGroup{deps: deps, id: groupID}
	s.group = fetch.NewResource(func(ctx context.Context) (*domain.SportGroup, error) {
		return deps.Groups.Get(ctx, s.id)
	})
	s.group.OnChange(func(v fetch.View[*domain.SportGroup]) {
		if v.State != fetch.Ready || v.Data == nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.seeded {
			s.draft = forms.SportGroupFrom(*v.Data)
			s.seeded = true
		}
	})
	return s
}

func (s *EditGroup) Load(ctx context.Context) error {
	token, err := s.deps.requireToken()
	if err != nil {
		return err
	}
	return s.group.Sync(ctx, s.id, token)
}

func (s *EditGroup) View() fetch.View[*domain.SportGroup] { return s.group.View() }
func (s *EditGroup) Close() { s.group.Close() }

func (s *EditGroup) TypeAddress(ctx context.Context, text string) forms.SportGroupDraft {
	return s.draftHolder.TypeAddress(ctx, s.deps, text)
}

func (s *EditGroup) SelectSuggestion(ctx context.Context, placeID string) (forms.SportGroupDraft, error) {
	return s.draftHolder.SelectSuggestion(ctx, s.deps, placeID)
}

// Submit saves the draft and returns to the group page
func (s *EditGroup) Submit(ctx context.Context) (*domain.SportGroup, error) {
	s.mu.Lock()
	seeded := s.seeded
	s.mu.Unlock()
	if !seeded {
		return nil, ErrNotLoaded
	}
	fields, img, err := s.Draft().Submission()
	if err != nil {
		return nil, err
	}

	var updated *domain.SportGroup
	err = s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "update_group",
		Do: func(ctx context.Context) error {
			g, err := s.deps.Groups.Update(ctx, s.id, fields, img)
			updated = g
			return err
		},
		Apply: func() {
			s.group.Patch(func(*domain.SportGroup) *domain.SportGroup { return updated })
			s.deps.Nav.Navigate(nav.MyGroupDetail(s.id))
		},
		Success: "Sport group updated successfully!",
		Failure: "Failed to update sport group",
	})
	return updated, err
}

func (s *EditGroup) Cancel() {
	s.deps.Nav.Navigate(nav.MyGroupDetail(s.id))
}
