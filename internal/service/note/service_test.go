package note

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mu    sync.Mutex
	notes map[string]*domain.Note
}

func newMockRepo() *mockRepo {
	return &mockRepo{notes: make(map[string]*domain.Note)}
}

func (m *mockRepo) Create(_ context.Context, n *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockRepo) ListByAccount(_ context.Context, accountID string) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Note
	for _, n := range m.notes {
		if n.AccountID == accountID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, n *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[n.ID]; !ok {
		return ErrNotFound
	}
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

type mockAccounts struct {
	ids map[string]bool
}

func (m *mockAccounts) Get(_ context.Context, id string) (*domain.Account, error) {
	if !m.ids[id] {
		return nil, directory.ErrNotFound
	}
	return &domain.Account{ID: id}, nil
}

func fixture() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, &mockAccounts{ids: map[string]bool{"acct-1": true}})
	return svc, repo
}

func TestCreateNote(t *testing.T) {
	svc, _ := fixture()

	n, err := svc.Create(context.Background(), "acct-1", "buy more birdseed", "")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "acct-1", n.AccountID)
	assert.Equal(t, domain.DefaultNoteColor, n.Color, "omitted color takes the default")
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)

	pink, err := svc.Create(context.Background(), "acct-1", "write to the lighthouse", "pink")
	require.NoError(t, err)
	assert.Equal(t, "pink", pink.Color)
}

func TestCreateNoteValidation(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.Create(context.Background(), "acct-1", "   ", "")
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "content", ve.Field)

	_, err = svc.Create(context.Background(), "", "something", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "account_id", ve.Field)
}

func TestCreateNoteUnknownAccount(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.Create(context.Background(), "ghost", "hello", "")
	require.ErrorIs(t, err, directory.ErrNotFound)
}

func TestListNotesNewestFirst(t *testing.T) {
	svc, _ := fixture()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	svc.WithClock(func() time.Time { return clock })

	first, err := svc.Create(context.Background(), "acct-1", "first", "")
	require.NoError(t, err)
	clock = base.Add(time.Minute)
	second, err := svc.Create(context.Background(), "acct-1", "second", "")
	require.NoError(t, err)

	notes, err := svc.List(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestUpdateNote(t *testing.T) {
	svc, _ := fixture()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	svc.WithClock(func() time.Time { return clock })

	n, err := svc.Create(context.Background(), "acct-1", "draft thought", "")
	require.NoError(t, err)

	clock = base.Add(time.Hour)
	updated, err := svc.Update(context.Background(), n.ID, "finished thought", "blue")
	require.NoError(t, err)
	assert.Equal(t, "finished thought", updated.Content)
	assert.Equal(t, "blue", updated.Color)
	assert.True(t, updated.UpdatedAt.After(n.UpdatedAt))
	assert.Equal(t, n.CreatedAt, updated.CreatedAt)

	// Omitting the color keeps the current one.
	kept, err := svc.Update(context.Background(), n.ID, "still blue", "")
	require.NoError(t, err)
	assert.Equal(t, "blue", kept.Color)

	_, err = svc.Update(context.Background(), "missing", "anything", "")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), n.ID, " ", "")
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDeleteNote(t *testing.T) {
	svc, _ := fixture()

	n, err := svc.Create(context.Background(), "acct-1", "disposable", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), n.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), n.ID), ErrNotFound)

	notes, err := svc.List(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, notes)
}
