package draft

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mu     sync.Mutex
	drafts map[string]*domain.Draft
}

func newMockRepo() *mockRepo {
	return &mockRepo{drafts: make(map[string]*domain.Draft)}
}

func (m *mockRepo) Upsert(_ context.Context, d *domain.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.drafts[d.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) ListBySender(_ context.Context, senderID string) ([]domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Draft
	for _, d := range m.drafts {
		if d.SenderID == senderID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}

type mockSubmitter struct {
	err    error
	inputs []letter.SubmitInput
}

func (m *mockSubmitter) Submit(_ context.Context, in letter.SubmitInput) (*domain.Letter, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, in)
	return &domain.Letter{
		ID:               "ltr-1",
		SenderID:         in.SenderID,
		RecipientAddress: in.RecipientAddress,
		Content:          in.Content,
		Status:           domain.LetterSending,
	}, nil
}

func fixture() (*Service, *mockRepo, *mockSubmitter) {
	repo := newMockRepo()
	submitter := &mockSubmitter{}
	svc := NewService(repo, submitter)
	return svc, repo, submitter
}

func TestSaveCreatesAndUpdates(t *testing.T) {
	svc, _, _ := fixture()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return t0 })

	d, err := svc.Save(context.Background(), SaveInput{
		SenderID: "acct-1",
		Content:  "Dear...",
	})
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)
	assert.Equal(t, t0, d.UpdatedAt)

	t1 := t0.Add(time.Minute)
	svc.WithClock(func() time.Time { return t1 })
	updated, err := svc.Save(context.Background(), SaveInput{
		ID:               d.ID,
		SenderID:         "acct-1",
		Content:          "Dear friend, more words now.",
		RecipientAddress: "north-tower",
	})
	require.NoError(t, err)
	assert.Equal(t, d.ID, updated.ID)
	assert.Equal(t, t1, updated.UpdatedAt)

	got, err := svc.Get(context.Background(), d.ID, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "north-tower", got.RecipientAddress)
}

func TestSaveSkipsLetterValidation(t *testing.T) {
	svc, _, _ := fixture()

	// A two-character body and no recipient would fail letter submission,
	// but a draft takes it.
	d, err := svc.Save(context.Background(), SaveInput{SenderID: "acct-1", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", d.Content)
}

func TestSaveFromPages(t *testing.T) {
	svc, _, _ := fixture()

	d, err := svc.Save(context.Background(), SaveInput{
		SenderID: "acct-1",
		Pages:    []string{"first page", "second page"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first page", "second page"}, d.Pages())

	_, err = svc.Save(context.Background(), SaveInput{
		SenderID: "acct-1",
		Content:  "blob",
		Pages:    []string{"page"},
	})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestSaveOwnership(t *testing.T) {
	svc, _, _ := fixture()

	d, err := svc.Save(context.Background(), SaveInput{SenderID: "acct-1", Content: "mine"})
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), SaveInput{ID: d.ID, SenderID: "acct-2", Content: "stolen"})
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(context.Background(), d.ID, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Content)
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _ := fixture()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, content := range []string{"oldest", "middle", "newest"} {
		tick := t0.Add(time.Duration(i) * time.Minute)
		svc.WithClock(func() time.Time { return tick })
		_, err := svc.Save(context.Background(), SaveInput{SenderID: "acct-1", Content: content})
		require.NoError(t, err)
	}
	svc.WithClock(func() time.Time { return t0 })
	_, err := svc.Save(context.Background(), SaveInput{SenderID: "acct-2", Content: "other account"})
	require.NoError(t, err)

	drafts, err := svc.List(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.Equal(t, "newest", drafts[0].Content)
	assert.Equal(t, "oldest", drafts[2].Content)
}

func TestDiscard(t *testing.T) {
	svc, _, _ := fixture()

	d, err := svc.Save(context.Background(), SaveInput{SenderID: "acct-1", Content: "bye"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Discard(context.Background(), d.ID, "acct-2"), ErrNotFound)
	require.NoError(t, svc.Discard(context.Background(), d.ID, "acct-1"))

	_, err = svc.Get(context.Background(), d.ID, "acct-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPromote(t *testing.T) {
	svc, _, submitter := fixture()

	content := strings.Repeat("A proper letter body with enough length. ", 3)
	d, err := svc.Save(context.Background(), SaveInput{
		SenderID:         "acct-1",
		Content:          content,
		RecipientAddress: "north-tower",
		StampIDs:         []string{"golden-sol"},
		EnvelopeID:       "classic-parchment",
	})
	require.NoError(t, err)

	l, err := svc.Promote(context.Background(), d.ID, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LetterSending, l.Status)

	require.Len(t, submitter.inputs, 1)
	in := submitter.inputs[0]
	assert.Equal(t, "north-tower", in.RecipientAddress)
	assert.Equal(t, []string{"golden-sol"}, in.StampIDs)
	assert.Equal(t, "classic-parchment", in.EnvelopeID)

	_, err = svc.Get(context.Background(), d.ID, "acct-1")
	require.ErrorIs(t, err, ErrNotFound, "promoted draft is deleted")
}

func TestPromoteKeepsDraftOnSubmitFailure(t *testing.T) {
	svc, _, submitter := fixture()
	submitter.err = domain.ValidationError{Field: "content", Reason: "too short"}

	d, err := svc.Save(context.Background(), SaveInput{SenderID: "acct-1", Content: "hi"})
	require.NoError(t, err)

	_, err = svc.Promote(context.Background(), d.ID, "acct-1")
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.Get(context.Background(), d.ID, "acct-1")
	require.NoError(t, err, "failed promotion leaves the draft intact")
}
