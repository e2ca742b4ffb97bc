package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
)

func newResolverFixture(t *testing.T) (*testutil.MockStore, *Resolver) {
	t.Helper()
	store := testutil.NewMockStore()
	return store, NewResolver(store, store)
}

func taskIDs(tasks []*domain.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func TestResolver_ExactIDAlwaysWins(t *testing.T) {
	store, resolver := newResolverFixture(t)
	var all []*domain.Task
	for range 50 {
		all = append(all, store.AddTask(&domain.Task{ID: uuid.NewString(), Title: "Same title"}))
	}

	for _, task := range all {
		res, err := resolver.Resolve(context.Background(), task.ID)
		require.NoError(t, err)
		require.True(t, res.Found())
		assert.Equal(t, task.ID, res.Task.ID)
		assert.Len(t, res.Matches, 1)
	}
}

func TestResolver_ExactIDDoesNotFallThroughToPrefix(t *testing.T) {
	store, resolver := newResolverFixture(t)
	short := store.AddTask(&domain.Task{ID: "abc", Title: "Short"})
	store.AddTask(&domain.Task{ID: "abcdef", Title: "Long"})

	res, err := resolver.Resolve(context.Background(), "abc")

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, short.ID, res.Task.ID)
}

func TestResolver_SharedPrefixIsAmbiguous(t *testing.T) {
	store, resolver := newResolverFixture(t)
	a := store.AddTask(&domain.Task{ID: "a1b2c3d4-0000-4000-8000-000000000001", Title: "One"})
	b := store.AddTask(&domain.Task{ID: "a1b2c3d4-0000-4000-8000-000000000002", Title: "Two"})
	c := store.AddTask(&domain.Task{ID: "a1b2c3ff-0000-4000-8000-000000000003", Title: "Three"})
	store.AddTask(&domain.Task{ID: "ffffffff-0000-4000-8000-000000000004", Title: "Other"})

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "a1b2c3", want: []string{a.ID, b.ID, c.ID}},
		{prefix: "a1b2c3d4", want: []string{a.ID, b.ID}},
		{prefix: "a1b2c3d4-0000-4000-8000-00000000000", want: []string{a.ID, b.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			res, err := resolver.Resolve(context.Background(), tt.prefix)

			require.NoError(t, err)
			assert.False(t, res.Found())
			assert.True(t, res.Ambiguous())
			assert.ElementsMatch(t, tt.want, taskIDs(res.Matches))
		})
	}
}

func TestResolver_SixCharPrefixUnique(t *testing.T) {
	store, resolver := newResolverFixture(t)
	target := store.AddTask(&domain.Task{ID: "0123456789ab-target", Title: "Target"})
	store.AddTask(&domain.Task{ID: "fedcba987654-other", Title: "Other"})

	res, err := resolver.Resolve(context.Background(), target.ID[:6])

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, target.ID, res.Task.ID)
}

func TestResolver_TitleCaseInsensitive(t *testing.T) {
	store, resolver := newResolverFixture(t)
	task := store.AddTask(&domain.Task{Title: "Fix login authentication bug"})
	store.AddTask(&domain.Task{Title: "Write docs"})

	res, err := resolver.Resolve(context.Background(), "LOGIN AUTH")

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, task.ID, res.Task.ID)
}

func TestResolver_TitleAmbiguous(t *testing.T) {
	store, resolver := newResolverFixture(t)
	bug := store.AddTask(&domain.Task{Title: "Fix login bug"})
	crash := store.AddTask(&domain.Task{Title: "Fix login crash"})
	store.AddTask(&domain.Task{Title: "Refactor logout"})

	res, err := resolver.Resolve(context.Background(), "login")

	require.NoError(t, err)
	assert.True(t, res.Ambiguous())
	require.Len(t, res.Matches, 2)
	assert.ElementsMatch(t, []string{bug.ID, crash.ID}, taskIDs(res.Matches))
}

func TestResolver_IDPrefixBeatsTitle(t *testing.T) {
	store, resolver := newResolverFixture(t)
	byID := store.AddTask(&domain.Task{ID: "beef0001", Title: "Unrelated"})
	store.AddTask(&domain.Task{ID: "cafe0002", Title: "beef stew"})

	res, err := resolver.Resolve(context.Background(), "beef")

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, byID.ID, res.Task.ID)
}

func TestResolver_DisplayID(t *testing.T) {
	store, resolver := newResolverFixture(t)
	wrk := store.AddBoard(&domain.Board{Prefix: "WRK"})
	ops := store.AddBoard(&domain.Board{Prefix: "OPS"})
	store.AddTask(&domain.Task{BoardID: wrk.ID, Title: "First"})
	second := store.AddTask(&domain.Task{BoardID: wrk.ID, Title: "Second"})
	store.AddTask(&domain.Task{BoardID: ops.ID, Title: "Ops second"})
	store.AddTask(&domain.Task{BoardID: ops.ID, Title: "Ops third"})

	res, err := resolver.Resolve(context.Background(), "WRK-2")

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, second.ID, res.Task.ID)
	assert.Equal(t, "WRK-2", res.Task.DisplayID(wrk))
}

func TestResolver_UnknownDisplayIDFallsThrough(t *testing.T) {
	store, resolver := newResolverFixture(t)
	task := store.AddTask(&domain.Task{Title: "Follow up on ZZZ-9"})

	res, err := resolver.Resolve(context.Background(), "ZZZ-9")

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, task.ID, res.Task.ID)
}

func TestResolver_HashPrefixStripped(t *testing.T) {
	store, resolver := newResolverFixture(t)
	task := store.AddTask(&domain.Task{ID: "deadbeef-1", Title: "Hash"})

	res, err := resolver.Resolve(context.Background(), "  #deadbeef-1 ")

	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, task.ID, res.Task.ID)
}

func TestResolver_EmptyReference(t *testing.T) {
	_, resolver := newResolverFixture(t)

	for _, ref := range []string{"", "   ", "#"} {
		_, err := resolver.Resolve(context.Background(), ref)
		assert.ErrorIs(t, err, domain.ErrEmptyReference, "ref %q", ref)
	}
}

func TestResolver_NoMatch(t *testing.T) {
	store, resolver := newResolverFixture(t)
	store.AddTask(&domain.Task{Title: "Something"})

	res, err := resolver.Resolve(context.Background(), "nothing like it")

	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.False(t, res.Ambiguous())
	assert.Empty(t, res.Matches)
}

func TestResolver_StoreErrorWrapped(t *testing.T) {
	store, resolver := newResolverFixture(t)
	store.ListErr = assert.AnError

	_, err := resolver.Resolve(context.Background(), "abc")

	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "list tasks by id prefix")
}

func TestMustResolve_NotFound(t *testing.T) {
	_, resolver := newResolverFixture(t)

	_, err := resolver.MustResolve(context.Background(), "ghost")

	require.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Contains(t, err.Error(), "no task found")
	assert.Equal(t, "no task found matching: ghost", err.Error())
	assert.NotErrorIs(t, err, domain.ErrAmbiguousReference)
}

func TestMustResolve_Ambiguous(t *testing.T) {
	store, resolver := newResolverFixture(t)
	store.AddTask(&domain.Task{Title: "Fix login bug"})
	store.AddTask(&domain.Task{Title: "Fix login crash"})

	_, err := resolver.MustResolve(context.Background(), "login")

	require.ErrorIs(t, err, domain.ErrAmbiguousReference)
	assert.NotErrorIs(t, err, domain.ErrTaskNotFound)
	var ambiguous *domain.AmbiguousReferenceError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "login", ambiguous.Reference)
	assert.Len(t, ambiguous.Matches, 2)
}

func TestMustResolve_Success(t *testing.T) {
	store, resolver := newResolverFixture(t)
	task := store.AddTask(&domain.Task{Title: "Only one"})

	got, err := resolver.MustResolve(context.Background(), "only")

	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}
