package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore()
	sess := store.Create()
	require.NotEmpty(t, sess.ID)

	require.NoError(t, store.SetCareer(sess.ID, "개발자"))
	require.NoError(t, store.SetValues(sess.ID, []string{"미래 비전"}))
	require.NoError(t, store.AppendIssued(sess.ID, []string{"a", "b"}))
	require.NoError(t, store.AppendIssued(sess.ID, []string{"c"}))

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "개발자", got.Career)
	assert.Equal(t, []string{"미래 비전"}, got.Values)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, got.Issued)
	assert.Equal(t, []string{"a", "b", "c"}, got.Previous())

	require.NoError(t, store.ResetIssued(sess.ID))
	got, err = store.Get(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Issued)
	assert.Equal(t, "개발자", got.Career)

	store.Delete(sess.ID)
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.SetCareer(sess.ID, "x"), ErrNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	sess := store.Create()
	require.NoError(t, store.AppendIssued(sess.ID, []string{"a"}))

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	got.Issued[0][0] = "mutated"
	got.Career = "mutated"

	again, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Issued[0][0])
	assert.Empty(t, again.Career)
}

func TestStore_GetOrCreate(t *testing.T) {
	store := NewStore()
	a := store.GetOrCreate("test_1")
	b := store.GetOrCreate("test_1")
	assert.Equal(t, "test_1", a.ID)
	assert.Equal(t, a.CreatedAt, b.CreatedAt)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Concurrent(t *testing.T) {
	store := NewStore()
	sess := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.AppendIssued(sess.ID, []string{"x"})
			_, _ = store.Get(sess.ID)
		}()
	}
	wg.Wait()

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Issued, 50)
}
