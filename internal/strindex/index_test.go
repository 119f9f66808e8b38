package strindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/internal/hash"
)

func newTable(values ...string) (*Index, []string) {
	table := append([]string{}, values...)
	idx := New(func(i uint32) (string, bool) {
		if int(i) >= len(table) {
			return "", false
		}

		return table[i], true
	})
	for i, s := range table {
		idx.Add(s, uint32(i))
	}

	return idx, table
}

func TestIndexLookup(t *testing.T) {
	idx, _ := newTable("<init>", "main", "V", "main")

	require.Equal(t, []uint32{1, 3}, idx.Lookup("main"))
	require.Equal(t, []uint32{0}, idx.Lookup("<init>"))
	require.Nil(t, idx.Lookup("missing"))
	require.Equal(t, 4, idx.Count())
	require.False(t, idx.HasCollision())
}

func TestIndexStaleCandidate(t *testing.T) {
	idx, _ := newTable("a", "b")
	idx.Add("c", 9) // resolver knows nothing about 9
	require.Empty(t, idx.Lookup("c"))
}

func TestIndexCollisionDetection(t *testing.T) {
	table := []string{"x", "y"}
	idx := New(func(i uint32) (string, bool) { return table[i], true })
	// pre-seed the bucket of "y" with the index of "x" to force a clash
	idx.entries[hash.ID("y")] = []uint32{0}
	idx.Add("y", 1)
	require.True(t, idx.HasCollision())
	require.Equal(t, []uint32{1}, idx.Lookup("y"))

	idx.Reset()
	require.False(t, idx.HasCollision())
	require.Zero(t, idx.Count())
	require.Nil(t, idx.Lookup("y"))
}
