package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupAdmitNewIdentity(t *testing.T) {
	idx := NewDedupIndex()
	assert.True(t, idx.Admit("100", "hashA"))
	assert.True(t, idx.Admit("200", "hashB"))
	assert.Equal(t, 2, idx.Len())
}

func TestDedupAdmitIsIdempotentPerIdentity(t *testing.T) {
	idx := NewDedupIndex()
	assert.True(t, idx.Admit("100", "hashA"))
	for i := 0; i < 5; i++ {
		assert.False(t, idx.Admit("100", "hashA"))
	}
	assert.Equal(t, 1, idx.Len())
}

func TestDedupRejectsSameContentUnderNewIdentity(t *testing.T) {
	// A re-rendered node can land on a weaker identity strategy; the
	// content hash still catches it.
	idx := NewDedupIndex()
	assert.True(t, idx.Admit("100", "hashA"))
	assert.False(t, idx.Admit("f_3_deadbeef", "hashA"))
	assert.Equal(t, 1, idx.Len())
}

func TestDedupEmptyHashNeverCollides(t *testing.T) {
	idx := NewDedupIndex()
	assert.True(t, idx.Admit("a", ""))
	assert.True(t, idx.Admit("b", ""))
	assert.Equal(t, 2, idx.Len())
}
