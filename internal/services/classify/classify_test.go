package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFirstMatchWins(t *testing.T) {
	s := NewScheme(
		Threshold{Name: "t1", Min: Bound(0), Max: Bound(3)},
		Threshold{Name: "t2", Min: Bound(3), Max: Bound(5)},
	)

	name, err := s.Classify(2.2)
	require.NoError(t, err)
	assert.Equal(t, "t1", name)

	// Upper bounds are exclusive, so the boundary belongs to the next bucket.
	name, err = s.Classify(3)
	require.NoError(t, err)
	assert.Equal(t, "t2", name)
}

func TestClassifyGapReturnsError(t *testing.T) {
	s := NewScheme(
		Threshold{Name: "t1", Min: Bound(0), Max: Bound(3)},
		Threshold{Name: "t2", Min: Bound(5), Max: Bound(10)},
	)

	_, err := s.Classify(4.2)
	assert.ErrorIs(t, err, ErrNoThreshold)

	_, err = s.Index(4.2)
	assert.ErrorIs(t, err, ErrNoThreshold)
}

func TestClassifyUnboundedEnds(t *testing.T) {
	s := NewScheme(
		Threshold{Name: "low", Min: nil, Max: Bound(-1)},
		Threshold{Name: "mid", Min: Bound(-1), Max: Bound(1)},
		Threshold{Name: "high", Min: Bound(1), Max: nil},
	)

	name, err := s.Classify(-100)
	require.NoError(t, err)
	assert.Equal(t, "low", name)

	name, err = s.Classify(100)
	require.NoError(t, err)
	assert.Equal(t, "high", name)

	idx, err := s.Index(0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestClassifyOverlapResolvesToFirst(t *testing.T) {
	s := NewScheme(
		Threshold{Name: "a", Min: Bound(0), Max: Bound(5)},
		Threshold{Name: "b", Min: Bound(3), Max: Bound(8)},
	)

	name, err := s.Classify(4)
	require.NoError(t, err)
	assert.Equal(t, "a", name)
}

func TestValidateDetectsGaps(t *testing.T) {
	good := NewScheme(
		Threshold{Name: "a", Min: nil, Max: Bound(0)},
		Threshold{Name: "b", Min: Bound(0), Max: Bound(2)},
		Threshold{Name: "c", Min: Bound(2), Max: nil},
	)
	assert.NoError(t, good.Validate())

	gapped := NewScheme(
		Threshold{Name: "a", Min: nil, Max: Bound(0)},
		Threshold{Name: "b", Min: Bound(1), Max: nil},
	)
	assert.Error(t, gapped.Validate())
}
