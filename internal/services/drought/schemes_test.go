package drought

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrynessSchemeCoversTheLine(t *testing.T) {
	s := DrynessScheme()
	require.NoError(t, s.Validate())
	require.Equal(t, 7, s.Len())

	cases := []struct {
		value float64
		want  string
	}{
		{-5, "Très bas"},
		{-1.78, "Bas"},
		{-0.5, "Modérément bas"},
		{0, "Autour de la normale"},
		{0.5, "Modérément haut"},
		{1.0, "Haut"},
		{1.28, "Très haut"},
		{4, "Très haut"},
	}
	for _, c := range cases {
		got, err := s.Classify(c.value)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "value %v", c.value)
	}
}

func TestSSWIScheme(t *testing.T) {
	s := SSWIScheme()
	require.NoError(t, s.Validate())
	require.Equal(t, 7, s.Len())

	got, err := s.Classify(-2.0)
	require.NoError(t, err)
	assert.Equal(t, "Extrêmement sec", got)

	got, err = s.Classify(0)
	require.NoError(t, err)
	assert.Equal(t, "Autour de la normale", got)

	got, err = s.Classify(1.75)
	require.NoError(t, err)
	assert.Equal(t, "Extrêmement humide", got)
}

func TestHumiditySchemeSaturation(t *testing.T) {
	s := HumidityScheme()
	require.NoError(t, s.Validate())
	require.Equal(t, 8, s.Len())

	got, err := s.Classify(100)
	require.NoError(t, err)
	assert.Equal(t, "Saturé", got)

	got, err = s.Classify(120)
	require.NoError(t, err)
	assert.Equal(t, "Saturé", got)

	got, err = s.Classify(0)
	require.NoError(t, err)
	assert.Equal(t, "Extrêmement sec", got)
}
