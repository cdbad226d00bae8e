package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficultyRoundTrip(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		fromLabel, err := DifficultyFromLabel(d.Label())
		require.NoError(t, err)
		assert.Equal(t, d, fromLabel)

		fromCode, err := DifficultyFromCode(d.Code())
		require.NoError(t, err)
		assert.Equal(t, d, fromCode)
	}
}

func TestDifficultyFromLabel_CaseInsensitive(t *testing.T) {
	d, err := DifficultyFromLabel("mEdIuM")
	require.NoError(t, err)
	assert.Equal(t, Medium, d)
}

func TestDifficultyFromLabel_Unknown(t *testing.T) {
	_, err := DifficultyFromLabel("Impossible")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestDifficultyFromCode_Unknown(t *testing.T) {
	_, err := DifficultyFromCode(7)
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestDisplayFallbacks(t *testing.T) {
	assert.Equal(t, "Easy", DisplayLabel(Easy.Code()))
	assert.Equal(t, "Unknown", DisplayLabel(42), "display paths swallow bad codes")
	assert.Equal(t, ColorHard, DisplayColor(Hard.Code()))
	assert.Equal(t, ColorUnknown, DisplayColor(42))
}
