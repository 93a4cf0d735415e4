package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDegenerate(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"60", true},
		{"60.64.67", true},
		{"C4/C4/C4", true},
		{"C4/D4", false},
		{"C4/C4/60.64", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDegenerate(tt.token))
		})
	}
}

func TestParseGroup(t *testing.T) {
	t.Run("notes and chords", func(t *testing.T) {
		got, err := ParseGroup("C4/4.7.11/E-5/72")
		require.NoError(t, err)
		require.Len(t, got, 4)

		assert.Equal(t, SubToken{Kind: NoteToken, Pitches: []int{60}}, got[0])
		assert.Equal(t, SubToken{Kind: ChordToken, Pitches: []int{64, 67, 71}}, got[1])
		assert.Equal(t, SubToken{Kind: NoteToken, Pitches: []int{75}}, got[2])
		assert.Equal(t, SubToken{Kind: ChordToken, Pitches: []int{72}}, got[3])
	})

	t.Run("default octave", func(t *testing.T) {
		got, err := ParseGroup("F#/B")
		require.NoError(t, err)
		assert.Equal(t, []int{66}, got[0].Pitches)
		assert.Equal(t, []int{71}, got[1].Pitches)
	})

	for _, bad := range []string{"C4//D4", "H4/C4", "C4/1.x", "C4/200"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseGroup(bad)
			var invalid *InvalidTokenError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, bad, invalid.Token)
		})
	}
}
