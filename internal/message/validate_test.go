package message

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		max      int
		wantLine int
	}{
		{"empty", "", 100, 0},
		{"exactly max", strings.Repeat("a", 100), 100, 0},
		{"over max", "ok\n" + strings.Repeat("a", 101), 100, 2},
		{"default max", strings.Repeat("a", 101), 0, 1},
		{"runes not bytes", strings.Repeat("é", 10), 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.message, tt.max)
			if tt.wantLine == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLineTooLong))

			var lineErr *LineTooLongError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.wantLine, lineErr.Line)
			assert.Equal(t, 101, lineErr.Length)
			assert.Equal(t, 100, lineErr.Max)
		})
	}
}

func TestFinalize(t *testing.T) {
	body := "feat: add x\n\n" + strings.Repeat("long body text ", 20) + "\n\n"

	out, err := Finalize(body, 100)
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(out, "\n"))
	assert.NoError(t, Validate(out, 100))
	assert.True(t, strings.HasPrefix(out, "feat: add x\n\n"))
}

func TestFinalize_UnsplittableWord(t *testing.T) {
	url := "https://example.com/" + strings.Repeat("p", 120)

	out, err := Finalize("docs: link\n\nsee "+url, 100)
	assert.ErrorIs(t, err, ErrLineTooLong)
	assert.Contains(t, out, "\n"+url)
}
