package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"en", English},
		{"ZH", ChineseSimplified},
		{" zh-tw ", ChineseTraditional},
		{"ja", Japanese},
		{"ko", Korean},
		{"klingon", English},
		{"", English},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.in))
		})
	}
}

func TestPromptName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "English (en)"},
		{"zh", "中文（简体） (zh)"},
		{"", "English (en)"},
		{"German", "German"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PromptName(tt.in))
		})
	}
}

func TestSupported(t *testing.T) {
	for _, l := range Supported() {
		assert.True(t, l.IsValid(), l)
		assert.NotEqual(t, string(l), l.DisplayName())
	}
}
