package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"/", PublicOnly},
		{"", PublicOnly},
		{"/login", PublicOnly},
		{"/signup/", PublicOnly},
		{"/login?next=/library", PublicOnly},
		{"/generate", Protected},
		{"/library", Protected},
		{"/library/42", Protected},
		{"library", Protected},
		{"/libraryx", Neutral},
		{"/privacy", Neutral},
		{"/unknown#top", Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "/", Clean("///"))
	assert.Equal(t, "/library", Clean("/library/?x=1"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "neutral", Neutral.String())
	assert.Equal(t, "public-only", PublicOnly.String())
	assert.Equal(t, "protected", Protected.String())
}
