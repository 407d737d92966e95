package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anonto42/nano-social/backend/pkg/apperror"
)

func TestValidateImageName(t *testing.T) {
	for _, name := range []string{"a.png", "photo.JPG", "x.jpeg"} {
		assert.NoError(t, ValidateImageName(name), name)
	}
	for _, name := range []string{"a.gif", "doc.pdf", "noext", "png"} {
		assert.ErrorIs(t, ValidateImageName(name), apperror.ErrInvalidImage, name)
	}
}

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v123456/posts/sample.jpg": "posts/sample",
		"https://res.cloudinary.com/demo/image/upload/sample.png":               "sample",
		"https://res.cloudinary.com/demo/image/upload/vacation/beach.png":       "vacation/beach",
		"https://example.com/avatar.png":                                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractPublicID(in), in)
	}
}
