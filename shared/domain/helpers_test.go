package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTags(t *testing.T) {
	tests := []struct {
		name     string
		input    []Tag
		expected []Tag
	}{
		{name: "nil", input: nil, expected: []Tag{}},
		{name: "blank only", input: []Tag{"", "  ", "\t"}, expected: []Tag{}},
		{name: "trims and keeps order", input: []Tag{" jazz", "", "piano "}, expected: []Tag{"jazz", "piano"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanTags(tt.input))
		})
	}
}

func TestNewComposition(t *testing.T) {
	file := File{Id: "f1", Url: "http://x/f1", Owner: "u1", FileName: "song.mp3", GcsObjectName: "obj-1"}

	t.Run("joins file and registry", func(t *testing.T) {
		c := NewComposition(file, Registry{Description: "a tune", Tags: []Tag{"jazz"}})
		assert.Equal(t, Composition{
			Id: "f1", Url: "http://x/f1", Owner: "u1", FileName: "song.mp3", GcsObjectName: "obj-1",
			Description: "a tune", Tags: []Tag{"jazz"},
		}, c)
	})

	t.Run("nil tags become empty", func(t *testing.T) {
		c := NewComposition(file, Registry{})
		assert.NotNil(t, c.Tags)
		assert.Empty(t, c.Tags)
	})
}
