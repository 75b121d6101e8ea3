package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	stop := DefaultStopWords()

	tests := []struct {
		query  string
		want   string
		wantOK bool
	}{
		{"I need blue gym shoes", "shoes", true},
		{"Show me a laptop", "laptop", true},
		{"  COFFEE maker!!", "coffee", true},
		{"i want the", "", false},
		{"", "", false},
		{"?!", "", false},
		// Ties keep the first occurrence.
		{"red tan", "red", true},
		{"ps5 or xbox", "xbox", true},
		{"don't show me", "", false},
		{"headphones, wireless", "headphones", true},
		{"café crème", "crème", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := Extract(tt.query, stop)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_CustomStopWords(t *testing.T) {
	stop := NewStopWords("Shoes")
	got, ok := Extract("blue gym shoes", stop)
	assert.True(t, ok)
	assert.Equal(t, "blue", got)

	got, ok = Extract("the shoes", nil)
	assert.True(t, ok)
	assert.Equal(t, "shoes", got)
}

func TestForms(t *testing.T) {
	assert.Equal(t, []string{"shoes", "shoe"}, Forms("shoes"))
	assert.Equal(t, []string{"laptops", "laptop"}, Forms("laptops"))
	assert.Equal(t, []string{"batteries", "battery"}, Forms("batteries"))
	assert.Equal(t, []string{"glass"}, Forms("glass"))
	assert.Equal(t, []string{"boxes", "box"}, Forms("boxes"))
	assert.Equal(t, []string{"watches", "watch"}, Forms("watches"))
	assert.Equal(t, []string{"glasses", "glass"}, Forms("glasses"))
	assert.Equal(t, []string{"gas"}, Forms("gas"))
	assert.Equal(t, []string{"coffee"}, Forms("coffee"))
}
