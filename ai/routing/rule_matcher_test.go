package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleMatcher_Greetings(t *testing.T) {
	matcher := NewRuleMatcher()

	tests := []struct {
		input    string
		greeting bool
	}{
		{"hi", true},
		{"  Hello ", true},
		{"HEY", true},
		{"who are you", true},
		{"What do you do", true},
		{"hi there", false},
		{"hello, I need shoes", false},
		{"shoes", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.greeting, matcher.IsGreeting(tt.input))
			assert.False(t, matcher.IsListAll(tt.input))
		})
	}
}

func TestRuleMatcher_ListAll(t *testing.T) {
	matcher := NewRuleMatcher()

	for _, input := range []string{"list all", "Please SHOW ALL items", "all products?", "what do you have in stock"} {
		assert.True(t, matcher.IsListAll(input), input)
		assert.False(t, matcher.IsGreeting(input), input)
	}

	for _, input := range []string{"blue shoes", "show me laptops", "hello"} {
		assert.False(t, matcher.IsListAll(input), input)
	}
}

func TestRuleMatcher_CustomPatterns(t *testing.T) {
	matcher := NewRuleMatcherWithPatterns([]string{"Yo"}, []string{"everything"})

	assert.True(t, matcher.IsGreeting("yo"))
	assert.False(t, matcher.IsGreeting("hi"))
	assert.True(t, matcher.IsListAll("show me everything"))
	assert.False(t, matcher.IsGreeting("laptops"))
	assert.False(t, matcher.IsListAll("laptops"))
}
