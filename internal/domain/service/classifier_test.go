package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQuestion(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{"direct question", "How long does visa processing take?", true},
		{"question mark mid-sentence", "Is this right? I heard two weeks", true},
		{"statement", "Thanks, that helps a lot", false},
		{"empty", "", false},
		{"interrogative phrasing without mark", "I wonder how long visa processing takes", false},
		{"bare question mark", "?", true},
		{"fullwidth question mark not matched", "？", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsQuestion(tc.content))
		})
	}
}
