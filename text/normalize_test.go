package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "stop words removed", raw: "The Red Shoe for you", want: "red, shoe"},
		{name: "punctuation split", raw: "Nail Polish, Bubble-Bath!", want: "nail, polish, bubble, bath"},
		{name: "tokens with digits dropped", raw: "OPI 15ml lacquer", want: "opi, lacquer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestBuildTags(t *testing.T) {
	got := BuildTags(nil, "Beauty > Nail", "OPI", "A long lasting polish")
	assert.Equal(t, "beauty, nail, opi, long, lasting, polish", got)

	got = BuildTags(Default, "", "", "")
	assert.Equal(t, ", , ", got)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"red", "shoe", "15ml"}, Tokenize("a Red, shoe x 15ml the"))
	assert.Empty(t, Tokenize(""))
}
