package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 0, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("x", 100)))
}

func TestEstimateCorpus(t *testing.T) {
	assert.Equal(t, 0, EstimateCorpus(nil))
	assert.Equal(t, 0, EstimateCorpus([]Transcript{{Text: ""}}))

	corpus := []Transcript{
		{CallID: "1", Text: strings.Repeat("a", 400)},
		{CallID: "2", Text: strings.Repeat("b", 800)},
	}
	assert.Equal(t, 300, EstimateCorpus(corpus))
}
