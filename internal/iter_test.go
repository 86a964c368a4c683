package internal

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChain(t *testing.T) {
	assert := assert.New(t)

	seq := Chain(maps.All(map[string]int{"a": 1}), maps.All(map[string]int{"b": 2, "c": 3}))
	assert.Equal(map[string]int{"a": 1, "b": 2, "c": 3}, maps.Collect(seq))

	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(1, count)

	assert.Empty(maps.Collect(Chain[string, int]()))
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	defines := maps.Collect(Defines(map[string]string{"A": "1"}, map[string]string{"B": "0x2"}))
	assert.Equal(map[string]string{"A": "1", "B": "0x2"}, defines)
}
