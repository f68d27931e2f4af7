package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashKey(t *testing.T) {
	a := HashKey("DT Swiss RR 411|DT Swiss 240s|28|3|jb")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashKey("DT Swiss RR 411|DT Swiss 240s|28|3|jb"))
	assert.NotEqual(t, a, HashKey("dt swiss rr 411|DT Swiss 240s|28|3|jb"))
}
