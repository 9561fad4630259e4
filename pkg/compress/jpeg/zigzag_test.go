package jpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZigZag_RoundTrip(t *testing.T) {
	var natural [blockSize]int32
	for i := range natural {
		natural[i] = int32(i*3 - 50)
	}

	assert.Equal(t, natural, fromScanOrder(toScanOrder(natural)))
	assert.Equal(t, natural, toScanOrder(fromScanOrder(natural)))
}

func TestZigZag_IsPermutation(t *testing.T) {
	seen := make(map[int]bool, blockSize)
	for _, v := range zigZag {
		assert.False(t, seen[v], "index %d repeated", v)
		seen[v] = true
	}
	assert.Len(t, seen, blockSize)
}

func TestZigZag_KnownPositions(t *testing.T) {
	// Scan order starts along the top-left anti-diagonals: positions
	// (0,0), (0,1), (1,0), (2,0), (1,1), (0,2), ...
	var scan [blockSize]int32
	for i := range scan {
		scan[i] = int32(i)
	}
	natural := fromScanOrder(scan)

	assert.Equal(t, int32(0), natural[0*8+0])
	assert.Equal(t, int32(1), natural[0*8+1])
	assert.Equal(t, int32(2), natural[1*8+0])
	assert.Equal(t, int32(3), natural[2*8+0])
	assert.Equal(t, int32(4), natural[1*8+1])
	assert.Equal(t, int32(5), natural[0*8+2])
	assert.Equal(t, int32(63), natural[7*8+7])
}
