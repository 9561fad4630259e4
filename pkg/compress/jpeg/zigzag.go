package jpeg

// blockSize is the number of coefficients in one 8x8 DCT block.
const blockSize = 64

// zigZag maps a natural (row-major) 8x8 position to its index in the JPEG
// zig-zag scan order (ITU-T T.81 Figure A.6): natural[i] = scan[zigZag[i]].
var zigZag = [blockSize]int{
	0, 1, 5, 6, 14, 15, 27, 28,
	2, 4, 7, 13, 16, 26, 29, 42,
	3, 8, 12, 17, 25, 30, 41, 43,
	9, 11, 18, 24, 31, 40, 44, 53,
	10, 19, 23, 32, 39, 45, 52, 54,
	20, 22, 33, 38, 46, 51, 55, 60,
	21, 34, 37, 47, 50, 56, 59, 61,
	35, 36, 48, 49, 57, 58, 62, 63,
}

// fromScanOrder permutes a zig-zag-ordered sequence into natural row-major
// order.
func fromScanOrder(scan [blockSize]int32) [blockSize]int32 {
	var natural [blockSize]int32
	for i := range natural {
		natural[i] = scan[zigZag[i]]
	}
	return natural
}

// toScanOrder is the forward permutation, the inverse of fromScanOrder.
func toScanOrder(natural [blockSize]int32) [blockSize]int32 {
	var scan [blockSize]int32
	for i := range natural {
		scan[zigZag[i]] = natural[i]
	}
	return scan
}
