package codec

// ZigZagEncode maps a signed value to an unsigned one so that small
// magnitude values (positive or negative) both encode to small varints:
// 0, -1, 1, -2, 2, ... -> 0, 1, 2, 3, 4, ...
func ZigZagEncode(x int64) uint64 {
	return uint64((x << 1) ^ (x >> 63))
}

// ZigZagDecode reverses ZigZagEncode.
func ZigZagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
