// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package thriftcompact

// maxVarintBytes caps decoding; a 64-bit value never needs more than ten.
const maxVarintBytes = 16

func ZigzagEncode32(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

func ZigzagDecode32(n uint32) int32 {
	return int32(n>>1) ^ -int32(n&1)
}

func ZigzagEncode64(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func ZigzagDecode64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

// AppendVarint appends the base-128 encoding of v, least significant group
// first.
func AppendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// DecodeVarint decodes a varint from the start of buf, returning the value
// and the number of bytes consumed.
func DecodeVarint(buf []byte) (uint64, int, error) {
	var value uint64
	var shift uint
	for ii := 0; ii < maxVarintBytes; ii++ {
		if ii == len(buf) {
			return 0, 0, errTruncatedVarint()
		}
		b := buf[ii]
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, ii + 1, nil
		}
		shift += 7
	}
	return 0, 0, errVarintTooLong()
}
