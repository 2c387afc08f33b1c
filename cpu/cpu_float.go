/*
 * norisc - single precision floating point unit (FAD/FSB/FML/FDV).
 *
 * Copyright 2026, the norisc authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

/*
   These three functions reproduce the reference RISC's FPU bit for bit,
   including its quirks: denormals collapse to zero rather than being
   represented, there is no NaN or infinity encoding beyond the clamp patterns
   produced on overflow, and rounding is whatever falls out of the guard-digit
   shift-and-round sequence below. None of this is meant to be a general
   IEEE-754 implementation; it is meant to match the one guest programs were
   compiled against.
*/

package cpu

// fpAdd implements FAD (and, via an inverted sign on y, FSB). The u and v
// flags select the integer-conversion side modes the guest's compiler
// backend relies on: u treats x as a 24-bit integer to be converted to
// float, v returns the raw sum reinterpreted as a signed integer.
func fpAdd(x, y uint32, u, v bool) uint32 {
	xs := x&0x80000000 != 0
	var xe uint32
	var x0 int32
	if !u {
		xe = (x >> 23) & 0xFF
		xm := ((x & 0x7FFFFF) << 1) | 0x1000000
		if xs {
			x0 = -int32(xm)
		} else {
			x0 = int32(xm)
		}
	} else {
		xe = 150
		x0 = int32(x&0x00FFFFFF) << 8 >> 7
	}

	ys := y&0x80000000 != 0
	ye := (y >> 23) & 0xFF
	ym := (y & 0x7FFFFF) << 1
	if !u && !v {
		ym |= 0x1000000
	}
	var y0 int32
	if ys {
		y0 = -int32(ym)
	} else {
		y0 = int32(ym)
	}

	var e0 uint32
	var x3, y3 int32
	if ye > xe {
		shift := ye - xe
		e0 = ye
		if shift > 31 {
			x3 = x0 >> 31
		} else {
			x3 = x0 >> shift
		}
		y3 = y0
	} else {
		shift := xe - ye
		e0 = xe
		x3 = x0
		if shift > 31 {
			y3 = y0 >> 31
		} else {
			y3 = y0 >> shift
		}
	}

	xsBit := boolToUint32(xs)
	ysBit := boolToUint32(ys)
	sum := ((xsBit << 26) | (xsBit << 25) | (uint32(x3) & 0x01FFFFFF)) +
		((ysBit << 26) | (ysBit << 25) | (uint32(y3) & 0x01FFFFFF))

	var negated uint32
	if sum&(1<<26) != 0 {
		negated = -sum
	} else {
		negated = sum
	}
	s := (negated + 1) & 0x07FFFFFF

	e1 := e0 + 1
	t3 := s >> 1
	if s&0x3FFFFFC != 0 {
		for t3&(1<<24) == 0 {
			t3 <<= 1
			e1--
		}
	} else {
		t3 <<= 24
		e1 -= 24
	}

	switch {
	case v:
		return uint32(int32(sum<<5) >> 6)
	case x&0x7FFFFFFF == 0:
		if !u {
			return y
		}
		return 0
	case y&0x7FFFFFFF == 0:
		return x
	case t3&0x01FFFFFF == 0 || e1&0x100 != 0:
		return 0
	default:
		return ((sum & 0x04000000) << 5) | (e1 << 23) | ((t3 >> 1) & 0x7FFFFF)
	}
}

// fpMul implements FML.
func fpMul(x, y uint32) uint32 {
	sign := (x ^ y) & 0x80000000
	xe := (x >> 23) & 0xFF
	ye := (y >> 23) & 0xFF

	xm := (x & 0x7FFFFF) | 0x800000
	ym := (y & 0x7FFFFF) | 0x800000
	m := uint64(xm) * uint64(ym)

	e1 := (xe + ye) - 127
	var z0 uint32
	if m&(1<<47) != 0 {
		e1++
		z0 = uint32((m>>23)+1) & 0xFFFFFF
	} else {
		z0 = uint32((m>>22)+1) & 0xFFFFFF
	}

	switch {
	case xe == 0 || ye == 0:
		return 0
	case e1&0x100 == 0:
		return sign | ((e1 & 0xFF) << 23) | (z0 >> 1)
	case e1&0x80 == 0:
		return sign | (0xFF << 23) | (z0 >> 1)
	default:
		return 0
	}
}

// fpDiv implements FDV.
func fpDiv(x, y uint32) uint32 {
	sign := (x ^ y) & 0x80000000
	xe := (x >> 23) & 0xFF
	ye := (y >> 23) & 0xFF

	xm := (x & 0x7FFFFF) | 0x800000
	ym := (y & 0x7FFFFF) | 0x800000
	q1 := uint32((uint64(xm) << 25) / uint64(ym))

	e1 := (xe - ye) + 126
	var q2 uint32
	if q1&(1<<25) != 0 {
		e1++
		q2 = (q1 >> 1) & 0xFFFFFF
	} else {
		q2 = q1 & 0xFFFFFF
	}
	q3 := q2 + 1

	switch {
	case xe == 0:
		return 0
	case ye == 0:
		return sign | (0xFF << 23)
	case e1&0x100 == 0:
		return sign | ((e1 & 0xFF) << 23) | (q3 >> 1)
	case e1&0x80 == 0:
		return sign | (0xFF << 23) | (q2 >> 1)
	default:
		return 0
	}
}
