// SPDX-License-Identifier: Apache-2.0
package term

import "github.com/holiman/uint256"

// Word returns c's value as a uint256.Int alongside big.Int, a fast path
// for callers (e.g. a future EVM-style interpreter driving this engine)
// that want to do 256-bit fixed-width arithmetic without allocating
// through math/big. ok is false when the constant is wider than 256
// bits or isn't a BitVecConstant at all; math/big.Int remains the
// canonical, unbounded-width representation used everywhere inside this
// package.
func (c *Constant) Word() (uint256.Int, bool) {
	var zero uint256.Int
	if c.BitVecValue == nil {
		return zero, false
	}
	if c.Sort().(BitVec).Width > 256 {
		return zero, false
	}
	var w uint256.Int
	overflow := w.SetFromBig(c.BitVecValue)
	if overflow {
		return zero, false
	}
	return w, true
}
