// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

// pad is cache line padding to prevent false sharing between a Sequence
// and whatever field happens to follow it in memory. 64 bytes covers the
// common case; architectures with adjacent-line prefetch would want 128,
// but the pipeline targets the common case.
type pad [64]byte

// roundToPow2 rounds n up to the next power of 2. Capacities below 1 are
// rejected by the caller before reaching this.
func roundToPow2(n int) int {
	if n < 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
