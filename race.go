// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package pipeline

// RaceEnabled is true when the race detector is active. Tests use it to
// skip stress scenarios that establish happens-before through acquire and
// release loads on separate Sequence values rather than through a mutex
// or channel — synchronization the race detector cannot observe and so
// reports as a false positive.
const RaceEnabled = true
