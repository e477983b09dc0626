// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned by New when the requested ring buffer
// capacity is less than 1.
var ErrInvalidCapacity = errors.New("pipeline: capacity must be >= 1")

// ErrMultiProducerUnsupported is returned by New when the configuration
// requests a multi-producer claim strategy. The core's ClaimStrategy only
// implements ordered single-producer claims; a multi-producer claim
// strategy needs a per-slot "available" map the core does not have.
var ErrMultiProducerUnsupported = errors.New("pipeline: multi-producer claim strategy is not supported")

// ErrUnsupportedWaitStrategy is returned by New when the configuration
// names a WaitStrategyKind this package does not implement.
var ErrUnsupportedWaitStrategy = errors.New("pipeline: unsupported wait strategy")

// ConfigurationError wraps a configuration-time failure with the value
// that caused it, raised only at New — once an Engine is constructed
// successfully it cannot fail configuration validation again.
type ConfigurationError struct {
	Err   error
	Field string
	Value any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("pipeline: invalid configuration: %s=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(field string, value any, err error) error {
	return &ConfigurationError{Err: err, Field: field, Value: value}
}
