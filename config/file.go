// Copyright 2022 The stampede Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gogama/stampede/backoff"
	"github.com/gogama/stampede/retry"

	"gopkg.in/yaml.v3"
)

// Decode reads one YAML configuration document from r. Unknown keys,
// missing required values and out-of-range values are errors.
func Decode(r io.Reader) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc fileDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, errors.New("empty document")
		}
		return Config{}, err
	}

	return doc.toConfig()
}

type fileDoc struct {
	RetryConfig *retryConfigDoc `yaml:"retry_config"`
}

type retryConfigDoc struct {
	RetryEnabled   *bool             `yaml:"retry_enabled"`
	RetryPolicy    *retryPolicyDoc   `yaml:"retry_policy"`
	BackoffEnabled *bool             `yaml:"backoff_enabled"`
	BackoffPolicy  *backoffPolicyDoc `yaml:"backoff_policy"`
}

type retryPolicyDoc struct {
	Type        string `yaml:"type"`
	MaxAttempts *int   `yaml:"max_attempts"`
	Attempts    *int   `yaml:"attempts"`
}

type backoffPolicyDoc struct {
	Type         string    `yaml:"type"`
	Delay        *duration `yaml:"delay"`
	MinDelay     *duration `yaml:"min_delay"`
	MinimumDelay *duration `yaml:"minimum_delay"`
	MaxDelay     *duration `yaml:"max_delay"`
	MaximumDelay *duration `yaml:"maximum_delay"`
	InitialDelay *duration `yaml:"initial_delay"`
}

// A duration decodes from a number of seconds, integer or fractional,
// or from a string accepted by time.ParseDuration.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: delay must be a scalar", value.Line)
	}

	var secs float64
	if err := value.Decode(&secs); err == nil {
		ns := secs * float64(time.Second)
		if math.IsNaN(ns) || math.Abs(ns) >= math.MaxInt64 {
			return fmt.Errorf("line %d: delay %s out of range", value.Line, value.Value)
		}
		*d = duration(ns)
		return nil
	}

	x, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid delay %q", value.Line, value.Value)
	}
	*d = duration(x)
	return nil
}

func (doc *fileDoc) toConfig() (Config, error) {
	if doc.RetryConfig == nil {
		return Config{}, errors.New("missing retry_config")
	}

	c := Default()
	rc := doc.RetryConfig
	if rc.RetryEnabled != nil {
		c.RetryEnabled = *rc.RetryEnabled
	}
	if rc.BackoffEnabled != nil {
		c.BackoffEnabled = *rc.BackoffEnabled
	}
	if rc.RetryPolicy != nil {
		p, err := rc.RetryPolicy.toPolicy()
		if err != nil {
			return Config{}, fmt.Errorf("retry_policy: %w", err)
		}
		c.RetryPolicy = p
	}
	if rc.BackoffPolicy != nil {
		p, err := rc.BackoffPolicy.toPolicy()
		if err != nil {
			return Config{}, fmt.Errorf("backoff_policy: %w", err)
		}
		c.BackoffPolicy = p
	}

	return c, nil
}

func (doc *retryPolicyDoc) toPolicy() (retry.Policy, error) {
	switch doc.Type {
	case retry.KindFixed.String():
		n, err := either("max_attempts", doc.MaxAttempts, "attempts", doc.Attempts)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, errors.New("fixed policy requires max_attempts")
		}
		if *n < 1 {
			return nil, fmt.Errorf("max_attempts must be positive, got %d", *n)
		}
		return retry.Fixed(*n), nil
	case retry.KindInfinite.String():
		if doc.MaxAttempts != nil || doc.Attempts != nil {
			return nil, errors.New("infinite policy takes no max_attempts")
		}
		return retry.Infinite, nil
	case "":
		return nil, errors.New("missing type")
	default:
		return nil, fmt.Errorf("unknown type %q", doc.Type)
	}
}

func (doc *backoffPolicyDoc) toPolicy() (backoff.Policy, error) {
	minDelay, err := either("min_delay", doc.MinDelay, "minimum_delay", doc.MinimumDelay)
	if err != nil {
		return nil, err
	}
	maxDelay, err := either("max_delay", doc.MaxDelay, "maximum_delay", doc.MaximumDelay)
	if err != nil {
		return nil, err
	}

	switch doc.Type {
	case backoff.KindFixed.String():
		if err = only(doc.Type, "delay", doc.Delay != nil, minDelay != nil, maxDelay != nil, doc.InitialDelay != nil); err != nil {
			return nil, err
		}
		if *doc.Delay < 0 {
			return nil, errors.New("delay must not be negative")
		}
		return backoff.Fixed(time.Duration(*doc.Delay)), nil
	case backoff.KindRandom.String():
		if err = only(doc.Type, "min_delay and max_delay", minDelay != nil && maxDelay != nil, doc.Delay != nil, doc.InitialDelay != nil); err != nil {
			return nil, err
		}
		if *minDelay < 0 {
			return nil, errors.New("min_delay must not be negative")
		}
		if *maxDelay < *minDelay {
			return nil, errors.New("max_delay must not be less than min_delay")
		}
		return backoff.NewRandom(time.Duration(*minDelay), time.Duration(*maxDelay), nil), nil
	case backoff.KindFibonacci.String():
		if err = only(doc.Type, "initial_delay and maximum_delay", doc.InitialDelay != nil && maxDelay != nil, doc.Delay != nil, minDelay != nil); err != nil {
			return nil, err
		}
		if *doc.InitialDelay < 0 {
			return nil, errors.New("initial_delay must not be negative")
		}
		if *maxDelay < *doc.InitialDelay {
			return nil, errors.New("maximum_delay must not be less than initial_delay")
		}
		return backoff.NewFibonacci(time.Duration(*doc.InitialDelay), time.Duration(*maxDelay)), nil
	case "":
		return nil, errors.New("missing type")
	default:
		return nil, fmt.Errorf("unknown type %q", doc.Type)
	}
}

// either returns whichever of two alias fields is set, failing if both
// are.
func either[T any](name1 string, v1 *T, name2 string, v2 *T) (*T, error) {
	if v1 != nil && v2 != nil {
		return nil, fmt.Errorf("%s and %s are aliases, set only one", name1, name2)
	}
	if v1 != nil {
		return v1, nil
	}
	return v2, nil
}

// only checks that a policy of the given type has its required fields
// and none of the fields belonging to other types.
func only(typ, required string, hasRequired bool, extra ...bool) error {
	if !hasRequired {
		return fmt.Errorf("%s policy requires %s", typ, required)
	}
	for _, x := range extra {
		if x {
			return fmt.Errorf("%s policy takes only %s", typ, required)
		}
	}
	return nil
}
