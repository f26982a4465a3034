// Package opt is a set of named option values, used for model parameters
// and request options. Values are stored as strings and parsed on read.
package opt

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt sets one or more values
type Opt func(*Opts) error

// Opts is a set of option values
type Opts struct {
	url.Values
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Apply returns a set of options with all options applied in order
func Apply(o ...Opt) (*Opts, error) {
	opts := &Opts{Values: make(url.Values)}
	for _, opt := range o {
		if opt == nil {
			continue
		}
		if err := opt(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Keys returns the keys which have been set, sorted
func (o *Opts) Keys() []string {
	keys := make([]string, 0, len(o.Values))
	for key := range o.Values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Has returns true if the key has been set
func (o *Opts) Has(key string) bool {
	_, ok := o.Values[key]
	return ok
}

// GetString returns the trimmed value for key, or empty string if not set
func (o *Opts) GetString(key string) string {
	return strings.TrimSpace(o.Values.Get(key))
}

// GetStringArray returns all values for key, each trimmed
func (o *Opts) GetStringArray(key string) []string {
	values, ok := o.Values[key]
	if !ok {
		return nil
	}
	result := make([]string, len(values))
	for i, v := range values {
		result[i] = strings.TrimSpace(v)
	}
	return result
}

// GetBool returns the boolean value for key, or false if not set or invalid
func (o *Opts) GetBool(key string) bool {
	v, err := strconv.ParseBool(o.GetString(key))
	return err == nil && v
}

// GetFloat64 returns the float64 value for key, or 0 if not set or invalid
func (o *Opts) GetFloat64(key string) float64 {
	if v, err := strconv.ParseFloat(o.GetString(key), 64); err == nil {
		return v
	}
	return 0
}

// GetInt returns the int value for key, or 0 if not set or invalid
func (o *Opts) GetInt(key string) int {
	if v, err := strconv.ParseInt(o.GetString(key), 10, 64); err == nil {
		return int(v)
	}
	return 0
}

// GetUint returns the uint value for key, or 0 if not set or invalid
func (o *Opts) GetUint(key string) uint {
	if v, err := strconv.ParseUint(o.GetString(key), 10, 64); err == nil {
		return uint(v)
	}
	return 0
}

// GetDuration returns the duration for key, or 0 if not set or invalid
func (o *Opts) GetDuration(key string) time.Duration {
	if v, err := time.ParseDuration(o.GetString(key)); err == nil {
		return v
	}
	return 0
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// Error returns an option that always returns an error
func Error(err error) Opt {
	return func(*Opts) error {
		return err
	}
}

// WithOpts combines multiple options into a single option
func WithOpts(options ...Opt) Opt {
	return func(o *Opts) error {
		for _, opt := range options {
			if opt == nil {
				continue
			}
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithString replaces the values for key
func WithString(key string, value ...string) Opt {
	return func(o *Opts) error {
		o.Values.Del(key)
		for _, v := range value {
			o.Values.Add(key, v)
		}
		return nil
	}
}

// AddString appends values for key
func AddString(key string, value ...string) Opt {
	return func(o *Opts) error {
		for _, v := range value {
			o.Values.Add(key, v)
		}
		return nil
	}
}

func WithBool(key string, value bool) Opt {
	return func(o *Opts) error {
		o.Values.Set(key, strconv.FormatBool(value))
		return nil
	}
}

func WithInt(key string, value int) Opt {
	return func(o *Opts) error {
		o.Values.Set(key, strconv.Itoa(value))
		return nil
	}
}

func WithUint(key string, value uint) Opt {
	return func(o *Opts) error {
		o.Values.Set(key, fmt.Sprint(value))
		return nil
	}
}

func WithFloat64(key string, value float64) Opt {
	return func(o *Opts) error {
		o.Values.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
		return nil
	}
}

func WithDuration(key string, value time.Duration) Opt {
	return func(o *Opts) error {
		o.Values.Set(key, value.String())
		return nil
	}
}
