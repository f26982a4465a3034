package session

import (
	// Packages
	opt "github.com/mutablelogic/go-llmservice/pkg/opt"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	limitKey = "limit"
)

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithLimit sets the maximum number of threads returned by List
func WithLimit(limit uint) opt.Opt {
	return opt.WithUint(limitKey, limit)
}

// limit truncates threads to the limit in the options, if any
func limit(threads []*Thread, opts ...opt.Opt) ([]*Thread, error) {
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}
	if n := o.GetUint(limitKey); n > 0 && int(n) < len(threads) {
		threads = threads[:n]
	}
	return threads, nil
}
