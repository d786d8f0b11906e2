package main

import (
	"context"

	"github.com/alnah/go-mdexport"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input mdexport.Input) (*mdexport.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*mdexport.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// poolAdapter wraps *mdexport.ConverterPool to satisfy Pool.
type poolAdapter struct {
	pool *mdexport.ConverterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

// newPoolAdapter creates a pool of size converters built with opts.
func newPoolAdapter(size int, opts ...mdexport.Option) Pool {
	return &poolAdapter{pool: mdexport.NewConverterPool(size, opts...)}
}

func (a *poolAdapter) Acquire() (CLIConverter, error) {
	conv, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (a *poolAdapter) Release(c CLIConverter) {
	conv, ok := c.(*mdexport.Converter)
	if !ok {
		panic("poolAdapter.Release: unexpected type")
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int    { return a.pool.Size() }
func (a *poolAdapter) Close() error { return a.pool.Close() }
