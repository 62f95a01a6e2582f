// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import "context"

//Future is the pending result of an operation started with Async.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

//Async starts fn and returns at once. It lets a single goroutine drive many
//sessions, selecting on Done:
//
//	title := webdriver.Async(ctx, s1.Title)
//	url := webdriver.Async(ctx, s2.CurrentURL)
//	t, err := title.Await(ctx)
//
//Commands of one session still run one at a time in submission order.
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

//Done is closed when the operation has completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

//Await waits for the result. If ctx is done first the operation keeps
//running and its outcome is unknown to the caller.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
