package browser

import (
	"context"
	"fmt"
	"io"
	"net/url"
)

// Use opens a resource, hands it to fn and closes it afterwards, whether fn
// returns normally, returns an error or panics. A panic is re-raised once the
// resource is released.
func Use[T io.Closer](open func() (T, error), fn func(T) error) (err error) {
	res, err := open()
	if err != nil {
		return err
	}
	defer func() {
		closeErr := res.Close()
		if r := recover(); r != nil {
			panic(r)
		}
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing: %w", closeErr)
		}
	}()
	return fn(res)
}

// With launches a session for the duration of fn.
func With(ctx context.Context, base *url.URL, opts Options, fn func(*Session) error) error {
	return Use(func() (*Session, error) { return Launch(ctx, base, opts) }, fn)
}
