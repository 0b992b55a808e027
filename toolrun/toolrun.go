// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package toolrun runs external tools described by command builders,
// capturing their exit status and standard error.
package toolrun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/biogo/external"
	"golang.org/x/sync/errgroup"
)

// Error is returned when an external tool cannot be started or exits
// unsuccessfully.
type Error struct {
	Args   []string
	Err    error
	Stderr string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Run builds the command described by cb and runs it to completion.
// If stdout is not nil, the command's standard output is written to it.
// The command is killed if ctx is cancelled before it completes.
func Run(ctx context.Context, cb external.CommandBuilder, stdout io.Writer) error {
	cmd, err := cb.BuildCommand()
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	err = cmd.Start()
	if err != nil {
		return &Error{Args: cmd.Args, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err = <-done:
	case <-ctx.Done():
		cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
	if err != nil {
		return &Error{Args: cmd.Args, Err: err, Stderr: stderr.String()}
	}
	return nil
}

// Batch runs each of the commands described by cbs with at most limit
// running concurrently. A failing command does not stop the others.
// If done is not nil it is called with the index and result of each
// command as it completes; calls to done are serialised. Batch returns
// an error if any command failed.
func Batch(ctx context.Context, limit int, cbs []external.CommandBuilder, done func(i int, err error)) error {
	if limit < 1 {
		limit = 1
	}
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed int
	)
	g.SetLimit(limit)
	for i, cb := range cbs {
		i, cb := i, cb
		g.Go(func() error {
			err := Run(ctx, cb, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			}
			if done != nil {
				done(i, err)
			}
			return nil
		})
	}
	g.Wait()
	if failed != 0 {
		return fmt.Errorf("toolrun: %d of %d commands failed", failed, len(cbs))
	}
	return ctx.Err()
}
