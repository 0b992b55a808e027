// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package toolrun

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/biogo/external"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) SetUpSuite(c *check.C) {
	if _, err := exec.LookPath("sh"); err != nil {
		c.Skip("no sh available")
	}
}

type shell string

func (s shell) BuildCommand() (*exec.Cmd, error) {
	return exec.Command("sh", "-c", string(s)), nil
}

type broken struct{}

func (broken) BuildCommand() (*exec.Cmd, error) { return nil, errors.New("no command") }

func (s *S) TestRun(c *check.C) {
	var out bytes.Buffer
	err := Run(context.Background(), shell("echo hello"), &out)
	c.Check(err, check.Equals, nil)
	c.Check(out.String(), check.Equals, "hello\n")
}

func (s *S) TestRunFailure(c *check.C) {
	err := Run(context.Background(), shell("echo bad input >&2; exit 3"), nil)
	var e *Error
	c.Assert(errors.As(err, &e), check.Equals, true)
	c.Check(e.Args, check.DeepEquals, []string{"sh", "-c", "echo bad input >&2; exit 3"})
	c.Check(e.Stderr, check.Equals, "bad input\n")
	var exit *exec.ExitError
	c.Assert(errors.As(err, &exit), check.Equals, true)
	c.Check(exit.ExitCode(), check.Equals, 3)
	c.Check(strings.HasSuffix(err.Error(), ": bad input"), check.Equals, true)

	err = Run(context.Background(), broken{}, nil)
	c.Check(err, check.ErrorMatches, "no command")
}

func (s *S) TestRunCancel(c *check.C) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := Run(ctx, shell("exec sleep 10"), nil)
	c.Check(err, check.Equals, context.DeadlineExceeded)
	c.Check(time.Since(start) < 5*time.Second, check.Equals, true)
}

func (s *S) TestBatch(c *check.C) {
	cbs := []external.CommandBuilder{
		shell("true"),
		shell("exit 1"),
		shell("true"),
		shell("exit 2"),
	}
	results := make([]error, len(cbs))
	var calls int
	err := Batch(context.Background(), 2, cbs, func(i int, err error) {
		calls++
		results[i] = err
	})
	c.Check(err, check.ErrorMatches, "toolrun: 2 of 4 commands failed")
	c.Check(calls, check.Equals, 4)
	for i, err := range results {
		c.Check(err == nil, check.Equals, i%2 == 0, check.Commentf("command %d", i))
	}

	c.Check(Batch(context.Background(), 0, cbs[:1], nil), check.Equals, nil)
}
