// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refseq

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retry and descent behavior of a Session.
type Policy struct {
	// MaxRetries is the number of reconnection attempts made for
	// a failing operation before the operation fails.
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential delay
	// between reconnection attempts.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// MaxDepth is the maximum number of directory levels descended
	// below a genome entry.
	MaxDepth int
}

// DefaultPolicy is the Policy used when a zero Policy is provided.
var DefaultPolicy = Policy{
	MaxRetries:      8,
	InitialInterval: time.Second,
	MaxInterval:     time.Minute,
	MaxDepth:        16,
}

func (p Policy) withDefaults() Policy {
	if p == (Policy{}) {
		return DefaultPolicy
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultPolicy.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = DefaultPolicy.MaxDepth
	}
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// Listing is the content of a remote directory.
type Listing struct {
	Dir   string
	Names []string
}

// HasSequence returns whether the listing holds a sequence file.
func (l Listing) HasSequence() bool { return l.has(isSequence) }

// HasAnnotation returns whether the listing holds an annotation file.
func (l Listing) HasAnnotation() bool { return l.has(isAnnotation) }

func (l Listing) has(fn func(string) bool) bool {
	for _, n := range l.Names {
		if fn(n) {
			return true
		}
	}
	return false
}

// Session is a reconnecting remote session.
type Session struct {
	dial   Dialer
	conn   Conn
	policy Policy
	log    *log.Logger
}

// Connect dials a new Session. Failure of the initial connection is
// not retried. Warnings are written to logger if it is not nil.
func Connect(ctx context.Context, dial Dialer, p Policy, logger *log.Logger) (*Session, error) {
	p = p.withDefaults()
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	c, err := dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("refseq: could not connect to server: %w", err)
	}
	return &Session{dial: dial, conn: c, policy: p, log: logger}, nil
}

// Close terminates the current connection, if any.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Quit()
	s.conn = nil
	return err
}

func (s *Session) drop() {
	if s.conn != nil {
		s.conn.Quit()
		s.conn = nil
	}
}

// Reconnect replaces the current connection, retrying under the
// Session's Policy.
func (s *Session) Reconnect(ctx context.Context) error {
	s.drop()
	return s.do(ctx, func(Conn) error { return nil })
}

// do runs op on a live connection. Transient failures drop the
// connection and op is retried on a new one until the Policy
// is exhausted.
func (s *Session) do(ctx context.Context, op func(Conn) error) error {
	return backoff.RetryNotify(func() error {
		if s.conn == nil {
			c, err := s.dial(ctx)
			if err != nil {
				return err
			}
			s.conn = c
		}
		err := op(s.conn)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		s.drop()
		return err
	}, s.policy.backOff(ctx), func(err error, d time.Duration) {
		s.log.Printf("connection error: %v: retrying in %v", err, d)
	})
}

// List returns the names in the remote directory dir.
func (s *Session) List(ctx context.Context, dir string) ([]string, error) {
	var names []string
	err := s.do(ctx, func(c Conn) error {
		n, err := c.NameList(dir)
		if err != nil {
			return err
		}
		names = make([]string, len(n))
		for i, e := range n {
			// Some servers return names qualified by the listed path.
			names[i] = path.Base(e)
		}
		return nil
	})
	return names, err
}

// Descend walks down from dir, entering the first listed entry at each
// level, until it reaches a directory holding a sequence file. It returns
// the listing of that directory. Descending from such a directory returns
// its listing without moving.
func (s *Session) Descend(ctx context.Context, dir string) (Listing, error) {
	for depth := 0; depth <= s.policy.MaxDepth; depth++ {
		names, err := s.List(ctx, dir)
		if err != nil {
			return Listing{}, err
		}
		l := Listing{Dir: dir, Names: names}
		if l.HasSequence() {
			return l, nil
		}
		if len(names) == 0 {
			return Listing{}, fmt.Errorf("%w in %s", ErrNoSequence, dir)
		}
		dir = path.Join(dir, names[0])
	}
	return Listing{}, fmt.Errorf("%w below %s", ErrTooDeep, dir)
}

// Retrieve copies every sequence and annotation file in l into the local
// directory dst, which must exist. It returns the local paths written.
// Retrieve does not retry; a transient error leaves the Session
// without a connection.
func (s *Session) Retrieve(ctx context.Context, l Listing, dst string) ([]string, error) {
	if s.conn == nil {
		if err := s.Reconnect(ctx); err != nil {
			return nil, err
		}
	}
	var files []string
	for _, name := range l.Names {
		if !isSequence(name) && !isAnnotation(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return files, err
		}
		p := filepath.Join(dst, name)
		err := s.retr(path.Join(l.Dir, name), p)
		if err != nil {
			if IsTransient(err) {
				s.drop()
			}
			return files, err
		}
		files = append(files, p)
	}
	return files, nil
}

func (s *Session) retr(remote, local string) error {
	r, err := s.conn.Retr(remote)
	if err != nil {
		return err
	}
	f, err := os.Create(local)
	if err != nil {
		r.Close()
		return err
	}
	_, err = io.Copy(f, r)
	cerr := r.Close()
	if err == nil {
		err = cerr
	}
	ferr := f.Close()
	if err == nil {
		err = ferr
	}
	return err
}
