// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package refseq provides random sampling and retrieval of reference genome
// assemblies from the NCBI RefSeq FTP archive.
//
// Remote traversal is stateless with respect to the FTP working directory:
// every operation takes an absolute remote path and returns the listing it
// found, so a dropped connection can be replaced without losing the cursor.
package refseq

import (
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

const (
	// DefaultAddr is the NCBI FTP server.
	DefaultAddr = "ftp.ncbi.nlm.nih.gov:21"

	// DefaultBase is the directory holding one entry per bacterial species.
	DefaultBase = "/genomes/.vol2/refseq/bacteria"

	// DefaultCredential is the placeholder password for anonymous login.
	// NCBI asks that users provide their email address.
	DefaultCredential = "user@email"

	SequenceSuffix   = ".fna.gz"
	AnnotationSuffix = ".gbff.gz"
)

var (
	ErrCount      = errors.New("refseq: number of genomes must be greater than 0")
	ErrNotDir     = errors.New("refseq: destination is not a directory")
	ErrTooDeep    = errors.New("refseq: descent depth limit exceeded")
	ErrNoSequence = errors.New("refseq: no sequence files found")
	ErrExhausted  = errors.New("refseq: no untried entries remain")
)

// Conn is the set of remote operations needed to sample and retrieve genomes.
type Conn interface {
	// NameList returns the names held in the remote directory at path.
	NameList(path string) ([]string, error)
	// Retr opens the remote file at path for reading. The returned
	// reader must be closed before the next call on the Conn.
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

// Dialer establishes a new authenticated Conn.
type Dialer func(ctx context.Context) (Conn, error)

type ftpConn struct {
	*ftp.ServerConn
}

func (c ftpConn) Retr(path string) (io.ReadCloser, error) {
	return c.ServerConn.Retr(path)
}

// DialFTP returns a Dialer that connects to the FTP server at addr, logs in
// anonymously using credential as the password and checks that base exists.
// A zero timeout means no dial timeout.
func DialFTP(addr, base, credential string, timeout time.Duration) Dialer {
	return func(ctx context.Context) (Conn, error) {
		opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
		if timeout > 0 {
			opts = append(opts, ftp.DialWithTimeout(timeout))
		}
		c, err := ftp.Dial(addr, opts...)
		if err != nil {
			return nil, err
		}
		err = c.Login("anonymous", credential)
		if err == nil {
			err = c.ChangeDir(base)
		}
		if err != nil {
			c.Quit()
			return nil, err
		}
		return ftpConn{c}, nil
	}
}

// IsTransient returns whether err indicates a lost or broken connection
// that may succeed after reconnecting.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var te *textproto.Error
	if errors.As(err, &te) {
		// 421 service not available, 425 can't open data connection,
		// 426 transfer aborted.
		switch te.Code {
		case 421, 425, 426:
			return true
		}
	}
	return false
}

func isSequence(name string) bool   { return strings.HasSuffix(name, SequenceSuffix) }
func isAnnotation(name string) bool { return strings.HasSuffix(name, AnnotationSuffix) }
