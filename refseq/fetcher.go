// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refseq

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"math/rand"
	"os"
	"path"
	"path/filepath"
)

// Genome is a downloaded genome assembly.
type Genome struct {
	Name   string   // Name of the remote entry.
	Remote string   // Remote directory the files were retrieved from.
	Dir    string   // Local directory holding the files.
	Files  []string // Local paths of the retrieved files.
}

// Fetcher selects random genome entries below a base directory and
// retrieves them.
type Fetcher struct {
	Session *Session
	Base    string
	Rand    *rand.Rand
	Log     *log.Logger

	// Fetched is called after each successful retrieval if not nil.
	Fetched func(Genome)

	entries  []string
	tried    map[int]bool
	rejected map[int]bool
}

// NewFetcher returns a Fetcher over the entries of base using a random
// source seeded with seed.
func NewFetcher(s *Session, base string, seed int64, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Fetcher{
		Session:  s,
		Base:     base,
		Rand:     rand.New(rand.NewSource(seed)),
		Log:      logger,
		tried:    make(map[int]bool),
		rejected: make(map[int]bool),
	}
}

// Tried returns the entry indices that have been accepted for retrieval.
func (f *Fetcher) Tried() []int {
	idx := make([]int, 0, len(f.tried))
	for i := range f.tried {
		idx = append(idx, i)
	}
	return idx
}

// Fetch retrieves n distinct genomes into subdirectories of dst.
// Genomes whose retrieval is interrupted by a connection failure are
// removed and replaced by another random choice. Fetch returns the
// genomes retrieved, which are fewer than n only if err is not nil.
func (f *Fetcher) Fetch(ctx context.Context, n int, dst string) ([]Genome, error) {
	if n <= 0 {
		return nil, ErrCount
	}
	if f.entries == nil {
		entries, err := f.Session.List(ctx, f.Base)
		if err != nil {
			return nil, err
		}
		f.entries = entries
	}

	var (
		got      []Genome
		failures uint64
	)
	for len(got) < n {
		i, l, err := f.choose(ctx)
		if err != nil {
			return got, err
		}
		name := f.entries[i]
		f.Log.Printf("downloading genome: %s", name)

		dir := filepath.Join(dst, name)
		if _, err := os.Stat(dir); err == nil {
			f.Log.Printf("%s directory currently exists, files will be overwritten", dir)
		}
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return got, err
		}
		files, err := f.Session.Retrieve(ctx, l, dir)
		if err != nil {
			os.RemoveAll(dir)
			if !IsTransient(err) {
				return got, fmt.Errorf("refseq: failed to retrieve %s: %w", name, err)
			}
			failures++
			if failures > f.Session.policy.MaxRetries {
				return got, fmt.Errorf("refseq: exceeded retries: last error: %w", err)
			}
			f.Log.Printf("problem downloading genome %s due to a closed connection, skipping: %v", name, err)
			f.Log.Print("trying to reconnect")
			err = f.Session.Reconnect(ctx)
			if err != nil {
				return got, err
			}
			f.Log.Print("connection reestablished")
			continue
		}
		failures = 0

		g := Genome{Name: name, Remote: l.Dir, Dir: dir, Files: files}
		got = append(got, g)
		if f.Fetched != nil {
			f.Fetched(g)
		}
	}
	return got, nil
}

// choose draws random entry indices until one leads to a directory holding
// both sequence and annotation files. The last entry is never drawn.
// Indices that fail are not drawn again.
func (f *Fetcher) choose(ctx context.Context) (int, Listing, error) {
	limit := len(f.entries) - 1
	for {
		if len(f.tried)+len(f.rejected) >= limit {
			return 0, Listing{}, ErrExhausted
		}
		i := f.Rand.Intn(limit)
		if f.tried[i] || f.rejected[i] {
			continue
		}
		name := f.entries[i]

		l, err := f.Session.Descend(ctx, path.Join(f.Base, name))
		if err != nil {
			if IsTransient(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return 0, Listing{}, err
			}
			f.Log.Printf("could not find sequence files for %s, skipping: %v", name, err)
			f.rejected[i] = true
			continue
		}
		if !l.HasAnnotation() {
			f.Log.Printf("did not find GBFF for %s, skipping", name)
			f.rejected[i] = true
			continue
		}
		f.tried[i] = true
		return i, l, nil
	}
}

// Prepare checks that dst is usable as a download destination, creating
// it if it does not exist, and creates the reference_genomes directory
// within it. It returns the path of the reference_genomes directory.
func Prepare(dst string, logger *log.Logger) (string, error) {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	fi, err := os.Stat(dst)
	switch {
	case os.IsNotExist(err):
		logger.Printf("the file path %s does not exist, creating it now", dst)
		err = os.MkdirAll(dst, 0o755)
		if err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	case !fi.IsDir():
		return "", fmt.Errorf("%w: %s", ErrNotDir, dst)
	default:
		d, err := ioutil.ReadDir(dst)
		if err != nil {
			return "", err
		}
		if len(d) != 0 {
			logger.Printf("WARNING: the directory %s is not empty", dst)
		}
	}

	root := filepath.Join(dst, "reference_genomes")
	if _, err := os.Stat(root); err == nil {
		logger.Printf("%s directory currently exists, files will be downloaded or overlapped there", root)
	}
	err = os.MkdirAll(root, 0o755)
	if err != nil {
		return "", err
	}
	return root, nil
}
