// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package accuracy recovers the ground truth of simulated metagenomic reads
// and scores classification results against it.
package accuracy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
	"gonum.org/v1/gonum/floats"
)

// origin matches the source sequence label written by randomreads.sh
// with simple names: _._<tag>:<identifier>_<position>|
var origin = regexp.MustCompile(`_\._[a-z]{3}:([A-Za-z][^|\s]*)_[0-9]+\|`)

// Counts holds the number of reads drawn from each source identifier.
type Counts map[string]int

// IDs returns the sorted identifiers in c.
func (c Counts) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary describes a Counts.
type Summary struct {
	Unique int // Number of distinct identifiers.
	Total  int // Number of reads.
	Peak   int // Reads for the most frequent identifier.
}

func (s Summary) String() string {
	return fmt.Sprintf("found %d unique matches totalling %d total matches with the most frequent one occurring %d times",
		s.Unique, s.Total, s.Peak)
}

// Summary returns the summary counts of c.
func (c Counts) Summary() Summary {
	if len(c) == 0 {
		return Summary{}
	}
	v := make([]float64, 0, len(c))
	for _, n := range c {
		v = append(v, float64(n))
	}
	return Summary{
		Unique: len(c),
		Total:  int(floats.Sum(v)),
		Peak:   int(floats.Max(v)),
	}
}

// ReadTruth reads simulated reads in FASTQ or FASTA format from r and
// counts the source identifiers recorded in their headers. Reads without
// a recognisable source label are ignored.
func ReadTruth(r io.Reader) (Counts, error) {
	br := bufio.NewReader(r)
	b, err := br.Peek(1)
	if err == io.EOF {
		return Counts{}, nil
	}
	if err != nil {
		return nil, err
	}

	var sr seqio.Reader
	switch b[0] {
	case '@':
		sr = fastq.NewReader(br, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	case '>':
		sr = fasta.NewReader(br, linear.NewSeq("", nil, alphabet.DNA))
	default:
		return nil, fmt.Errorf("accuracy: unrecognised read format starting with %q", b[0])
	}

	c := make(Counts)
	sc := seqio.NewScanner(sr)
	for sc.Next() {
		for _, m := range origin.FindAllStringSubmatch(header(sc.Seq()), -1) {
			c[m[1]]++
		}
	}
	return c, sc.Error()
}

func header(s seq.Sequence) string {
	if d := s.Description(); d != "" {
		return s.Name() + " " + d
	}
	return s.Name()
}

// ReadTruthFile reads the simulated read file at path.
func ReadTruthFile(path string) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTruth(f)
}
