// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refseq

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"gonum.org/v1/gonum/stat"
)

// Stats holds assembly statistics in bp for a multi-FASTA file.
type Stats struct {
	Name string // Base name of the file without format extensions.
	Seqs int
	Size int
	Min  int
	Max  int
	Mean float64
	N50  int
}

func (s Stats) String() string {
	return fmt.Sprintf("%s\tseqs=%d\tsize=%d\tmin=%d\tmax=%d\tmean=%.1f\tN50=%d",
		s.Name, s.Seqs, s.Size, s.Min, s.Max, s.Mean, s.N50)
}

// AssemblyStats reads DNA sequences in FASTA format from r and
// returns their statistics.
func AssemblyStats(r io.Reader) (Stats, error) {
	var (
		b    Stats
		lens []int
	)
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		lens = append(lens, sc.Seq().Len())
	}
	if err := sc.Error(); err != nil {
		return b, err
	}
	if len(lens) == 0 {
		return b, nil
	}

	// Descending order of sequence length.
	sort.Sort(sort.Reverse(sort.IntSlice(lens)))
	w := make([]float64, len(lens))
	for i, l := range lens {
		b.Size += l
		w[i] = float64(l)
	}
	b.Seqs = len(lens)
	b.Max = lens[0]
	b.Min = lens[len(lens)-1]
	b.Mean = stat.Mean(w, nil)
	for i, csum := 0, 0; i < len(lens); i++ {
		csum += lens[i]
		if 2*csum >= b.Size {
			b.N50 = lens[i]
			break
		}
	}
	return b, nil
}

// FileStats returns the assembly statistics of the FASTA file at path,
// which may be gzip compressed.
func FileStats(path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Stats{}, err
		}
		defer gz.Close()
		r = gz
	}
	s, err := AssemblyStats(r)
	name := strings.TrimSuffix(filepath.Base(path), ".gz")
	s.Name = strings.TrimSuffix(name, filepath.Ext(name))
	return s, err
}

// IsSequenceFile returns whether the file name is that of a genome
// sequence file, compressed or not.
func IsSequenceFile(name string) bool {
	return strings.HasSuffix(name, ".fna") || isSequence(name)
}

// SequenceFiles returns the sorted paths of the sequence files held in
// the genome directories below root.
func SequenceFiles(root string) ([]string, error) {
	dirs, err := ioutil.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		dir := filepath.Join(root, d.Name())
		fis, err := ioutil.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, fi := range fis {
			if !fi.IsDir() && IsSequenceFile(fi.Name()) {
				files = append(files, filepath.Join(dir, fi.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
