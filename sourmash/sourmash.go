// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sourmash provides interaction with the sourmash sketch and
// gather commands and reading of gather results.
package sourmash

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/biogo/external"

	"github.com/biogo/metasim/toolrun"
)

// Moltype is a sourmash molecule type.
type Moltype string

const (
	Protein Moltype = "protein"
	DNA     Moltype = "dna"
)

var ErrSketchType = errors.New("sourmash: sketch type must be one of 'aa' or 'nt'")

// ParseMoltype returns the Moltype for the sketch type names "aa",
// amino acid, and "nt", nucleotide.
func ParseMoltype(sketchType string) (Moltype, error) {
	switch sketchType {
	case "aa":
		return Protein, nil
	case "nt":
		return DNA, nil
	}
	return "", fmt.Errorf("%w: given %q", ErrSketchType, sketchType)
}

// Sketch is a command builder for sourmash sketch.
type Sketch struct {
	// Usage: sourmash sketch {dna,protein} -p <params> -o <output> [--singleton] <file>
	//
	Cmd     string  `buildarg:"{{if .}}{{.}}{{else}}sourmash{{end}}{{split}}sketch"` // sourmash sketch
	Moltype Moltype `buildarg:"{{.}}"`                                                // {dna,protein}
	Param   string  `buildarg:"{{if .}}-p{{split}}{{.}}{{end}}"`                      // -p <params>
	Out     string  `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`                      // -o <output>

	// Compute a sketch for each sequence record individually.
	Singleton bool `buildarg:"{{if .}}--singleton{{end}}"` // --singleton

	In string `buildarg:"{{.}}"` // <file>
}

// NewSketch returns a Sketch of file with abundance tracking using k-mer
// size k and scale factor 1/scaled, writing the signature into outDir,
// which is created if it does not exist. If perRecord is true each
// record in file is sketched separately.
func NewSketch(k, scaled int, file string, moltype Moltype, outDir string, perRecord bool) (Sketch, error) {
	if k <= 0 || scaled < 1 {
		return Sketch{}, fmt.Errorf("sourmash: invalid sketch parameters k=%d scaled=%d", k, scaled)
	}
	err := os.MkdirAll(outDir, 0o755)
	if err != nil {
		return Sketch{}, err
	}
	return Sketch{
		Moltype:   moltype,
		Param:     fmt.Sprintf("k=%d,scaled=%d,abund", k, scaled),
		Out:       SignaturePath(outDir, file, k, scaled),
		Singleton: perRecord,
		In:        file,
	}, nil
}

// SignaturePath returns the path of the signature written for file.
func SignaturePath(outDir, file string, k, scaled int) string {
	return fmt.Sprintf("%s_k_%d_scale_%d.sig", filepath.Join(outDir, filepath.Base(file)), k, scaled)
}

func (s Sketch) BuildCommand() (*exec.Cmd, error) {
	switch s.Moltype {
	case Protein, DNA:
	default:
		return nil, fmt.Errorf("sourmash: invalid molecule type %q", s.Moltype)
	}
	if s.In == "" {
		return nil, errors.New("sourmash: missing input file")
	}
	cl := external.Must(external.Build(s))
	return exec.Command(cl[0], cl[1:]...), nil
}

// DefaultThresholdBP is the default minimum overlap for gather matches.
const DefaultThresholdBP = 1000

// Gather is a command builder for sourmash gather.
type Gather struct {
	// Usage: sourmash gather [options] <query> <database>
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}sourmash{{end}}{{split}}gather"` // sourmash gather
	Out string `buildarg:"{{if .}}-o{{split}}{{.}}{{end}}"`                      // -o <output.csv>

	IgnoreAbundance bool `buildarg:"{{if .}}--ignore-abundance{{end}}"` // --ignore-abundance
	EstimateANICI   bool `buildarg:"{{if .}}--estimate-ani-ci{{end}}"`  // --estimate-ani-ci
	NoPrefetch      bool `buildarg:"{{if .}}--no-prefetch{{end}}"`      // --no-prefetch

	Protein bool `buildarg:"{{if .}}--protein{{else}}--dna{{end}}"` // --protein|--dna

	// Limits on reported matches.
	NumResults  int `buildarg:"{{if .}}--num-results{{split}}{{.}}{{end}}"`  // --num-results <n>
	ThresholdBP int `buildarg:"{{if .}}--threshold-bp{{split}}{{.}}{{end}}"` // --threshold-bp <bp>

	Query    string `buildarg:"{{.}}"` // <query>
	Database string `buildarg:"{{.}}"` // <database>
}

// NewGather returns a Gather of the query signature against the database
// that ignores abundances, estimates ANI confidence intervals and skips
// the prefetch step, writing results to out.
func NewGather(query, database, out string, moltype Moltype) (Gather, error) {
	switch moltype {
	case Protein, DNA:
	default:
		return Gather{}, fmt.Errorf("sourmash: invalid molecule type %q", moltype)
	}
	return Gather{
		Out:             out,
		IgnoreAbundance: true,
		EstimateANICI:   true,
		NoPrefetch:      true,
		Protein:         moltype == Protein,
		ThresholdBP:     DefaultThresholdBP,
		Query:           query,
		Database:        database,
	}, nil
}

func (g Gather) BuildCommand() (*exec.Cmd, error) {
	if g.Query == "" || g.Database == "" {
		return nil, errors.New("sourmash: gather requires a query and a database")
	}
	cl := external.Must(external.Build(g))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Run runs the sourmash command described by cb.
func Run(ctx context.Context, cb external.CommandBuilder) error {
	return toolrun.Run(ctx, cb, nil)
}
