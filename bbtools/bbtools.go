// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bbtools provides interaction with the BBTools randomreads.sh
// read simulator.
package bbtools

import (
	"context"
	"errors"
	"os/exec"

	"github.com/biogo/external"

	"github.com/biogo/metasim/toolrun"
)

// DefaultLength is the default simulated read length.
const DefaultLength = 150

// NoiseRate is the per-base rate applied to each class of error when
// noisy reads are requested.
const NoiseRate = 0.01

// RandomReads is a command builder for randomreads.sh.
type RandomReads struct {
	// Usage: randomreads.sh ref=<file> out=<file> length=<len> reads=<number>
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}randomreads.sh{{end}}"` // randomreads.sh

	// Naming and output.
	SimpleNames   bool `buildarg:"simplenames={{if .}}t{{else}}f{{end}}"`   // simplenames=<t|f>
	Overwrite     bool `buildarg:"overwrite={{if .}}t{{else}}f{{end}}"`     // overwrite=<t|f>
	IlluminaNames bool `buildarg:"illuminanames={{if .}}t{{else}}f{{end}}"` // illuminanames=<t|f>
	Metagenome    bool `buildarg:"metagenome={{if .}}t{{else}}f{{end}}"`    // metagenome=<t|f>

	// Mutation rates.
	SNPRate float64 `buildarg:"{{if .}}snprate={{.}}{{end}}"` // snprate=<f>
	InsRate float64 `buildarg:"{{if .}}insrate={{.}}{{end}}"` // insrate=<f>
	DelRate float64 `buildarg:"{{if .}}delrate={{.}}{{end}}"` // delrate=<f>
	SubRate float64 `buildarg:"{{if .}}subrate={{.}}{{end}}"` // subrate=<f>
	NRate   float64 `buildarg:"{{if .}}nrate={{.}}{{end}}"`   // nrate=<f>

	Ref    string `buildarg:"{{if .}}ref={{.}}{{end}}"`    // ref=<file>
	Out    string `buildarg:"{{if .}}out={{.}}{{end}}"`    // out=<file>
	Reads  int    `buildarg:"{{if .}}reads={{.}}{{end}}"`  // reads=<n>
	Length int    `buildarg:"{{if .}}length={{.}}{{end}}"` // length=<n>
}

// NewRandomReads returns a RandomReads that simulates n unpaired
// metagenomic reads of the given length from ref into out. If noisy is
// true each class of sequencing error is applied at NoiseRate.
func NewRandomReads(ref, out string, n, length int, noisy bool) RandomReads {
	r := RandomReads{
		SimpleNames: true,
		Overwrite:   true,
		Metagenome:  true,
		Ref:         ref,
		Out:         out,
		Reads:       n,
		Length:      length,
	}
	if noisy {
		r.SNPRate = NoiseRate
		r.InsRate = NoiseRate
		r.DelRate = NoiseRate
		r.SubRate = NoiseRate
		r.NRate = NoiseRate
	}
	return r
}

var (
	ErrMissingRef = errors.New("bbtools: missing reference file")
	ErrMissingOut = errors.New("bbtools: missing output file")
	ErrReads      = errors.New("bbtools: number of reads must be positive")
	ErrLength     = errors.New("bbtools: read length must be positive")
)

func (r RandomReads) BuildCommand() (*exec.Cmd, error) {
	switch {
	case r.Ref == "":
		return nil, ErrMissingRef
	case r.Out == "":
		return nil, ErrMissingOut
	case r.Reads <= 0:
		return nil, ErrReads
	case r.Length <= 0:
		return nil, ErrLength
	}
	cl := external.Must(external.Build(r))
	return exec.Command(cl[0], cl[1:]...), nil
}

// Simulate runs r, returning an error if the simulator fails.
func Simulate(ctx context.Context, r RandomReads) error {
	return toolrun.Run(ctx, r, nil)
}
