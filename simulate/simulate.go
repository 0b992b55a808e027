// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Simulate generates a synthetic metagenome of unpaired reads from a set
// of reference sequences using the BBTools randomreads.sh simulator and
// reports the composition of the simulated reads.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/biogo/metasim/accuracy"
	"github.com/biogo/metasim/bbtools"
)

var (
	ref     = flag.String("ref", "", "ref specifies the reference sequences to simulate reads from (required).")
	out     = flag.String("out", "", "out specifies the simulated read file; must end in .fq or .fastq (required).")
	reads   = flag.Int("reads", 10000, "reads specifies the number of reads to simulate.")
	length  = flag.Int("len", bbtools.DefaultLength, "len specifies the length of the simulated reads.")
	noisy   = flag.Bool("noisy", false, "noisy injects substitutions, indels and N calls into the reads.")
	bbmap   = flag.String("bbtools", "", "bbtools specifies the directory holding randomreads.sh (default search PATH).")
	summary = flag.Bool("summary", true, "summary prints the composition of the simulated reads.")
	help    = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *ref == "" || *out == "" {
		flag.Usage()
		os.Exit(1)
	}
	switch filepath.Ext(*out) {
	case ".fq", ".fastq":
	default:
		fmt.Fprintf(os.Stderr, "Error: output %q must be a FASTQ file\n", *out)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := bbtools.NewRandomReads(*ref, *out, *reads, *length, *noisy)
	if *bbmap != "" {
		r.Cmd = filepath.Join(*bbmap, "randomreads.sh")
	}
	fmt.Fprintf(os.Stderr, "Simulating %d reads of length %d from `%s'.\n", *reads, *length, *ref)
	err := bbtools.Simulate(ctx, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*summary {
		return
	}
	c, err := accuracy.ReadTruthFile(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("I %v\n", c.Summary())
}
