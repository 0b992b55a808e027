// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sketch builds sourmash signatures with abundance tracking for a set of
// sequence files, running several sourmash instances in parallel. Files
// are given as arguments or found below a reference genome directory
// written by fetch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/biogo/external"

	"github.com/biogo/metasim/refseq"
	"github.com/biogo/metasim/sourmash"
	"github.com/biogo/metasim/toolrun"
)

var (
	k         = flag.Int("k", 31, "k specifies the k-mer size.")
	scaled    = flag.Int("scaled", 1000, "scaled specifies the scale factor denominator (>= 1).")
	typ       = flag.String("type", "nt", "type specifies the sketch type: aa (amino acid) or nt (nucleotide).")
	outDir    = flag.String("out", "signatures", "out specifies the directory signatures are written to.")
	singleton = flag.Bool("singleton", false, "singleton sketches each sequence record separately.")
	genomes   = flag.String("genomes", "", "genomes specifies a reference_genomes directory whose sequence files are sketched.")
	threads   = flag.Int("threads", 4, "threads specifies the number of concurrent sourmash instances to run.")
	sourmashC = flag.String("sourmash", "", "sourmash specifies the sourmash executable (default search PATH).")
	help      = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}

	moltype, err := sourmash.ParseMoltype(*typ)
	if err != nil {
		log.Fatalf("%v", err)
	}

	files := flag.Args()
	if *genomes != "" {
		g, err := refseq.SequenceFiles(*genomes)
		if err != nil {
			log.Fatalf("could not list genomes: %v", err)
		}
		files = append(files, g...)
	}
	if len(files) == 0 {
		log.Fatal("need sequence files to sketch")
	}

	cbs := make([]external.CommandBuilder, len(files))
	for i, f := range files {
		s, err := sourmash.NewSketch(*k, *scaled, f, moltype, *outDir, *singleton)
		if err != nil {
			log.Fatalf("%v", err)
		}
		s.Cmd = *sourmashC
		cbs[i] = s
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var n int
	err = toolrun.Batch(ctx, *threads, cbs, func(i int, err error) {
		n++
		if err != nil {
			log.Printf("problem with %v: %v", files[i], err)
			return
		}
		fmt.Fprintf(os.Stderr, "done %s, %d of %d\n", files[i], n, len(files))
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
}
