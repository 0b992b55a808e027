// Copyright ©2017 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// seqstats calculates and prints assembly statistics of
// reference genome sequence files: the total no. of
// sequences, assembly size (total length of all sequences),
// Min, Max, Mean and N50. Files are given as arguments,
// found in the genome directories written by fetch, or
// read from stdin. Gzip compressed files are accepted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/biogo/metasim/refseq"
)

var (
	genomes = flag.String("genomes", "", "reference_genomes directory to summarise")
	help    = flag.Bool("help", false, "help prints this message")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}

	files := flag.Args()
	if *genomes != "" {
		g, err := refseq.SequenceFiles(*genomes)
		if err != nil {
			log.Fatalf("failed to read %q: %v", *genomes, err)
		}
		files = append(files, g...)
	}

	if len(files) == 0 {
		b, err := refseq.AssemblyStats(os.Stdin)
		if err != nil {
			log.Fatalf("failed during read: %v", err)
		}
		fmt.Println(b)
		return
	}
	for _, f := range files {
		b, err := refseq.FileStats(f)
		if err != nil {
			log.Fatalf("failed during read of %q: %v", f, err)
		}
		// Print the statistics of the assembly as tab-separated key-value pairs.
		fmt.Println(b)
	}
}
