// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gather estimates the composition of a query signature against a
// reference database using sourmash gather. Abundances are ignored, ANI
// confidence intervals are estimated and the prefetch step is skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/biogo/metasim/sourmash"
)

var (
	query     = flag.String("query", "", "query specifies the query signature (required).")
	db        = flag.String("db", "", "db specifies the database signature (required).")
	out       = flag.String("out", "", "out specifies the CSV results file (required).")
	typ       = flag.String("type", "nt", "type specifies the sketch type: aa (amino acid) or nt (nucleotide).")
	num       = flag.Int("num", 0, "num limits the number of results reported (0 for no limit).")
	threshold = flag.Int("threshold", sourmash.DefaultThresholdBP, "threshold stops gather once the overlap is below this many base pairs (0 for sourmash default).")
	sourmashC = flag.String("sourmash", "", "sourmash specifies the sourmash executable (default search PATH).")
	help      = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *query == "" || *db == "" || *out == "" {
		flag.Usage()
		os.Exit(1)
	}

	moltype, err := sourmash.ParseMoltype(*typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	g, err := sourmash.NewGather(*query, *db, *out, moltype)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	g.Cmd = *sourmashC
	g.NumResults = *num
	g.ThresholdBP = *threshold

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "Gathering `%s' against `%s'.\n", *query, *db)
	err = sourmash.Run(ctx, g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	res, err := sourmash.ReadGatherFile(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d matches (%d unique identifiers) to `%s'.\n", len(res), len(sourmash.UniqueIDs(res)), *out)
}
