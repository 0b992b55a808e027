// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Score compares the composition reported by sourmash gather with the
// known composition of the simulated reads it was run on and prints the
// binary classification statistics.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/biogo/metasim/accuracy"
)

var (
	reads   = flag.String("reads", "", "reads specifies the simulated read file (required).")
	gather  = flag.String("gather", "", "gather specifies the sourmash gather CSV output (required).")
	plot    = flag.String("plot", "", "plot specifies an image file for the simulated read abundance chart.")
	asJSON  = flag.Bool("json", false, "json prints the results as JSON.")
	verbose = flag.Bool("v", false, "v lists the identifiers in each class.")
	help    = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *reads == "" || *gather == "" {
		flag.Usage()
		os.Exit(1)
	}

	o, truth, err := accuracy.EvaluateFiles(*reads, *gather)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "I %v\n", truth.Summary())

	if *plot != "" {
		err = accuracy.PlotAbundance(truth, *plot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "\t")
		err = enc.Encode(o)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(o)
	if *verbose {
		for _, class := range []struct {
			name string
			ids  []string
		}{
			{"TP", o.TP},
			{"FP", o.FP},
			{"FN", o.FN},
		} {
			fmt.Printf("%s\t%s\n", class.name, strings.Join(class.ids, " "))
		}
	}
}
