// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package accuracy

import (
	"fmt"
	"sort"

	"github.com/biogo/metasim/sourmash"
)

// Outcome is the binary classification result of comparing reported
// identifiers with the ground truth.
type Outcome struct {
	TP []string // Reported and present.
	FP []string // Reported but absent.
	FN []string // Present but not reported.

	// Precision, Recall and F1 are zero when their
	// denominator is zero.
	Precision float64
	Recall    float64
	F1        float64
}

func (o Outcome) String() string {
	return fmt.Sprintf("TP=%d\tFP=%d\tFN=%d\tprecision=%.4f\trecall=%.4f\tF1=%.4f",
		len(o.TP), len(o.FP), len(o.FN), o.Precision, o.Recall, o.F1)
}

// Evaluate compares the reported identifiers with the identifiers in
// truth. Duplicate reported identifiers are counted once.
func Evaluate(truth Counts, reported []string) Outcome {
	var o Outcome
	rep := make(map[string]bool, len(reported))
	for _, id := range reported {
		if rep[id] {
			continue
		}
		rep[id] = true
		if truth[id] > 0 {
			o.TP = append(o.TP, id)
		} else {
			o.FP = append(o.FP, id)
		}
	}
	for id, n := range truth {
		if n > 0 && !rep[id] {
			o.FN = append(o.FN, id)
		}
	}
	sort.Strings(o.TP)
	sort.Strings(o.FP)
	sort.Strings(o.FN)

	tp := float64(len(o.TP))
	o.Precision = ratio(tp, tp+float64(len(o.FP)))
	o.Recall = ratio(tp, tp+float64(len(o.FN)))
	o.F1 = ratio(2*o.Precision*o.Recall, o.Precision+o.Recall)
	return o
}

func ratio(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// EvaluateFiles scores the sourmash gather CSV file against the ground
// truth of the simulated read file it was run on.
func EvaluateFiles(reads, gather string) (Outcome, Counts, error) {
	truth, err := ReadTruthFile(reads)
	if err != nil {
		return Outcome{}, nil, err
	}
	res, err := sourmash.ReadGatherFile(gather)
	if err != nil {
		return Outcome{}, truth, err
	}
	return Evaluate(truth, sourmash.UniqueIDs(res)), truth, nil
}
