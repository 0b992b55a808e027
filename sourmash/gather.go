// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sourmash

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Result is a single match reported by sourmash gather.
type Result struct {
	Name string
	ID   string // Name up to the first '|'.

	// Optional columns; zero when absent.
	IntersectBP     int
	FUniqueWeighted float64
}

// ID returns the identifier portion of a match name, the text before the
// first '|'. This is the same identifier recovered from simulated read
// headers.
func ID(name string) string {
	if i := strings.IndexByte(name, '|'); i >= 0 {
		return name[:i]
	}
	return name
}

var ErrNoName = errors.New("sourmash: gather output has no name column")

// ReadGather reads the CSV output of sourmash gather.
func ReadGather(r io.Reader) ([]Result, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	head, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoName
	}
	if err != nil {
		return nil, err
	}
	col := make(map[string]int)
	for i, h := range head {
		col[h] = i
	}
	name, ok := col["name"]
	if !ok {
		return nil, ErrNoName
	}
	ibp, hasIBP := col["intersect_bp"]
	fuw, hasFUW := col["f_unique_weighted"]

	var res []Result
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		r := Result{Name: rec[name], ID: ID(rec[name])}
		if hasIBP && rec[ibp] != "" {
			r.IntersectBP, err = strconv.Atoi(rec[ibp])
			if err != nil {
				return res, fmt.Errorf("sourmash: bad intersect_bp on line %d: %w", line, err)
			}
		}
		if hasFUW && rec[fuw] != "" {
			r.FUniqueWeighted, err = strconv.ParseFloat(rec[fuw], 64)
			if err != nil {
				return res, fmt.Errorf("sourmash: bad f_unique_weighted on line %d: %w", line, err)
			}
		}
		res = append(res, r)
	}
	return res, nil
}

// ReadGatherFile reads the sourmash gather CSV file at path.
func ReadGatherFile(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGather(f)
}

// UniqueIDs returns the sorted set of identifiers in res.
func UniqueIDs(res []Result) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range res {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}
