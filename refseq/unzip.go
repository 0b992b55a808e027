// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refseq

import (
	"compress/gzip"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Unzip decompresses every gzip archive held in the genome directories
// below root, writing the output beside the archive. Archives that fail
// to decompress are reported to logger and left in place. If remove is
// true, successfully decompressed archives are deleted. Unzip returns
// the number of archives decompressed.
func Unzip(root string, remove bool, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	genomes, err := ioutil.ReadDir(root)
	if err != nil {
		return 0, err
	}
	var n int
	for _, g := range genomes {
		if !g.IsDir() {
			continue
		}
		dir := filepath.Join(root, g.Name())
		files, err := ioutil.ReadDir(dir)
		if err != nil {
			return n, err
		}
		for _, fi := range files {
			if fi.IsDir() || filepath.Ext(fi.Name()) != ".gz" {
				continue
			}
			p := filepath.Join(dir, fi.Name())
			err = gunzip(p, strings.TrimSuffix(p, ".gz"))
			if err != nil {
				logger.Printf("ALERT: %s did not unzip: %v", p, err)
				continue
			}
			n++
			if remove {
				err = os.Remove(p)
				if err != nil {
					return n, err
				}
			}
		}
	}
	return n, nil
}

func gunzip(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	r, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer r.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, r)
	cerr := out.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
	}
	return err
}
