// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Fetch downloads a random sample of bacterial reference genomes from the
// NCBI RefSeq FTP archive. Each genome is written to its own directory
// below <out>/reference_genomes holding its sequence (.fna.gz) and
// annotation (.gbff.gz) files. Running fetch again on the same
// destination adds more genomes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"gopkg.in/cheggaaa/pb.v1"

	"github.com/biogo/metasim/refseq"
)

var (
	number   = flag.Int("n", 0, "n specifies the number of reference genomes to download (required).")
	out      = flag.String("out", "", "out specifies the directory the genomes are downloaded into (required).")
	unzip    = flag.Bool("unzip", false, "unzip decompresses the files after download.")
	rmgz     = flag.Bool("rmgz", true, "rmgz removes compressed files that were successfully unzipped.")
	email    = flag.String("email", refseq.DefaultCredential, "email specifies the address sent to the server as the FTP password.")
	seed     = flag.Int64("seed", 0, "seed specifies the random seed for genome selection.")
	addr     = flag.String("addr", refseq.DefaultAddr, "addr specifies the FTP server address.")
	base     = flag.String("base", refseq.DefaultBase, "base specifies the remote directory listing genome entries.")
	retries  = flag.Uint64("retry", refseq.DefaultPolicy.MaxRetries, "retry specifies the number of reconnection attempts after a connection failure.")
	depth    = flag.Int("depth", refseq.DefaultPolicy.MaxDepth, "depth specifies the maximum directory depth searched below an entry.")
	timeout  = flag.Duration("timeout", 30*time.Second, "timeout specifies the FTP dial timeout.")
	progress = flag.Bool("progress", false, "progress shows a progress bar.")
	stats    = flag.Bool("stats", false, "stats prints assembly statistics for each downloaded sequence file.")
	help     = flag.Bool("help", false, "help prints this message.")
)

func main() {
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *number <= 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", refseq.ErrCount)
		flag.Usage()
		os.Exit(1)
	}
	if *out == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	root, err := refseq.Prepare(*out, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr, "Connecting...")
	policy := refseq.DefaultPolicy
	policy.MaxRetries = *retries
	policy.MaxDepth = *depth
	sess, err := refseq.Connect(ctx, refseq.DialFTP(*addr, *base, *email, *timeout), policy, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ALERT: could not connect to the ftp server, please check your internet connection or ftp credentials: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	f := refseq.NewFetcher(sess, *base, *seed, logger)
	if *progress {
		bar := pb.New(*number)
		bar.Output = os.Stderr
		bar.Start()
		f.Fetched = func(refseq.Genome) { bar.Increment() }
		defer bar.Finish()
	}

	fmt.Fprintln(os.Stderr, "Downloading...")
	got, err := f.Fetch(ctx, *number, root)
	fmt.Fprintf(os.Stderr, "Downloaded %d of %d genomes.\n", len(got), *number)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *unzip {
		fmt.Fprintln(os.Stderr, "Unzipping files...")
		n, err := refseq.Unzip(root, *rmgz, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Unzipped %d files.\n", n)
	}

	if *stats {
		for _, g := range got {
			printStats(g.Dir, logger)
		}
	}
	fmt.Fprintln(os.Stderr, "Done!")
}

func printStats(dir string, logger *log.Logger) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		logger.Printf("could not read %s: %v", dir, err)
		return
	}
	for _, fi := range files {
		if !refseq.IsSequenceFile(fi.Name()) {
			continue
		}
		s, err := refseq.FileStats(filepath.Join(dir, fi.Name()))
		if err != nil {
			logger.Printf("failed to read %s: %v", fi.Name(), err)
			continue
		}
		fmt.Println(s)
	}
}
