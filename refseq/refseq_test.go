// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refseq

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"io/ioutil"
	"log"
	"math"
	"net"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

const base = "/bacteria"

// server is an in-memory FTP archive.
type server struct {
	dirs  map[string][]string
	files map[string]string

	loop     string         // Directories below loop list a single subdirectory.
	listFail map[string]int // Transient failures remaining per listed path.
	retrFail int            // Retr call number that fails transiently.
	dialFail int            // Dial failures remaining.

	dials, lists, retrs int
}

func newServer() *server {
	s := &server{
		dirs: map[string][]string{
			base:                          {"Alpha", "Beta", "Gamma", "Delta", "Zeta"},
			base + "/Alpha":               {"latest_assembly_versions", "all_assembly_versions"},
			base + "/Alpha/latest_assembly_versions": {"GCF_1"},
			base + "/Alpha/latest_assembly_versions/GCF_1": {
				"GCF_1_genomic.fna.gz", "GCF_1_genomic.gbff.gz", "md5checksums.txt",
			},
			base + "/Beta":  {"GCF_2_genomic.fna.gz", "GCF_2_genomic.gbff.gz"},
			base + "/Gamma": {"GCF_3_genomic.fna.gz", "GCF_3_protein.faa.gz"},
			base + "/Delta": {"GCF_4_cds_from_genomic.fna.gz", "GCF_4_genomic.fna.gz", "GCF_4_genomic.gbff.gz"},
			base + "/Zeta":  {"GCF_5_genomic.fna.gz", "GCF_5_genomic.gbff.gz"},
			base + "/Empty": {},
		},
		files:    make(map[string]string),
		listFail: make(map[string]int),
	}
	for dir, names := range s.dirs {
		for _, n := range names {
			if strings.HasSuffix(n, ".gz") || strings.HasSuffix(n, ".txt") {
				s.files[dir+"/"+n] = "content of " + n
			}
		}
	}
	return s
}

func (s *server) dial(_ context.Context) (Conn, error) {
	s.dials++
	if s.dialFail > 0 {
		s.dialFail--
		return nil, errors.New("connection refused")
	}
	return &conn{s: s}, nil
}

type conn struct {
	s      *server
	closed bool
}

func (c *conn) NameList(p string) ([]string, error) {
	if c.closed {
		return nil, net.ErrClosed
	}
	c.s.lists++
	if c.s.listFail[p] > 0 {
		c.s.listFail[p]--
		return nil, io.EOF
	}
	if c.s.loop != "" && strings.HasPrefix(p, c.s.loop) {
		return []string{"deeper"}, nil
	}
	names, ok := c.s.dirs[p]
	if !ok {
		return nil, &textproto.Error{Code: 550, Msg: "No such file or directory"}
	}
	qualified := make([]string, len(names))
	for i, n := range names {
		qualified[i] = p + "/" + n
	}
	return qualified, nil
}

func (c *conn) Retr(p string) (io.ReadCloser, error) {
	if c.closed {
		return nil, net.ErrClosed
	}
	c.s.retrs++
	if c.s.retrs == c.s.retrFail {
		return nil, &textproto.Error{Code: 426, Msg: "Connection closed; transfer aborted"}
	}
	data, ok := c.s.files[p]
	if !ok {
		return nil, &textproto.Error{Code: 550, Msg: "No such file or directory"}
	}
	return ioutil.NopCloser(strings.NewReader(data)), nil
}

func (c *conn) Quit() error {
	c.closed = true
	return nil
}

var (
	quiet = log.New(ioutil.Discard, "", 0)
	fast  = Policy{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxDepth:        8,
	}
)

func (s *S) session(c *check.C, srv *server, p Policy) *Session {
	sess, err := Connect(context.Background(), srv.dial, p, quiet)
	c.Assert(err, check.Equals, nil)
	return sess
}

func (s *S) TestConnectNoRetry(c *check.C) {
	srv := newServer()
	srv.dialFail = 1
	_, err := Connect(context.Background(), srv.dial, fast, quiet)
	c.Check(err, check.NotNil)
	c.Check(srv.dials, check.Equals, 1)
}

func (s *S) TestList(c *check.C) {
	sess := s.session(c, newServer(), fast)
	names, err := sess.List(context.Background(), base+"/Beta")
	c.Assert(err, check.Equals, nil)
	c.Check(names, check.DeepEquals, []string{"GCF_2_genomic.fna.gz", "GCF_2_genomic.gbff.gz"})
}

func (s *S) TestListReconnects(c *check.C) {
	srv := newServer()
	srv.listFail[base] = 2
	sess := s.session(c, srv, fast)
	names, err := sess.List(context.Background(), base)
	c.Assert(err, check.Equals, nil)
	c.Check(names, check.HasLen, 5)
	c.Check(srv.dials, check.Equals, 3)
}

func (s *S) TestListRetryLimit(c *check.C) {
	srv := newServer()
	srv.listFail[base] = 10
	sess := s.session(c, srv, fast)
	_, err := sess.List(context.Background(), base)
	c.Check(IsTransient(err), check.Equals, true)
	c.Check(srv.dials, check.Equals, 1+int(fast.MaxRetries))
}

func (s *S) TestListPermanent(c *check.C) {
	srv := newServer()
	sess := s.session(c, srv, fast)
	_, err := sess.List(context.Background(), base+"/Missing")
	var te *textproto.Error
	c.Check(errors.As(err, &te), check.Equals, true)
	c.Check(srv.dials, check.Equals, 1)
}

func (s *S) TestDescend(c *check.C) {
	srv := newServer()
	sess := s.session(c, srv, fast)
	ctx := context.Background()

	l, err := sess.Descend(ctx, base+"/Alpha")
	c.Assert(err, check.Equals, nil)
	c.Check(l.Dir, check.Equals, base+"/Alpha/latest_assembly_versions/GCF_1")
	c.Check(l.HasSequence(), check.Equals, true)
	c.Check(l.HasAnnotation(), check.Equals, true)

	// Descending from a terminal directory does not move.
	lists := srv.lists
	again, err := sess.Descend(ctx, l.Dir)
	c.Assert(err, check.Equals, nil)
	c.Check(again, check.DeepEquals, l)
	c.Check(srv.lists, check.Equals, lists+1)
}

func (s *S) TestDescendLimits(c *check.C) {
	srv := newServer()
	srv.loop = base + "/Loop"
	sess := s.session(c, srv, fast)
	ctx := context.Background()

	_, err := sess.Descend(ctx, base+"/Loop")
	c.Check(errors.Is(err, ErrTooDeep), check.Equals, true, check.Commentf("got: %v", err))
	c.Check(srv.lists, check.Equals, fast.MaxDepth+1)

	_, err = sess.Descend(ctx, base+"/Empty")
	c.Check(errors.Is(err, ErrNoSequence), check.Equals, true, check.Commentf("got: %v", err))
}

func genomeDirs(c *check.C, dst string) map[string][]string {
	fis, err := ioutil.ReadDir(dst)
	c.Assert(err, check.Equals, nil)
	dirs := make(map[string][]string)
	for _, fi := range fis {
		if !fi.IsDir() {
			continue
		}
		files, err := ioutil.ReadDir(filepath.Join(dst, fi.Name()))
		c.Assert(err, check.Equals, nil)
		for _, f := range files {
			dirs[fi.Name()] = append(dirs[fi.Name()], f.Name())
		}
	}
	return dirs
}

func (s *S) TestFetch(c *check.C) {
	srv := newServer()
	sess := s.session(c, srv, fast)
	f := NewFetcher(sess, base, 1, quiet)
	var seen []string
	f.Fetched = func(g Genome) { seen = append(seen, g.Name) }
	dst := c.MkDir()

	got, err := f.Fetch(context.Background(), 3, dst)
	c.Assert(err, check.Equals, nil)
	c.Check(got, check.HasLen, 3)
	c.Check(seen, check.HasLen, 3)

	names := make(map[string]bool)
	for _, g := range got {
		names[g.Name] = true
	}
	// Gamma lacks an annotation file and Zeta is the last entry.
	c.Check(names, check.DeepEquals, map[string]bool{"Alpha": true, "Beta": true, "Delta": true})

	dirs := genomeDirs(c, dst)
	c.Check(dirs, check.HasLen, 3)
	for name, files := range dirs {
		var seq, ann int
		for _, f := range files {
			switch {
			case strings.HasSuffix(f, SequenceSuffix):
				seq++
			case strings.HasSuffix(f, AnnotationSuffix):
				ann++
			default:
				c.Errorf("unexpected file %q in %s", f, name)
			}
		}
		c.Check(seq > 0, check.Equals, true, check.Commentf("%s", name))
		c.Check(ann > 0, check.Equals, true, check.Commentf("%s", name))
	}
	b, err := ioutil.ReadFile(filepath.Join(dst, "Beta", "GCF_2_genomic.gbff.gz"))
	c.Assert(err, check.Equals, nil)
	c.Check(string(b), check.Equals, "content of GCF_2_genomic.gbff.gz")

	idx := f.Tried()
	c.Check(idx, check.HasLen, 3)
	uniq := make(map[int]bool)
	for _, i := range idx {
		uniq[i] = true
	}
	c.Check(uniq, check.HasLen, 3)
}

func (s *S) TestFetchExhausted(c *check.C) {
	sess := s.session(c, newServer(), fast)
	f := NewFetcher(sess, base, 0, quiet)
	got, err := f.Fetch(context.Background(), 4, c.MkDir())
	c.Check(errors.Is(err, ErrExhausted), check.Equals, true)
	c.Check(got, check.HasLen, 3)
}

func (s *S) TestFetchTransferFailure(c *check.C) {
	srv := newServer()
	// Fail the second file of the first genome retrieved.
	srv.retrFail = 2
	sess := s.session(c, srv, fast)
	f := NewFetcher(sess, base, 7, quiet)
	dst := c.MkDir()

	got, err := f.Fetch(context.Background(), 2, dst)
	c.Assert(err, check.Equals, nil)
	c.Check(got, check.HasLen, 2)
	c.Check(srv.dials, check.Equals, 2)
	c.Check(f.Tried(), check.HasLen, 3)

	dirs := genomeDirs(c, dst)
	c.Check(dirs, check.HasLen, 2)
	for _, g := range got {
		_, ok := dirs[g.Name]
		c.Check(ok, check.Equals, true)
	}
}

func (s *S) TestFetchCount(c *check.C) {
	srv := newServer()
	sess := s.session(c, srv, fast)
	f := NewFetcher(sess, base, 0, quiet)
	for _, n := range []int{0, -1} {
		_, err := f.Fetch(context.Background(), n, c.MkDir())
		c.Check(err, check.Equals, ErrCount)
	}
	c.Check(srv.lists, check.Equals, 0)
}

func (s *S) TestPrepare(c *check.C) {
	dir := c.MkDir()

	dst := filepath.Join(dir, "new", "genomes")
	root, err := Prepare(dst, quiet)
	c.Assert(err, check.Equals, nil)
	c.Check(root, check.Equals, filepath.Join(dst, "reference_genomes"))
	fi, err := os.Stat(root)
	c.Assert(err, check.Equals, nil)
	c.Check(fi.IsDir(), check.Equals, true)

	// Preparing again is allowed with a warning.
	var buf bytes.Buffer
	_, err = Prepare(dst, log.New(&buf, "", 0))
	c.Check(err, check.Equals, nil)
	c.Check(strings.Contains(buf.String(), "not empty"), check.Equals, true)

	file := filepath.Join(dir, "file")
	c.Assert(ioutil.WriteFile(file, nil, 0o644), check.Equals, nil)
	_, err = Prepare(file, quiet)
	c.Check(errors.Is(err, ErrNotDir), check.Equals, true)
}

func gzipped(c *check.C, s string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	c.Assert(err, check.Equals, nil)
	c.Assert(w.Close(), check.Equals, nil)
	return buf.Bytes()
}

func (s *S) TestUnzip(c *check.C) {
	root := c.MkDir()
	g := filepath.Join(root, "Alpha")
	c.Assert(os.Mkdir(g, 0o755), check.Equals, nil)
	c.Assert(ioutil.WriteFile(filepath.Join(g, "a.fna.gz"), gzipped(c, ">a\nACGT\n"), 0o644), check.Equals, nil)
	c.Assert(ioutil.WriteFile(filepath.Join(g, "a.gbff.gz"), []byte("not gzip"), 0o644), check.Equals, nil)

	var buf bytes.Buffer
	n, err := Unzip(root, true, log.New(&buf, "", 0))
	c.Assert(err, check.Equals, nil)
	c.Check(n, check.Equals, 1)
	c.Check(strings.Contains(buf.String(), "a.gbff.gz"), check.Equals, true)

	b, err := ioutil.ReadFile(filepath.Join(g, "a.fna"))
	c.Assert(err, check.Equals, nil)
	c.Check(string(b), check.Equals, ">a\nACGT\n")
	for _, t := range []struct {
		name   string
		exists bool
	}{
		{name: "a.fna.gz", exists: false},
		{name: "a.gbff.gz", exists: true},
		{name: "a.gbff", exists: false},
	} {
		_, err := os.Stat(filepath.Join(g, t.name))
		c.Check(err == nil, check.Equals, t.exists, check.Commentf("%s", t.name))
	}
}

func (s *S) TestAssemblyStats(c *check.C) {
	for i, t := range []struct {
		in   string
		want Stats
	}{
		{
			in:   "",
			want: Stats{},
		},
		{
			in:   ">a\nACGTACGTAC\n>b\nACGTAC\n>c\nACGT\n",
			want: Stats{Seqs: 3, Size: 20, Min: 4, Max: 10, Mean: 20.0 / 3, N50: 10},
		},
		{
			in:   ">a\nACG\n>b\nACGTA\n>c\nACGTAC\n>d\nACGTACG\n",
			want: Stats{Seqs: 4, Size: 21, Min: 3, Max: 7, Mean: 21.0 / 4, N50: 6},
		},
	} {
		got, err := AssemblyStats(strings.NewReader(t.in))
		c.Assert(err, check.Equals, nil)
		c.Check(math.Abs(got.Mean-t.want.Mean) < 1e-9, check.Equals, true, check.Commentf("Test %d", i))
		got.Mean, t.want.Mean = 0, 0
		c.Check(got, check.Equals, t.want, check.Commentf("Test %d", i))
	}
}

func (s *S) TestFileStats(c *check.C) {
	p := filepath.Join(c.MkDir(), "GCF_000005845.2_ASM584v2_genomic.fna.gz")
	c.Assert(ioutil.WriteFile(p, gzipped(c, ">a\nACGTACGT\n>b\nACGT\n"), 0o644), check.Equals, nil)
	st, err := FileStats(p)
	c.Assert(err, check.Equals, nil)
	c.Check(st.Name, check.Equals, "GCF_000005845.2_ASM584v2_genomic")
	c.Check(st.Seqs, check.Equals, 2)
	c.Check(st.Size, check.Equals, 12)
	c.Check(st.N50, check.Equals, 8)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func (s *S) TestIsTransient(c *check.C) {
	for _, t := range []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: io.EOF, want: true},
		{err: io.ErrUnexpectedEOF, want: true},
		{err: net.ErrClosed, want: true},
		{err: timeoutError{}, want: true},
		{err: &textproto.Error{Code: 421, Msg: "Service not available"}, want: true},
		{err: &textproto.Error{Code: 426, Msg: "Transfer aborted"}, want: true},
		{err: &textproto.Error{Code: 550, Msg: "No such file"}, want: false},
		{err: errors.New("refseq: something else"), want: false},
		{err: ErrTooDeep, want: false},
	} {
		c.Check(IsTransient(t.err), check.Equals, t.want, check.Commentf("%v", t.err))
	}
}

func (s *S) TestSequenceFiles(c *check.C) {
	root := c.MkDir()
	for _, p := range []string{
		"Beta/GCF_2_genomic.fna.gz",
		"Beta/GCF_2_genomic.gbff.gz",
		"Alpha/GCF_1_genomic.fna",
		"Alpha/GCF_1_genomic.gbff",
		"stray.fna",
	} {
		p = filepath.Join(root, p)
		c.Assert(os.MkdirAll(filepath.Dir(p), 0o755), check.Equals, nil)
		c.Assert(ioutil.WriteFile(p, nil, 0o644), check.Equals, nil)
	}
	files, err := SequenceFiles(root)
	c.Assert(err, check.Equals, nil)
	c.Check(files, check.DeepEquals, []string{
		filepath.Join(root, "Alpha", "GCF_1_genomic.fna"),
		filepath.Join(root, "Beta", "GCF_2_genomic.fna.gz"),
	})
}
