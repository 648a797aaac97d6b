// Package reads streams sequencing reads from FASTQ or FASTA files, plain
// or compressed.
package reads

import (
	"fmt"
	"io"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
)

// Read is one sequencing read.
type Read struct {
	Name string
	Seq  string
}

// Reader streams reads one at a time in file order.
type Reader struct {
	fq *fastx.Reader
}

// Open opens path for reading. Compression is detected from the file
// contents; "-" reads standard input.
func Open(path string) (*Reader, error) {
	fq, err := fastx.NewReader(seq.DNAredundant, path, "")
	if err != nil {
		return nil, fmt.Errorf("opening reads: %w", err)
	}
	return &Reader{fq: fq}, nil
}

// Read returns the next read, or io.EOF after the last one. A malformed
// record is returned as an error.
func (r *Reader) Read() (Read, error) {
	rec, err := r.fq.Read()
	if err != nil {
		if err == io.EOF {
			return Read{}, io.EOF
		}
		return Read{}, fmt.Errorf("reading record: %w", err)
	}
	return Read{
		Name: string(rec.ID),
		Seq:  string(rec.Seq.Seq),
	}, nil
}

// Each calls fn for every read until the stream ends, fn returns false, or
// reading fails.
func (r *Reader) Each(fn func(Read) bool) error {
	for {
		read, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(read) {
			return nil
		}
	}
}

// Close releases the underlying file.
func (r *Reader) Close() {
	r.fq.Close()
}
