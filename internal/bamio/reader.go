// Package bamio reads mapped reads from BAM files for k-mer extraction.
package bamio

import (
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/aria-lang/fivepseq-go/internal/kmer"
)

var mdTag = sam.NewTag("MD")

// Record adapts a sam.Record to kmer.Record.
type Record struct {
	*sam.Record
}

// QueryName returns the read name.
func (r Record) QueryName() string {
	return r.Name
}

// IsUnmapped reports whether the unmapped flag is set.
func (r Record) IsUnmapped() bool {
	return r.Flags&sam.Unmapped != 0
}

// IsReverse reports whether the read aligned to the reverse strand.
func (r Record) IsReverse() bool {
	return r.Flags&sam.Reverse != 0
}

// ClipOps returns the CIGAR with SAM operation codes.
func (r Record) ClipOps() []kmer.ClipOp {
	ops := make([]kmer.ClipOp, len(r.Cigar))
	for i, op := range r.Cigar {
		ops[i] = kmer.ClipOp{Code: int(op.Type()), Len: op.Len()}
	}
	return ops
}

// ReferenceSequence reconstructs the covered reference bases using the MD
// tag. Records without an MD tag are an error.
func (r Record) ReferenceSequence() (string, error) {
	aux := r.AuxFields.Get(mdTag)
	if aux == nil {
		return "", fmt.Errorf("record has no MD tag")
	}
	md, ok := aux.Value().(string)
	if !ok {
		return "", fmt.Errorf("MD tag has type %T, want string", aux.Value())
	}

	ref, err := ReferenceBases(r.Cigar, r.Seq.Expand(), md)
	if err != nil {
		return "", err
	}
	return string(ref), nil
}

// Reader streams records from a BAM file.
type Reader struct {
	f  *os.File
	br *bam.Reader
}

// Open opens a BAM file for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	br, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading BAM header: %w", err)
	}

	return &Reader{f: f, br: br}, nil
}

// Header returns the BAM header.
func (r *Reader) Header() *sam.Header {
	return r.br.Header()
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() (Record, error) {
	rec, err := r.br.Read()
	if err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("reading BAM record: %w", err)
	}
	return Record{Record: rec}, nil
}

// Close closes the BAM stream and the underlying file.
func (r *Reader) Close() error {
	err := r.br.Close()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}
