package bamio

import (
	"bytes"
	"fmt"

	"github.com/biogo/hts/sam"
)

// ReferenceBases reconstructs the reference bases covered by an alignment
// from the read bases, the CIGAR and the MD tag. Aligned read bases are
// copied, MD mismatches are replaced by the reference base and MD deletions
// are inserted; insertions, soft clips and skips contribute nothing.
//
// The result runs left to right on the forward reference strand.
func ReferenceBases(cigar sam.Cigar, seq []byte, md string) ([]byte, error) {
	aligned, err := alignedBases(cigar, seq)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(aligned))
	qi := 0
	for i := 0; i < len(md); {
		c := md[i]
		switch {
		case c >= '0' && c <= '9':
			n := 0
			for i < len(md) && md[i] >= '0' && md[i] <= '9' {
				n = n*10 + int(md[i]-'0')
				i++
			}
			if qi+n > len(aligned) {
				return nil, fmt.Errorf("MD %q matches %d bases past the %d aligned bases", md, qi+n-len(aligned), len(aligned))
			}
			out = append(out, aligned[qi:qi+n]...)
			qi += n
		case c == '^':
			i++
			start := i
			for i < len(md) && isBase(md[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("MD %q has an empty deletion", md)
			}
			out = append(out, md[start:i]...)
		case isBase(c):
			if qi >= len(aligned) {
				return nil, fmt.Errorf("MD %q mismatches past the %d aligned bases", md, len(aligned))
			}
			out = append(out, c)
			qi++
			i++
		default:
			return nil, fmt.Errorf("MD %q: unexpected character %q", md, c)
		}
	}

	if qi != len(aligned) {
		return nil, fmt.Errorf("MD %q covers %d of %d aligned bases", md, qi, len(aligned))
	}
	return bytes.ToUpper(out), nil
}

// alignedBases returns the read bases consumed by M, = and X operations.
func alignedBases(cigar sam.Cigar, seq []byte) ([]byte, error) {
	out := make([]byte, 0, len(seq))
	qi := 0
	for _, op := range cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if qi+n > len(seq) {
				return nil, fmt.Errorf("CIGAR %v consumes more than %d read bases", cigar, len(seq))
			}
			out = append(out, seq[qi:qi+n]...)
			qi += n
		case sam.CigarInsertion, sam.CigarSoftClipped:
			qi += n
		}
	}
	return out, nil
}

func isBase(c byte) bool {
	switch c | 0x20 {
	case 'a', 'c', 'g', 't', 'n':
		return true
	}
	return false
}
