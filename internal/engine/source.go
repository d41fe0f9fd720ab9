package engine

import (
	"context"
	"io"
)

type sliceSource struct {
	addresses []string
	pos       int
}

// SliceSource returns an AddressSource over an in-memory slice.
func SliceSource(addresses []string) AddressSource {
	return &sliceSource{addresses: addresses}
}

func (s *sliceSource) Next(_ context.Context, limit int) ([]string, error) {
	if s.pos >= len(s.addresses) {
		return nil, io.EOF
	}

	end := min(s.pos+limit, len(s.addresses))
	chunk := s.addresses[s.pos:end]
	s.pos = end

	if s.pos >= len(s.addresses) {
		return chunk, io.EOF
	}
	return chunk, nil
}

func (s *sliceSource) Total() int {
	return len(s.addresses)
}
