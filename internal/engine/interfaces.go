package engine

import (
	"context"

	"github.com/Veraticus/mailvet/internal/model"
)

// Classifier defines the contract for producing a verdict from one address.
type Classifier interface {
	Classify(address string) model.Verdict
}

// AddressSource yields addresses in order, possibly from a stream that can fail.
type AddressSource interface {
	// Next returns up to limit addresses. It returns io.EOF, possibly together with a final
	// chunk, once the source is exhausted.
	Next(ctx context.Context, limit int) ([]string, error)
	// Total is the number of addresses the source will yield, or -1 when unknown.
	Total() int
}

// ProgressFunc receives the number of addresses classified so far and the total.
type ProgressFunc func(processed, total int)
