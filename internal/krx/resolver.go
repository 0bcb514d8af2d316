package krx

import (
	"context"
	"fmt"

	"github.com/camuig/krx-stock-report/internal/market"
)

// DirectorySource is the part of Client the resolver needs.
type DirectorySource interface {
	FetchDirectory(ctx context.Context) (market.SymbolTable, error)
}

// Resolver maps a company display name to its ticker code. Every call fetches
// the directory afresh.
type Resolver struct {
	source DirectorySource
}

func NewResolver(source DirectorySource) *Resolver {
	return &Resolver{source: source}
}

func (r *Resolver) Resolve(ctx context.Context, company string) (string, error) {
	table, err := r.source.FetchDirectory(ctx)
	if err != nil {
		return "", err
	}
	code, err := table.Lookup(company)
	if err != nil {
		return "", fmt.Errorf("resolve ticker code: %w", err)
	}
	return code, nil
}
