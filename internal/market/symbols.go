package market

import (
	"errors"
	"fmt"
	"strings"
)

// CodeWidth is the fixed width of a KRX ticker code.
const CodeWidth = 6

var (
	ErrNotFound  = errors.New("company not found")
	ErrAmbiguous = errors.New("company name is ambiguous")
)

type Symbol struct {
	Company string
	Code    string
}

// SymbolTable is the company directory in source order. It is never mutated
// after construction.
type SymbolTable struct {
	symbols []Symbol
}

func NewSymbolTable(symbols []Symbol) SymbolTable {
	cp := make([]Symbol, len(symbols))
	copy(cp, symbols)
	return SymbolTable{symbols: cp}
}

func (t SymbolTable) Len() int { return len(t.symbols) }

// Symbols returns a copy of the entries.
func (t SymbolTable) Symbols() []Symbol {
	cp := make([]Symbol, len(t.symbols))
	copy(cp, t.symbols)
	return cp
}

// Lookup returns the code for an exact company name. Repeated rows with the
// same code are accepted; rows with different codes are ErrAmbiguous.
func (t SymbolTable) Lookup(company string) (string, error) {
	var code string
	for _, s := range t.symbols {
		if s.Company != company {
			continue
		}
		c := strings.TrimSpace(s.Code)
		if code != "" && code != c {
			return "", fmt.Errorf("%w: %q maps to %s and %s", ErrAmbiguous, company, code, c)
		}
		code = c
	}
	if code == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, company)
	}
	return code, nil
}

// PadCode trims a code and left-pads it with zeros to CodeWidth. Codes that
// are not all digits are returned trimmed but otherwise untouched.
func PadCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) >= CodeWidth {
		return code
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	return strings.Repeat("0", CodeWidth-len(code)) + code
}
