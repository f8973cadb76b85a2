package adapter

import (
	"context"
	"fmt"

	"gooze.dev/pkg/weave/internal/ir"
)

// IRFileAdapter converts between IR program files and the in-memory IR so
// the domain layer never deals with the on-disk encoding.
type IRFileAdapter interface {
	// Parse decodes the IR program stored in src. filename is only used in
	// error messages.
	Parse(ctx context.Context, filename string, src []byte) (*ir.Program, error)

	// Format encodes p in the IR file format.
	Format(ctx context.Context, p *ir.Program) ([]byte, error)

	// Print renders p as readable text, one statement per line.
	Print(p *ir.Program) string
}

// LocalIRFileAdapter implements IRFileAdapter with the YAML codec.
type LocalIRFileAdapter struct{}

// NewLocalIRFileAdapter constructs a LocalIRFileAdapter.
func NewLocalIRFileAdapter() *LocalIRFileAdapter {
	return &LocalIRFileAdapter{}
}

// Parse decodes an IR program.
func (a *LocalIRFileAdapter) Parse(ctx context.Context, filename string, src []byte) (*ir.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := ir.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	return p, nil
}

// Format encodes an IR program.
func (a *LocalIRFileAdapter) Format(ctx context.Context, p *ir.Program) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return ir.Encode(p)
}

// Print renders an IR program as text.
func (a *LocalIRFileAdapter) Print(p *ir.Program) string {
	return ir.FormatProgram(p)
}
