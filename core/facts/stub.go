//go:build !cgo

package facts

import (
	"context"

	"github.com/huangsam/ecoscore/schema"
)

// Extract is a stub for non-CGO builds.
func Extract(_ context.Context, _ []byte) (schema.StructuralFacts, error) {
	return schema.StructuralFacts{}, ErrNoCGO
}
