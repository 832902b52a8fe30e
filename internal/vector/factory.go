package vector

import "fmt"

// IndexType names a vector backend.
type IndexType string

const (
	// IndexTypeMemory is the in-process linear-scan index.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeChromem is the chromem-go backed index.
	IndexTypeChromem IndexType = "chromem"
)

// NewIndex creates an index of the given type ("memory" when empty).
func NewIndex(indexType string, dimensions int, opts ...Option) (Index, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		idx, err := NewMemoryIndex(dimensions, opts...)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case IndexTypeChromem:
		idx, err := NewChromemIndex(dimensions, opts...)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, chromem)", indexType)
	}
}
