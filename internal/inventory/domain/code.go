package domain

import "fmt"

// Sequence namespaces that are not part layers.
const (
	NamespaceAssembly    = "ASM"
	NamespaceToolingList = "TL"
)

// CodeFormat controls how issued sequence numbers are rendered.
type CodeFormat struct {
	Width     int
	Separator string
}

// DefaultCodeFormat renders codes like INSERT_00000001.
func DefaultCodeFormat() CodeFormat {
	return CodeFormat{Width: 8, Separator: "_"}
}

// Format renders namespace and number as a public code.
func (f CodeFormat) Format(namespace string, n int64) string {
	return fmt.Sprintf("%s%s%0*d", namespace, f.Separator, f.Width, n)
}
