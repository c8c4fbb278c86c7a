package objmap

import (
	"fmt"

	"github.com/roach88/mayalias/internal/ir"
)

// PrintObjectID renders an object id in the human-readable form diagnostics
// and fixtures use:
//
//	any                  the special ANY object
//	special(<n>)         any other special id
//	%p, @g, @f::%0       value ids, via ir.UniqueName
//	%p::aff(1)           the 1st affiliate of the site %p
//	invalid(<n>)         ids outside the allocated range
func (m *Map) PrintObjectID(id uint32) string {
	if id == Any {
		return "any"
	}
	if id < NumSpecial {
		return fmt.Sprintf("special(%d)", id)
	}
	if !m.IsValidObjectID(id) {
		return fmt.Sprintf("invalid(%d)", id)
	}

	if value, ok := m.ValueOfObjectID(id); ok {
		return ir.UniqueName(value)
	}

	main, distance, ok := m.MainValueOfAffiliatedObjectID(id)
	if !ok {
		return fmt.Sprintf("invalid(%d)", id)
	}
	return fmt.Sprintf("%s::aff(%d)", ir.UniqueName(main), distance)
}
