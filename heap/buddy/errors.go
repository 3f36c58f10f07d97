package buddy

import "errors"

// ErrBadGeometry indicates a heap region that cannot be managed: the size is
// not a power of two, too small for a link in the minimum block, longer than
// the backing memory, or the base is not aligned to format.MinHeapAlign.
var ErrBadGeometry = errors.New("buddy: bad heap geometry")
