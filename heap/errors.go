package heap

import "errors"

var (
	// ErrAlreadyRegistered is returned by a second call to Register.
	ErrAlreadyRegistered = errors.New("heap: allocator already registered")

	// ErrNotRegistered is returned by the package-level functions before Register.
	ErrNotRegistered = errors.New("heap: no allocator registered")

	// ErrLiveAllocations is returned by Reconfigure while memory is handed out.
	ErrLiveAllocations = errors.New("heap: live allocations outstanding")

	// ErrNotReconfigurable is returned by Reconfigure for the bump strategy.
	ErrNotReconfigurable = errors.New("heap: strategy cannot be reconfigured")

	// ErrUnknownStrategy is returned by ParseStrategy.
	ErrUnknownStrategy = errors.New("heap: unknown strategy")

	// ErrBadConfig wraps configuration validation failures.
	ErrBadConfig = errors.New("heap: invalid config")

	// ErrClosed is returned by operations on a closed Heap.
	ErrClosed = errors.New("heap: closed")
)
