package trace

const (
	// CommentPrefix starts a comment line.
	CommentPrefix = "#"

	// KeywordAlloc introduces "alloc <id> <size> [align]".
	KeywordAlloc = "alloc"

	// KeywordFree introduces "free <id>".
	KeywordFree = "free"

	// DefaultAlign is used when an alloc line omits the alignment.
	DefaultAlign = 8

	// ScannerMaxLineSize bounds a single trace line.
	ScannerMaxLineSize = 64 * 1024
)
