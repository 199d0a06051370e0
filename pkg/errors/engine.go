package errors

// EngineError is a specialized error type for failures surfaced by the public
// Set/Get/Remove/Close surface and by the request server that fronts it. It
// embeds baseError to inherit chaining and structured details, then adds the
// context that's specific to diagnosing engine-level failures: which key and
// operation were involved, and which generation the engine was looking at.
type EngineError struct {
	*baseError

	key        string
	operation  string
	generation uint64
}

// NewEngineError creates a new engine-specific error with the provided context.
func NewEngineError(err error, code ErrorCode, msg string) *EngineError {
	return &EngineError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the EngineError type.
func (ee *EngineError) WithMessage(msg string) *EngineError {
	ee.baseError.WithMessage(msg)
	return ee
}

// WithCode sets the error code while preserving the EngineError type.
func (ee *EngineError) WithCode(code ErrorCode) *EngineError {
	ee.baseError.WithCode(code)
	return ee
}

// WithDetail adds contextual information while maintaining the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

// WithKey records which key was being processed when the error occurred.
func (ee *EngineError) WithKey(key string) *EngineError {
	ee.key = key
	return ee
}

// WithOperation records which of Set/Get/Remove/Close was in flight.
func (ee *EngineError) WithOperation(operation string) *EngineError {
	ee.operation = operation
	return ee
}

// WithGeneration records which log generation the engine was examining.
func (ee *EngineError) WithGeneration(generation uint64) *EngineError {
	ee.generation = generation
	return ee
}

// Key returns the key that was being processed when the error occurred.
func (ee *EngineError) Key() string { return ee.key }

// Operation returns the name of the operation that was being performed.
func (ee *EngineError) Operation() string { return ee.operation }

// Generation returns the log generation the engine was examining.
func (ee *EngineError) Generation() uint64 { return ee.generation }

// NewKeyNotFoundError builds the error Remove returns for an absent key and
// the CLI's get command treats as its "not found" sentinel, not a failure.
func NewKeyNotFoundError(key string) *EngineError {
	return NewEngineError(nil, ErrorCodeKeyNotFound, "key not found").
		WithKey(key).
		WithOperation("Remove")
}

// NewCorruptedLogError builds the error raised when a location record's
// bytes don't decode into the command variant the caller expected.
func NewCorruptedLogError(cause error, key string, generation uint64) *EngineError {
	return NewEngineError(cause, ErrorCodeCorruptedLog, "log segment contains a malformed or unexpected command").
		WithKey(key).
		WithGeneration(generation).
		WithDetail("recovery_required", false)
}

// NewCorruptedIndexError builds the error raised when an index entry
// references a generation for which no segment file exists.
func NewCorruptedIndexError(key string, generation uint64) *EngineError {
	return NewEngineError(nil, ErrorCodeCorruptedIndex, "index entry references a generation with no backing segment").
		WithKey(key).
		WithGeneration(generation).
		WithDetail("likely_cause", "external tampering with the data directory or an internal bug")
}

// NewUnsupportedEngineError builds the error raised when Options.Engine
// names a backend this module never implements.
func NewUnsupportedEngineError(requested string) *EngineError {
	return NewEngineError(nil, ErrorCodeUnsupportedEngine, "requested engine backend is not implemented").
		WithDetail("requested", requested).
		WithDetail("supported", []string{"kvs"})
}

// NewMismatchedEngineError builds the error raised when a data directory's
// marker file disagrees with the engine currently being asked to open it.
func NewMismatchedEngineError(dataDir, marked, requested string) *EngineError {
	return NewEngineError(nil, ErrorCodeMismatchedEngine, "data directory was previously used by a different engine backend").
		WithDetail("dataDir", dataDir).
		WithDetail("marked", marked).
		WithDetail("requested", requested)
}

// NewNetworkFramingError builds the error raised when a request or response
// could not be decoded from a connection.
func NewNetworkFramingError(cause error) *EngineError {
	return NewEngineError(cause, ErrorCodeNetworkFraming, "malformed or truncated message on the wire")
}

// NewServerError wraps any error as it crosses the wire in a server
// response, carrying the remote message verbatim.
func NewServerError(message string) *EngineError {
	return NewEngineError(nil, ErrorCodeServerError, message)
}
