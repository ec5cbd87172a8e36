package apperror

// Registry creates a not-registered error for a missing chain, token
// or DEX lookup.
func Registry(context string) *AppError {
	return NotFound(CodeNotRegistered, context)
}

// Rpc wraps a failed upstream RPC call.
func Rpc(context string, cause error) *AppError {
	return External(CodeRPCError, context, cause)
}

// Unpriceable marks a candidate that no quoter could price.
func Unpriceable(context string) *AppError {
	return New(CodeUnpriceable, WithContext(context), WithStatusCode(422))
}

// InsufficientLiquidity marks a candidate whose safe loan size falls below
// the minimum loan floor, or whose flash source has no vault data.
func InsufficientLiquidity(context string) *AppError {
	return New(CodeInsufficientLiquidity, WithContext(context), WithStatusCode(422))
}

// NotProfitable marks a candidate below the configured profit floor.
func NotProfitable(context string) *AppError {
	return New(CodeNotProfitable, WithContext(context), WithStatusCode(422))
}

// CalldataTooLarge marks a built transaction whose calldata exceeds the configured limit.
func CalldataTooLarge(context string) *AppError {
	return Validation(CodeCalldataTooBig, context)
}

// SimulationReverted wraps a failed pre-submission eth_call.
func SimulationReverted(context string, cause error) *AppError {
	return New(CodeSimulationReverted, WithContext(context), WithCause(cause), WithStatusCode(422))
}

// ExecutionBlocked marks a signal rejected by a chain or safety gate.
func ExecutionBlocked(context string) *AppError {
	return New(CodeExecutionBlocked, WithContext(context), WithStatusCode(423))
}

// CircuitBreakerOpen marks a pipeline call rejected by the execution breaker.
func CircuitBreakerOpen(context string) *AppError {
	return New(CodeCircuitBreakerOpen, WithContext(context), WithStatusCode(503))
}

// NonceCollision marks a transaction build that raced another in-flight nonce.
func NonceCollision(context string, cause error) *AppError {
	return New(CodeNonceCollision, WithContext(context), WithCause(cause), WithStatusCode(409))
}

// RelaySubmissionFailed wraps a bundle submission rejected by the relay.
func RelaySubmissionFailed(context string, cause error) *AppError {
	return External(CodeRelaySubmissionError, context, cause)
}

// Cancelled marks an operation aborted by context cancellation.
func Cancelled(context string) *AppError {
	return New(CodeCancelled, WithContext(context), WithStatusCode(499))
}

// InvalidSignal marks a trade signal that failed Validate().
func InvalidSignal(context string) *AppError {
	return Validation(CodeInvalidSignal, context)
}
