package results

// OperationResult carries the outcome of a service operation: either a
// domain success or a domain failure. Infrastructure errors travel separately
// as a Go error.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult builds a successful OperationResult.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult builds a failed OperationResult.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether the result holds a success payload.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the result holds a failure payload.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}
