package model

// Result classifies how an action finished.
type Result string

const (
	ResultSuccess       Result = "SUCCESS"
	ResultExecFailed    Result = "EXEC_FAILED"
	ResultExecTimeout   Result = "EXEC_TIMEOUT"
	ResultCompileFailed Result = "COMPILE_FAILED"
	ResultUnsupported   Result = "UNSUPPORTED"
	ResultError         Result = "ERROR"
)

// ResultValue is the output of the expectation evaluator: what a Result
// means once compared against an Expectation.
type ResultValue string

const (
	ResultValueOK     ResultValue = "OK"
	ResultValueFail   ResultValue = "FAIL"
	ResultValueIgnore ResultValue = "IGNORE"
)
