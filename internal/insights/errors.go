package insights

// Stage tells which step of an orchestration failed.
type Stage string

const (
	StageMetrics    Stage = "metrics"
	StagePrompt     Stage = "prompt"
	StageCompletion Stage = "completion"
	StageDecode     Stage = "decode"
	StageValidation Stage = "validation"
	// StageUpstream marks chat faults caused by the embedded analysis or
	// the final completion call.
	StageUpstream Stage = "upstream"
)

type AnalysisError struct {
	Stage Stage
	Msg   string
	Err   error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func fail(stage Stage, msg string, err error) *AnalysisError {
	return &AnalysisError{Stage: stage, Msg: msg, Err: err}
}
