package judge

// Execution service status identifiers. Anything above statusProcessing is
// terminal; 1 and 2 mean the submission is still queued or running.
const (
	statusQueued     = 1
	statusProcessing = 2
)

// Category classifies a terminal verdict. Exactly one category applies.
type Category string

const (
	// CategoryRuntimeError means the program started but wrote to stderr.
	CategoryRuntimeError Category = "runtime_error"
	// CategoryCompileError means the program never started.
	CategoryCompileError Category = "compile_error"
	// CategorySuccess means the run finished cleanly; stdout may be empty.
	CategorySuccess Category = "success"
)

// VerdictStatus mirrors the execution service's nested status object.
type VerdictStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Verdict is the polled result of one submission.
type Verdict struct {
	Token         string        `json:"token"`
	Status        VerdictStatus `json:"status"`
	Stdout        string        `json:"stdout"`
	Stderr        string        `json:"stderr"`
	CompileOutput string        `json:"compile_output"`
}

// Terminal reports whether the verdict has stabilized.
func (v Verdict) Terminal() bool {
	return v.Status.ID > statusProcessing
}

// Classify buckets the verdict. Runtime errors outrank compile errors, which
// outrank success; the priority order matches what the candidate sees.
func (v Verdict) Classify() Category {
	switch {
	case v.Stderr != "":
		return CategoryRuntimeError
	case v.CompileOutput != "":
		return CategoryCompileError
	default:
		return CategorySuccess
	}
}
