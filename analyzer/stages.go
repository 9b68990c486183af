package analyzer

// Input is what every stage's user message is built from.
type Input struct {
	Context string // serialized repository
	Prompt  string // the change request
}

// Stage is one pass of the pipeline: a system instruction and the user
// message appended to the history before the call.
type Stage struct {
	Name    string
	System  string
	Message func(in Input) string
}

// Stage names of the default pipeline.
const (
	StageAnalyze = "analyze"
	StageDiff    = "diff"
	StageVerify  = "verify"
)

// DefaultStages returns the three-pass pipeline: summarize the code base and
// plan minimal changes, generate a fenced diff, then verify and re-emit it.
func DefaultStages() []Stage {
	return []Stage{
		{
			Name:   StageAnalyze,
			System: analysisSystemPrompt,
			Message: func(in Input) string {
				return analysisRequest(in.Context, in.Prompt)
			},
		},
		{
			Name:   StageDiff,
			System: diffGenerationSystemPrompt,
			Message: func(in Input) string {
				return diffRequest(in.Prompt)
			},
		},
		{
			Name:   StageVerify,
			System: diffGenerationSystemPrompt,
			Message: func(in Input) string {
				return verificationRequest(in.Prompt)
			},
		},
	}
}
