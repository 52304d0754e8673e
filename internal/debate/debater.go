package debate

// Speaker labels used in the transcript and on screen.
const (
	LabelA = "Model A"
	LabelB = "Model B"
)

// Debater pairs a speaker label with the model that argues under it and the
// stance it was given.
type Debater struct {
	// Label is the speaker label, e.g. [LabelA].
	Label string

	// Model is the model identifier passed to the runner.
	Model string

	// Perspective is the stance statement from the perspective file.
	Perspective string
}

// perspectiveLabel is the transcript label of the debater's stance.
func (d Debater) perspectiveLabel() string {
	return d.Label + " Perspective"
}
