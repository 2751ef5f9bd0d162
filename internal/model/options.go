package model

// Variant count bounds for the variants-and-judge synthesis path.
const (
	MinVariants = 1
	MaxVariants = 5
)

// PipelineOptions selects the synthesis and critique strategies for a
// run. The zero value preserves the single-pass path.
type PipelineOptions struct {
	DeepCritique     bool     `json:"deepCritique"`
	Variants         int      `json:"variants"`
	Trace            bool     `json:"trace"`
	SynthSpecialists []string `json:"synthSpecialists,omitempty"`
	AllowAssumptions bool     `json:"allowAssumptions"`
}

// VariantsClamped returns the variant count clamped to [MinVariants, MaxVariants].
func (o PipelineOptions) VariantsClamped() int {
	if o.Variants < MinVariants {
		return MinVariants
	}
	if o.Variants > MaxVariants {
		return MaxVariants
	}
	return o.Variants
}

// UseSpecialists reports whether hybrid specialist synthesis was requested.
func (o PipelineOptions) UseSpecialists() bool {
	return len(o.SynthSpecialists) > 0
}
