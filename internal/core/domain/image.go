package domain

// AspectRatio is an output frame supported by the generation model.
type AspectRatio string

const (
	AspectSquare         AspectRatio = "1:1"
	AspectPortrait       AspectRatio = "3:4"
	AspectLandscape      AspectRatio = "4:3"
	AspectMobilePortrait AspectRatio = "9:16"
	AspectWidescreen     AspectRatio = "16:9"
)

// Valid reports whether r is one of the supported ratios.
func (r AspectRatio) Valid() bool {
	switch r {
	case AspectSquare, AspectPortrait, AspectLandscape, AspectMobilePortrait, AspectWidescreen:
		return true
	}
	return false
}

// Image is raw image content plus its media type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Feature names a paid studio action.
type Feature string

const (
	FeatureGenerate Feature = "generate"
	FeatureEdit     Feature = "edit"
	FeatureAnalyze  Feature = "analyze"
)

// OperationState is the lifecycle of a single paid studio action.
type OperationState string

const (
	OpIdle           OperationState = "idle"
	OpBlocked        OperationState = "blocked"
	OpInFlight       OperationState = "in_flight"
	OpSettledSuccess OperationState = "settled_success"
	OpSettledFailure OperationState = "settled_failure"
)
