package lockstep

// CaptureRange is the [Lower, Upper] stamp window produced by the driver
// and consumed by every follower in the same capture attempt.
//
// Lower <= Upper always holds for ranges produced by the driver policies.
type CaptureRange[S any] struct {
	Lower S
	Upper S
}
