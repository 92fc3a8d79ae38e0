package scenario

import "fmt"

// Validation error codes (E100-E199)
const (
	// General scenario errors (E100-E109)
	ErrNameEmpty        = "E100" // name is required
	ErrDescriptionEmpty = "E101" // description is required
	ErrNoStreams        = "E102" // at least one stream required
	ErrNoScript         = "E103" // script must be non-empty
	ErrNegativeCaptures = "E104" // captures must be non-negative

	// Stream errors (E110-E119)
	ErrDuplicateStream   = "E110" // duplicate stream name
	ErrInvalidRole       = "E111" // role must be driver or follower
	ErrNoDriver          = "E112" // exactly one driver required
	ErrMultipleDrivers   = "E113" // exactly one driver required
	ErrUnknownPolicy     = "E114" // policy not recognized for role
	ErrInvalidParam      = "E115" // parameter out of range for policy
	ErrNegativeCapacity  = "E116" // capacity must be non-negative

	// Script errors (E120-E129)
	ErrUnknownStream = "E120" // injection targets unknown stream
	ErrEmptyStamps   = "E121" // injection must carry stamps

	// Assertion errors (E130-E139)
	ErrUnknownAssertType = "E130" // unknown assertion type
	ErrAssertStream      = "E131" // assertion targets unknown stream
	ErrAssertField       = "E132" // required assertion field missing
	ErrUnknownState      = "E133" // unknown state name in sequence
)

// ValidationError is a semantic scenario error with a stable code.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var driverPolicies = map[string]bool{
	PolicyNext:      true,
	PolicyBatch:     true,
	PolicyChunk:     true,
	PolicyThrottled: true,
}

var followerPolicies = map[string]bool{
	PolicyAnyBefore:     true,
	PolicyBefore:        true,
	PolicyClosestBefore: true,
	PolicyCountBefore:   true,
	PolicyLatched:       true,
	PolicyMatchedStamp:  true,
	PolicyRanged:        true,
}

var knownStates = map[string]bool{
	"retry":     true,
	"primed":    true,
	"aborted":   true,
	"timed_out": true,
}

// Validate checks scenario semantics after decoding. Returns all
// errors found rather than failing fast.
func Validate(s *Scenario) []ValidationError {
	var errs []ValidationError

	if s.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required", Code: ErrNameEmpty})
	}
	if s.Description == "" {
		errs = append(errs, ValidationError{Field: "description", Message: "description is required", Code: ErrDescriptionEmpty})
	}
	if len(s.Streams) == 0 {
		errs = append(errs, ValidationError{Field: "streams", Message: "at least one stream is required", Code: ErrNoStreams})
	}
	if len(s.Script) == 0 {
		errs = append(errs, ValidationError{Field: "script", Message: "script must be non-empty", Code: ErrNoScript})
	}
	if s.Captures < 0 {
		errs = append(errs, ValidationError{Field: "captures", Message: "captures must be non-negative", Code: ErrNegativeCaptures})
	}

	names := make(map[string]bool)
	drivers := 0
	for i, st := range s.Streams {
		field := fmt.Sprintf("streams[%d]", i)
		if names[st.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate stream name %q", st.Name),
				Code:    ErrDuplicateStream,
			})
		}
		names[st.Name] = true

		switch st.Role {
		case RoleDriver:
			drivers++
			if !driverPolicies[st.Policy] {
				errs = append(errs, ValidationError{
					Field:   field + ".policy",
					Message: fmt.Sprintf("unknown driver policy %q", st.Policy),
					Code:    ErrUnknownPolicy,
				})
			}
		case RoleFollower:
			if !followerPolicies[st.Policy] {
				errs = append(errs, ValidationError{
					Field:   field + ".policy",
					Message: fmt.Sprintf("unknown follower policy %q", st.Policy),
					Code:    ErrUnknownPolicy,
				})
			}
		default:
			errs = append(errs, ValidationError{
				Field:   field + ".role",
				Message: fmt.Sprintf("role must be %q or %q, got %q", RoleDriver, RoleFollower, st.Role),
				Code:    ErrInvalidRole,
			})
		}

		errs = append(errs, validateParams(field, &st)...)

		if st.Capacity < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".capacity",
				Message: "capacity must be non-negative",
				Code:    ErrNegativeCapacity,
			})
		}
	}
	if len(s.Streams) > 0 {
		switch {
		case drivers == 0:
			errs = append(errs, ValidationError{Field: "streams", Message: "exactly one driver stream is required", Code: ErrNoDriver})
		case drivers > 1:
			errs = append(errs, ValidationError{Field: "streams", Message: fmt.Sprintf("exactly one driver stream is required, got %d", drivers), Code: ErrMultipleDrivers})
		}
	}

	for i, inj := range s.Script {
		field := fmt.Sprintf("script[%d]", i)
		if !names[inj.Stream] {
			errs = append(errs, ValidationError{
				Field:   field + ".stream",
				Message: fmt.Sprintf("unknown stream %q", inj.Stream),
				Code:    ErrUnknownStream,
			})
		}
		if len(inj.Stamps) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".stamps",
				Message: "stamps must be non-empty",
				Code:    ErrEmptyStamps,
			})
		}
	}

	for i, a := range s.Assertions {
		errs = append(errs, validateAssertion(fmt.Sprintf("assertions[%d]", i), &a, names)...)
	}

	return errs
}

func validateParams(field string, st *Stream) []ValidationError {
	var errs []ValidationError
	need := func(ok bool, name, msg string) {
		if !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".params." + name,
				Message: msg,
				Code:    ErrInvalidParam,
			})
		}
	}
	switch st.Policy {
	case PolicyBatch, PolicyChunk:
		need(st.Params.N >= 1, "n", fmt.Sprintf("%s requires n >= 1", st.Policy))
	case PolicyThrottled:
		need(st.Params.Period >= 1, "period", "throttled requires period >= 1")
	case PolicyCountBefore:
		need(st.Params.N >= 1, "n", "count_before requires n >= 1")
		need(st.Params.Delay >= 0, "delay", "delay must be non-negative")
	case PolicyAnyBefore, PolicyBefore, PolicyRanged:
		need(st.Params.Delay >= 0, "delay", "delay must be non-negative")
	case PolicyClosestBefore:
		need(st.Params.Delay >= 0, "delay", "delay must be non-negative")
		need(st.Params.Period >= 1, "period", "closest_before requires period >= 1")
	case PolicyLatched:
		need(st.Params.Lead >= 0, "lead", "lead must be non-negative")
	}
	return errs
}

func validateAssertion(field string, a *Assertion, streams map[string]bool) []ValidationError {
	var errs []ValidationError
	needStream := func() {
		if a.Stream == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".stream",
				Message: fmt.Sprintf("stream is required for %s", a.Type),
				Code:    ErrAssertField,
			})
		} else if !streams[a.Stream] {
			errs = append(errs, ValidationError{
				Field:   field + ".stream",
				Message: fmt.Sprintf("unknown stream %q", a.Stream),
				Code:    ErrAssertStream,
			})
		}
	}
	switch a.Type {
	case AssertFrameCount:
		if a.Count < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".count",
				Message: "count must be non-negative",
				Code:    ErrAssertField,
			})
		}
	case AssertFrameContains:
		needStream()
		if a.Frame < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".frame",
				Message: "frame must be non-negative",
				Code:    ErrAssertField,
			})
		}
	case AssertFrameOrder, AssertQueueDepth:
		needStream()
		if a.Type == AssertQueueDepth && a.Depth < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".depth",
				Message: "depth must be non-negative",
				Code:    ErrAssertField,
			})
		}
	case AssertStateSequence:
		if len(a.States) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".states",
				Message: "states list is required for state_sequence",
				Code:    ErrAssertField,
			})
		}
		for j, st := range a.States {
			if !knownStates[st] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.states[%d]", field, j),
					Message: fmt.Sprintf("unknown state %q", st),
					Code:    ErrUnknownState,
				})
			}
		}
	default:
		errs = append(errs, ValidationError{
			Field:   field + ".type",
			Message: fmt.Sprintf("unknown assertion type %q", a.Type),
			Code:    ErrUnknownAssertType,
		})
	}
	return errs
}
