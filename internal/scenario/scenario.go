package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a synchronization scenario: the streams to build,
// the injections to replay, and the assertions over the result.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description" json:"description"`

	// Streams lists the group members. Exactly one stream must have the
	// driver role.
	Streams []Stream `yaml:"streams" json:"streams"`

	// Script lists the injections to replay, in order.
	Script []Injection `yaml:"script" json:"script"`

	// Captures is the number of capture attempts to run after the
	// script has been injected.
	Captures int `yaml:"captures" json:"captures"`

	// Assertions validate the captured frames and final queue state.
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// Stream configures one group member.
type Stream struct {
	// Name uniquely identifies the stream within the scenario.
	Name string `yaml:"name" json:"name"`

	// Role is "driver" or "follower".
	Role string `yaml:"role" json:"role"`

	// Policy names the capture policy, e.g. "batch" or "closest_before".
	Policy string `yaml:"policy" json:"policy"`

	// Params carries the policy's parameters. Recognized keys: n,
	// period, delay, lead.
	Params Params `yaml:"params,omitempty" json:"params,omitempty"`

	// Capacity bounds the stream's queue. 0 means unbounded.
	Capacity int `yaml:"capacity,omitempty" json:"capacity,omitempty"`
}

// Params are the numeric knobs a policy takes. Unused knobs stay zero.
type Params struct {
	N      int   `yaml:"n,omitempty" json:"n,omitempty"`
	Period int64 `yaml:"period,omitempty" json:"period,omitempty"`
	Delay  int64 `yaml:"delay,omitempty" json:"delay,omitempty"`
	Lead   int64 `yaml:"lead,omitempty" json:"lead,omitempty"`
}

// Injection appends stamped elements to one stream's queue.
type Injection struct {
	// Stream names the receiving stream.
	Stream string `yaml:"stream" json:"stream"`

	// Stamps lists the stamps to inject, in arrival order.
	Stamps []int64 `yaml:"stamps" json:"stamps"`
}

// Assertion validates captured frames or final queue state.
type Assertion struct {
	// Type specifies the assertion:
	//   - "frame_count": exactly Count frames were captured
	//   - "frame_contains": frame Frame holds exactly Stamps for Stream
	//   - "frame_order": Stream's captured stamps never decrease
	//   - "queue_depth": Stream's queue holds Depth elements at the end
	//   - "state_sequence": capture attempts resolved to States in order
	Type string `yaml:"type" json:"type"`

	// Frame indexes a captured frame (frame_contains).
	Frame int `yaml:"frame,omitempty" json:"frame,omitempty"`

	// Stream names the asserted stream (frame_contains, frame_order,
	// queue_depth).
	Stream string `yaml:"stream,omitempty" json:"stream,omitempty"`

	// Stamps are the expected stamps (frame_contains).
	Stamps []int64 `yaml:"stamps,omitempty" json:"stamps,omitempty"`

	// Count is the expected number of primed frames (frame_count).
	Count int `yaml:"count,omitempty" json:"count,omitempty"`

	// Depth is the expected residual queue size (queue_depth).
	Depth int `yaml:"depth,omitempty" json:"depth,omitempty"`

	// States are the expected capture outcomes in order
	// (state_sequence), e.g. ["primed", "retry", "aborted"].
	States []string `yaml:"states,omitempty" json:"states,omitempty"`
}

// Assertion type constants.
const (
	AssertFrameCount    = "frame_count"
	AssertFrameContains = "frame_contains"
	AssertFrameOrder    = "frame_order"
	AssertQueueDepth    = "queue_depth"
	AssertStateSequence = "state_sequence"
)

// Stream roles.
const (
	RoleDriver   = "driver"
	RoleFollower = "follower"
)

// Driver policy names.
const (
	PolicyNext      = "next"
	PolicyBatch     = "batch"
	PolicyChunk     = "chunk"
	PolicyThrottled = "throttled"
)

// Follower policy names.
const (
	PolicyAnyBefore     = "any_before"
	PolicyBefore        = "before"
	PolicyClosestBefore = "closest_before"
	PolicyCountBefore   = "count_before"
	PolicyLatched       = "latched"
	PolicyMatchedStamp  = "matched_stamp"
	PolicyRanged        = "ranged"
)

// Load reads, decodes, and validates a scenario file. Unknown YAML
// fields are rejected so typos surface as load errors rather than
// silently ignored configuration.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := CheckSchema(&s); err != nil {
		return nil, err
	}
	if errs := Validate(&s); len(errs) > 0 {
		return nil, errs[0]
	}
	return &s, nil
}
