package harness

import (
	"fmt"

	"github.com/lockstep-io/lockstep"
	"github.com/lockstep-io/lockstep/driver"
	"github.com/lockstep-io/lockstep/follower"
	"github.com/lockstep-io/lockstep/internal/scenario"
)

// Element is the dispatch type scenarios run with: an int64 stamp and
// a string payload identifying the injection.
type Element = lockstep.Sample[int64, string]

var stamps = lockstep.Int64Stamps{}

// rig is an assembled group plus the handles the runner needs to
// inject and inspect per stream.
type rig struct {
	group     *lockstep.Group[int64]
	driver    *streamRig
	followers []*streamRig
}

type streamRig struct {
	name     string
	driver   *lockstep.DriverCaptor[int64, Element]
	follower *lockstep.FollowerCaptor[int64, Element]
	sink     *lockstep.SliceSink[Element]
}

func (r *streamRig) inject(d Element) {
	if r.driver != nil {
		r.driver.Inject(d)
		return
	}
	r.follower.Inject(d)
}

func (r *streamRig) depth() int {
	if r.driver != nil {
		return r.driver.Len()
	}
	return r.follower.Len()
}

func (r *rig) streams() []*streamRig {
	out := make([]*streamRig, 0, 1+len(r.followers))
	out = append(out, r.driver)
	out = append(out, r.followers...)
	return out
}

func (r *rig) stream(name string) (*streamRig, bool) {
	for _, sr := range r.streams() {
		if sr.name == name {
			return sr, true
		}
	}
	return nil, false
}

// build assembles a capture group from the scenario's stream table.
// newLock returns the lock policy for each member; the sequential
// runner passes nil locks, the concurrent runner passes Mutexed.
func build(s *scenario.Scenario, newLock func() lockstep.LockPolicy) (*rig, error) {
	r := &rig{}
	var followerMembers []lockstep.FollowerMember[int64]

	for _, st := range s.Streams {
		sink := &lockstep.SliceSink[Element]{}
		var opts []lockstep.DequeOption
		if st.Capacity > 0 {
			opts = append(opts, lockstep.WithCapacity(st.Capacity))
		}
		q := lockstep.NewDeque[int64, int64, Element](stamps, opts...)

		switch st.Role {
		case scenario.RoleDriver:
			p, err := driverPolicy(&st)
			if err != nil {
				return nil, err
			}
			c := lockstep.NewDriverCaptor(newLock(), q, p)
			r.driver = &streamRig{name: st.Name, driver: c, sink: sink}
		case scenario.RoleFollower:
			p, err := followerPolicy(&st)
			if err != nil {
				return nil, err
			}
			c := lockstep.NewFollowerCaptor(newLock(), q, p)
			r.followers = append(r.followers, &streamRig{name: st.Name, follower: c, sink: sink})
			followerMembers = append(followerMembers, lockstep.Follow(c, sink))
		}
	}
	if r.driver == nil {
		return nil, fmt.Errorf("build group: no driver stream")
	}

	r.group = lockstep.NewGroup(
		lockstep.Drive(r.driver.driver, r.driver.sink),
		followerMembers...,
	)
	return r, nil
}

func driverPolicy(st *scenario.Stream) (lockstep.DriverPolicy[int64, Element], error) {
	switch st.Policy {
	case scenario.PolicyNext:
		return driver.NewNext[int64, Element](), nil
	case scenario.PolicyBatch:
		return driver.NewBatch[int64, Element](st.Params.N), nil
	case scenario.PolicyChunk:
		return driver.NewChunk[int64, Element](st.Params.N), nil
	case scenario.PolicyThrottled:
		return driver.NewThrottled[int64, int64, Element](stamps, st.Params.Period), nil
	default:
		return nil, fmt.Errorf("build group: unknown driver policy %q", st.Policy)
	}
}

func followerPolicy(st *scenario.Stream) (lockstep.FollowerPolicy[int64, Element], error) {
	switch st.Policy {
	case scenario.PolicyAnyBefore:
		return follower.NewAnyBefore[int64, int64, Element](stamps, st.Params.Delay), nil
	case scenario.PolicyBefore:
		return follower.NewBefore[int64, int64, Element](stamps, st.Params.Delay), nil
	case scenario.PolicyClosestBefore:
		return follower.NewClosestBefore[int64, int64, Element](stamps, st.Params.Delay, st.Params.Period), nil
	case scenario.PolicyCountBefore:
		return follower.NewCountBefore[int64, int64, Element](stamps, st.Params.N, st.Params.Delay), nil
	case scenario.PolicyLatched:
		return follower.NewLatched[int64, int64, Element](stamps, st.Params.Lead), nil
	case scenario.PolicyMatchedStamp:
		return follower.NewMatchedStamp[int64, int64, Element](stamps), nil
	case scenario.PolicyRanged:
		return follower.NewRanged[int64, int64, Element](stamps, st.Params.Delay), nil
	default:
		return nil, fmt.Errorf("build group: unknown follower policy %q", st.Policy)
	}
}
