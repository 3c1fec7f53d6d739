// Copyright 2026 The Ocsface Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"sync"

	"github.com/ocsface/ocsface/lib/tracking"
	"github.com/ocsface/ocsface/lib/xr"
	"github.com/ocsface/ocsface/lib/xrerror"
)

// SpaceRecord is the registration of a space. Reference spaces have a
// zero Action and a null SubactionPath.
type SpaceRecord struct {
	Space         xr.Space
	Session       xr.Session
	Owner         *Instance
	Action        xr.Action
	SubactionPath xr.Path
}

type actionRecord struct {
	owner     *Instance
	actionSet xr.ActionSet
}

type facialRecord struct {
	owner   *Instance
	session xr.Session
	tracker *tracking.Facial
}

// Counts is the number of registered handles of each kind.
type Counts struct {
	Sessions       int
	ActionSets     int
	Actions        int
	Spaces         int
	FacialTrackers int
}

// Registry maps the handles created through the layer to the instance
// that owns them. One mutex guards every map; it is never held while
// calling the next layer or closing a tracker.
type Registry struct {
	mu         sync.Mutex
	sessions   map[xr.Session]*Instance
	actionSets map[xr.ActionSet]*Instance
	actions    map[xr.Action]actionRecord
	spaces     map[xr.Space]SpaceRecord
	facial     map[xr.FacialTracker]facialRecord
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:   make(map[xr.Session]*Instance),
		actionSets: make(map[xr.ActionSet]*Instance),
		actions:    make(map[xr.Action]actionRecord),
		spaces:     make(map[xr.Space]SpaceRecord),
		facial:     make(map[xr.FacialTracker]facialRecord),
	}
}

func notRegistered(kind string, handle uint64) error {
	return xrerror.Newf(xrerror.InvalidParam, xr.ErrorHandleInvalid, "%s %d is not registered", kind, handle)
}

func alreadyRegistered(kind string, handle uint64) error {
	return xrerror.Newf(xrerror.Assertion, xr.ErrorRuntimeFailure, "%s %d is already registered", kind, handle)
}

// AddSession registers session as owned by owner.
func (r *Registry) AddSession(session xr.Session, owner *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session]; exists {
		return alreadyRegistered("session", uint64(session))
	}
	r.sessions[session] = owner
	return nil
}

// SessionOwner returns the instance owning session.
func (r *Registry) SessionOwner(session xr.Session) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.sessions[session]
	if !ok {
		return nil, notRegistered("session", uint64(session))
	}
	return owner, nil
}

// RemoveSession unregisters session together with its spaces and
// facial trackers. It returns the owner and the trackers removed,
// which the caller closes.
func (r *Registry) RemoveSession(session xr.Session) (*Instance, []*tracking.Facial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.sessions[session]
	if !ok {
		return nil, nil, notRegistered("session", uint64(session))
	}
	delete(r.sessions, session)

	for space, record := range r.spaces {
		if record.Session == session {
			delete(r.spaces, space)
		}
	}
	var trackers []*tracking.Facial
	for handle, record := range r.facial {
		if record.session == session {
			trackers = append(trackers, record.tracker)
			delete(r.facial, handle)
		}
	}
	return owner, trackers, nil
}

// AddActionSet registers actionSet as owned by owner.
func (r *Registry) AddActionSet(actionSet xr.ActionSet, owner *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actionSets[actionSet]; exists {
		return alreadyRegistered("action set", uint64(actionSet))
	}
	r.actionSets[actionSet] = owner
	return nil
}

// ActionSetOwner returns the instance owning actionSet.
func (r *Registry) ActionSetOwner(actionSet xr.ActionSet) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.actionSets[actionSet]
	if !ok {
		return nil, notRegistered("action set", uint64(actionSet))
	}
	return owner, nil
}

// RemoveActionSet unregisters actionSet and the actions created in it.
func (r *Registry) RemoveActionSet(actionSet xr.ActionSet) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.actionSets[actionSet]
	if !ok {
		return nil, notRegistered("action set", uint64(actionSet))
	}
	delete(r.actionSets, actionSet)
	for action, record := range r.actions {
		if record.actionSet == actionSet {
			delete(r.actions, action)
		}
	}
	return owner, nil
}

// AddAction registers action, created in actionSet, as owned by owner.
func (r *Registry) AddAction(action xr.Action, actionSet xr.ActionSet, owner *Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[action]; exists {
		return alreadyRegistered("action", uint64(action))
	}
	r.actions[action] = actionRecord{owner: owner, actionSet: actionSet}
	return nil
}

// ActionOwner returns the instance owning action.
func (r *Registry) ActionOwner(action xr.Action) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.actions[action]
	if !ok {
		return nil, notRegistered("action", uint64(action))
	}
	return record.owner, nil
}

// RemoveAction unregisters action.
func (r *Registry) RemoveAction(action xr.Action) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.actions[action]
	if !ok {
		return nil, notRegistered("action", uint64(action))
	}
	delete(r.actions, action)
	return record.owner, nil
}

// AddSpace registers a space.
func (r *Registry) AddSpace(record SpaceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.spaces[record.Space]; exists {
		return alreadyRegistered("space", uint64(record.Space))
	}
	r.spaces[record.Space] = record
	return nil
}

// Space returns the registration of space.
func (r *Registry) Space(space xr.Space) (SpaceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.spaces[space]
	if !ok {
		return SpaceRecord{}, notRegistered("space", uint64(space))
	}
	return record, nil
}

// RemoveSpace unregisters space and returns its registration.
func (r *Registry) RemoveSpace(space xr.Space) (SpaceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.spaces[space]
	if !ok {
		return SpaceRecord{}, notRegistered("space", uint64(space))
	}
	delete(r.spaces, space)
	return record, nil
}

func (r *Registry) addFacial(handle xr.FacialTracker, record facialRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.facial[handle]; exists {
		return alreadyRegistered("facial tracker", uint64(handle))
	}
	r.facial[handle] = record
	return nil
}

func (r *Registry) facialTracker(handle xr.FacialTracker) (facialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.facial[handle]
	if !ok {
		return facialRecord{}, notRegistered("facial tracker", uint64(handle))
	}
	return record, nil
}

func (r *Registry) removeFacial(handle xr.FacialTracker) (facialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.facial[handle]
	if !ok {
		return facialRecord{}, notRegistered("facial tracker", uint64(handle))
	}
	delete(r.facial, handle)
	return record, nil
}

// Purge unregisters every handle owned by owner and returns the facial
// trackers removed, which the caller closes.
func (r *Registry) Purge(owner *Instance) []*tracking.Facial {
	r.mu.Lock()
	defer r.mu.Unlock()
	for session, instance := range r.sessions {
		if instance == owner {
			delete(r.sessions, session)
		}
	}
	for actionSet, instance := range r.actionSets {
		if instance == owner {
			delete(r.actionSets, actionSet)
		}
	}
	for action, record := range r.actions {
		if record.owner == owner {
			delete(r.actions, action)
		}
	}
	for space, record := range r.spaces {
		if record.Owner == owner {
			delete(r.spaces, space)
		}
	}
	var trackers []*tracking.Facial
	for handle, record := range r.facial {
		if record.owner == owner {
			trackers = append(trackers, record.tracker)
			delete(r.facial, handle)
		}
	}
	return trackers
}

// Counts returns the number of registered handles of each kind.
func (r *Registry) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counts{
		Sessions:       len(r.sessions),
		ActionSets:     len(r.actionSets),
		Actions:        len(r.actions),
		Spaces:         len(r.spaces),
		FacialTrackers: len(r.facial),
	}
}
