// Package hook implements the post-receive notifier: it classifies pushed
// ref updates, formats a message for each one, and hands the result to a
// webhook sender.
package hook

import (
	"fmt"
	"strings"

	"github.com/hookworks/git-slack-hook/pkg/git"
)

// ChangeType classifies what a push did to a ref.
type ChangeType int8

const (
	// ChangeCreate means the ref did not exist before the push.
	ChangeCreate ChangeType = iota
	// ChangeUpdate means the ref moved to a new commit.
	ChangeUpdate
	// ChangeDelete means the ref was removed.
	ChangeDelete
)

var changeTypeVerbs = map[ChangeType]string{
	ChangeCreate: "created",
	ChangeUpdate: "updated",
	ChangeDelete: "deleted",
}

// Verb returns the past-tense verb for the change.
func (c ChangeType) Verb() string {
	return changeTypeVerbs[c]
}

// RefKind is the kind of ref a push touched.
type RefKind int8

const (
	// KindUnknown is an unrecognized ref and object type combination.
	KindUnknown RefKind = iota
	// KindBranch is a local branch.
	KindBranch
	// KindTrackingBranch is a remote-tracking branch.
	KindTrackingBranch
	// KindTag is a lightweight tag.
	KindTag
	// KindAnnotatedTag is a tag with its own object.
	KindAnnotatedTag
)

var refKindStrings = map[RefKind]string{
	KindUnknown:        "unknown ref",
	KindBranch:         "branch",
	KindTrackingBranch: "tracking branch",
	KindTag:            "tag",
	KindAnnotatedTag:   "annotated tag",
}

// String returns the human-readable kind name used in message text.
func (k RefKind) String() string {
	return refKindStrings[k]
}

// Event is one ref update from the post-receive input stream.
type Event struct {
	// OldID is the object id the ref pointed to before the push.
	OldID string
	// NewID is the object id the ref points to after the push.
	NewID string
	// RefName is the fully qualified ref name.
	RefName string
}

// ParseEvent parses a post-receive input line of the form
// "<old-id> <new-id> <ref-name>".
func ParseEvent(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Event{}, fmt.Errorf("invalid post-receive input %q", line)
	}

	return Event{
		OldID:   fields[0],
		NewID:   fields[1],
		RefName: fields[2],
	}, nil
}

// ChangeType derives the change type from the zero-hash sentinels.
func (e Event) ChangeType() ChangeType {
	switch {
	case git.IsZeroHash(e.OldID):
		return ChangeCreate
	case git.IsZeroHash(e.NewID):
		return ChangeDelete
	}
	return ChangeUpdate
}

// SurvivingID is the object id that still exists after the push: the new id
// for creates and updates, the old id for deletes.
func (e Event) SurvivingID() string {
	if e.ChangeType() == ChangeDelete {
		return e.OldID
	}
	return e.NewID
}

// ShortRef is the ref name without its refs/... prefix.
func (e Event) ShortRef() string {
	return git.ShortRef(e.RefName)
}
