package hook

import (
	"context"
	"strings"

	"github.com/hookworks/git-slack-hook/pkg/git"
)

// Query is the narrow git surface the notifier depends on.
type Query interface {
	// ObjectType resolves the type of the object id. Lookup failures
	// resolve to git.ObjectMissing.
	ObjectType(ctx context.Context, id string) git.ObjectType

	// LogRange returns the commits in before..after in git's native log
	// order, newest first.
	LogRange(ctx context.Context, before, after string) ([]git.CommitInfo, error)
}

// Classify resolves the ref kind of an event from its ref name prefix and
// the object type of its surviving id. The resolved object type is
// returned alongside the kind so callers can diagnose unknown refs without
// a second lookup.
func Classify(ctx context.Context, q Query, e Event) (RefKind, git.ObjectType) {
	typ := q.ObjectType(ctx, e.SurvivingID())

	switch {
	case strings.HasPrefix(e.RefName, git.RefsTags) && typ == git.ObjectCommit:
		return KindTag, typ
	case strings.HasPrefix(e.RefName, git.RefsTags) && typ == git.ObjectTag:
		return KindAnnotatedTag, typ
	case strings.HasPrefix(e.RefName, git.RefsHeads) && typ == git.ObjectCommit:
		return KindBranch, typ
	case strings.HasPrefix(e.RefName, git.RefsRemotes) && typ == git.ObjectCommit:
		return KindTrackingBranch, typ
	}

	return KindUnknown, typ
}
