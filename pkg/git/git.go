// Package git wraps the git command line for the small set of queries the
// notifier needs: configuration reads, object type lookups, and commit
// ranges.
package git

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	gitm "github.com/aymanbagabas/git-module"
)

const (
	// ZeroID is the all-zero object id git reports for a ref that did not
	// exist before the push, or that was deleted by it.
	ZeroID = gitm.EmptyID

	// RefsHeads is the prefix for branch references.
	RefsHeads = gitm.RefsHeads
	// RefsTags is the prefix for tag references.
	RefsTags = gitm.RefsTags
	// RefsRemotes is the prefix for remote-tracking references.
	RefsRemotes = "refs/remotes/"
)

var zeroPattern = regexp.MustCompile(`^0{40,}$`)

// IsZeroHash returns whether the hash is a zero hash.
func IsZeroHash(h string) bool {
	return zeroPattern.MatchString(h)
}

// ShortID returns the abbreviated form of a commit id.
func ShortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// ShortRef strips the refs/... prefix from a fully qualified ref name.
func ShortRef(ref string) string {
	for _, prefix := range []string{RefsHeads, RefsTags, RefsRemotes} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix)
		}
	}
	return ref
}

// ObjectType is the type of a git object.
type ObjectType int8

const (
	// ObjectMissing means the object could not be resolved.
	ObjectMissing ObjectType = iota
	// ObjectCommit is a commit object.
	ObjectCommit
	// ObjectTag is an annotated tag object.
	ObjectTag
)

var objectTypeStrings = map[ObjectType]string{
	ObjectMissing: "missing",
	ObjectCommit:  "commit",
	ObjectTag:     "tag",
}

// String returns the string representation of the object type.
func (t ObjectType) String() string {
	return objectTypeStrings[t]
}

// CommitInfo is one log line worth of commit metadata.
type CommitInfo struct {
	Hash    string
	Subject string
	Author  string
}

// Repository runs git queries against a single repository.
type Repository struct {
	repo *gitm.Repository
	path string
}

// Open opens the git repository at the given path.
func Open(path string) (*Repository, error) {
	repo, err := gitm.Open(path)
	if err != nil {
		return nil, err
	}
	return &Repository{
		repo: repo,
		path: path,
	}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Config reads a git configuration value. Unset keys yield an empty string.
func (r *Repository) Config(key string) string {
	bts, err := gitm.NewCommand("config", "--get", key).RunInDir(r.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(bts))
}

// BoolConfig reads a git configuration value as a boolean. Unset or
// malformed keys yield false.
func (r *Repository) BoolConfig(key string) bool {
	v, _ := strconv.ParseBool(r.Config(key))
	return v
}

// ObjectType resolves the type of the object the given id points to.
// Lookup failures and non-commit, non-tag objects resolve to ObjectMissing.
func (r *Repository) ObjectType(ctx context.Context, id string) ObjectType {
	bts, err := gitm.NewCommand("cat-file", "-t", id).WithContext(ctx).RunInDir(r.path)
	if err != nil {
		return ObjectMissing
	}
	switch strings.TrimSpace(string(bts)) {
	case "commit":
		return ObjectCommit
	case "tag":
		return ObjectTag
	}
	return ObjectMissing
}

// LogRange returns every commit in before..after in git's native log
// order, newest first. The notification carries one line per commit, so
// the range is never truncated.
func (r *Repository) LogRange(ctx context.Context, before, after string) ([]CommitInfo, error) {
	rev := after
	if !IsZeroHash(before) {
		rev = before + ".." + after
	}
	commits, err := r.repo.Log(rev, gitm.LogOptions{
		CommandOptions: gitm.CommandOptions{
			Context: ctx,
		},
	})
	if err != nil {
		return nil, err
	}
	infos := make([]CommitInfo, len(commits))
	for i, c := range commits {
		infos[i] = CommitInfo{
			Hash:    c.ID.String(),
			Subject: c.Summary(),
			Author:  c.Author.Name,
		}
	}
	return infos, nil
}
