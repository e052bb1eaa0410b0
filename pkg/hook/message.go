package hook

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hookworks/git-slack-hook/pkg/git"
)

// Builder formats notification text for ref updates.
type Builder struct {
	// Prefix is the repository prefix shown in every message.
	Prefix string

	// URLPattern is the changeset link template, with %repo_path% and
	// %rev_hash% placeholders. Links are only built when both URLPattern
	// and ReposRoot are set and WorkDir lies under ReposRoot.
	URLPattern string

	// ReposRoot is the directory all served repositories live under.
	ReposRoot string

	// WorkDir is the directory the hook runs in.
	WorkDir string
}

// RefMessage is the single-line message for ref creates and deletes.
func (b *Builder) RefMessage(user string, change ChangeType, kind RefKind, ref string) string {
	return fmt.Sprintf("%s %s %s the %s %s.", b.Prefix, user, change.Verb(), kind, ref)
}

// LogLines is the multi-line message for ref updates, one line per commit
// in the pushed range.
func (b *Builder) LogLines(branch string, commits []git.CommitInfo) string {
	lines := make([]string, len(commits))
	for i, c := range commits {
		label := git.ShortID(c.Hash)
		if url := b.changesetURL(c.Hash); url != "" {
			label = fmt.Sprintf("<%s|%s>", url, label)
		}
		lines[i] = fmt.Sprintf("[%s/%s] %s: %s - %s", b.Prefix, branch, label, c.Subject, c.Author)
	}
	return strings.Join(lines, "\n")
}

// changesetURL builds a commit link from the URL template, or returns an
// empty string when linking is not configured for this repository.
func (b *Builder) changesetURL(hash string) string {
	if b.URLPattern == "" || b.ReposRoot == "" {
		return ""
	}

	rel, err := filepath.Rel(b.ReposRoot, b.WorkDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}

	url := strings.ReplaceAll(b.URLPattern, "%repo_path%", rel)
	return strings.ReplaceAll(url, "%rev_hash%", hash)
}

// EscapeNewlines replaces literal newlines with the two-character sequence
// backslash-n. The incoming webhook wants the escaped form inside the text
// field, not raw line breaks.
func EscapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
