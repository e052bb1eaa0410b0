package hook

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Identity is the process-wide push identity, captured once at startup:
// who pushed and which repository received the push.
type Identity struct {
	// User is the acting user name.
	User string
	// RepoName is the repository name.
	RepoName string
	// WorkDir is the directory the hook runs in.
	WorkDir string
}

// ResolveIdentity resolves the push identity. Gitolite exports the acting
// user and repository through GL_USER and GL_REPO; outside gitolite the OS
// user and the working directory name are used.
func ResolveIdentity() (Identity, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		WorkDir:  wd,
		User:     os.Getenv("GL_USER"),
		RepoName: os.Getenv("GL_REPO"),
	}

	if id.User == "" {
		u, err := user.Current()
		if err != nil {
			return Identity{}, err
		}
		id.User = u.Username
	}

	if id.RepoName == "" {
		id.RepoName = repoNameFromPath(wd)
	}

	return id, nil
}

// repoNameFromPath derives a repository name from the hook's working
// directory. In a non-bare repository the hook runs inside the .git
// directory, so the parent names the repository; bare repositories drop
// their .git suffix.
func repoNameFromPath(path string) string {
	base := filepath.Base(path)
	if base == ".git" {
		base = filepath.Base(filepath.Dir(path))
	}
	return strings.TrimSuffix(base, ".git")
}
