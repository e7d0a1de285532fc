package remote

import (
	"net/url"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
)

// Host is the only recognized remote-hosting domain.
const Host = "github.com"

const urlShape = "https://" + Host + "/<owner>/<repo>"

// Repo identifies a hosted repository.
type Repo struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// URL returns the canonical https URL of the repository.
func (r Repo) URL() string {
	return "https://" + Host + "/" + r.FullName()
}

// CacheDirName returns the directory name used for the repository's cache
// clone, "owner__name".
func (r Repo) CacheDirName() string {
	return r.Owner + "__" + r.Name
}

// CachePath joins the repository's cache directory onto root.
func (r Repo) CachePath(root string) (string, error) {
	p, err := securejoin.SecureJoin(root, r.CacheDirName())
	if err != nil {
		return "", errors.InvalidInput("invalid cache path for %s under %s: %v", r.FullName(), root, err)
	}
	return p, nil
}

// ParseRepoURL parses an https://github.com/<owner>/<repo> URL. A trailing
// ".git" on the repository segment is dropped; extra path segments are
// ignored.
func ParseRepoURL(raw string) (Repo, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Repo{}, errors.InvalidInput("only %s repositories are supported", urlShape)
	}
	if !strings.EqualFold(u.Scheme, "https") || strings.ToLower(u.Host) != Host {
		return Repo{}, errors.InvalidInput("only %s repositories are supported, got %q", urlShape, raw)
	}
	if u.User != nil {
		return Repo{}, errors.InvalidInput("repository URL must not carry credentials, expected %s", urlShape)
	}

	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	if len(segments) < 2 {
		return Repo{}, errors.InvalidInput("invalid repository URL %q, expected %s", raw, urlShape)
	}
	owner := segments[0]
	name := strings.TrimSuffix(segments[1], ".git")
	if owner == "" || name == "" {
		return Repo{}, errors.InvalidInput("invalid repository URL %q, expected %s", raw, urlShape)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// SplitRepoName splits "name" or "owner/name" (optionally ".git"-suffixed).
// The owner is empty when omitted.
func SplitRepoName(input string) (owner, name string, err error) {
	s := strings.TrimSuffix(strings.TrimSpace(input), ".git")
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		owner, name = parts[0], parts[1]
		if owner == "" {
			return "", "", errors.InvalidInput("repository owner is empty in %q, expected <owner>/<name>", input)
		}
	default:
		return "", "", errors.InvalidInput("invalid repository %q, expected <name> or <owner>/<name>", input)
	}
	if name == "" {
		return "", "", errors.InvalidInput("repository name is required, expected <name> or <owner>/<name>")
	}
	return owner, name, nil
}
