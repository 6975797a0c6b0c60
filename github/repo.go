package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/github"
	log "github.com/sirupsen/logrus"
)

// SplitFullName splits owner/name
func SplitFullName(fullName string) (owner, name string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		err = fmt.Errorf("repository %q is not owner/name", fullName)
		return
	}
	return parts[0], parts[1], nil
}

// RepoID looks up the numeric id of the repository fullName (owner/name)
func RepoID(ctx context.Context, client *github.Client, fullName string) (id int64, err error) {
	owner, name, err := SplitFullName(fullName)
	if err != nil {
		return
	}

	repo, _, err := client.Repositories.Get(ctx, owner, name)
	if err != nil {
		err = fmt.Errorf("cannot get repository %s: %v", fullName, err)
		return
	}

	id = repo.GetID()
	if id == 0 {
		err = fmt.Errorf("repository %s has no id", fullName)
		return
	}
	log.WithFields(log.Fields{
		"repo": fullName,
		"id":   id,
	}).Debug("resolved repository id")
	return
}
