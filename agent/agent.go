package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/go-playground/webhooks.v3"
	webhook "gopkg.in/go-playground/webhooks.v3/github"

	"github.com/redbadger/deploy-trigger/model"
	"github.com/redbadger/deploy-trigger/trigger"
)

// Agent creates one deployment for every push to the watched branch.
// Pushes are handled one at a time, however close together they arrive.
type Agent struct {
	Trigger     *trigger.Trigger
	Request     model.DeploymentRequest
	Credentials model.Credentials
	// OnResult, if set, receives every attempt's outcome
	OnResult func(model.DeploymentResult)

	mu sync.Mutex
}

// Run listens for github push webhooks until the server fails
func Run(port uint16, path, secret string, a *Agent) error {
	hook := a.Hook(secret)

	log.WithFields(log.Fields{
		"port": port,
		"path": path,
		"repo": a.Request.GitSource.Repo,
		"ref":  a.Request.GitSource.Ref,
	}).Info("waiting for pushes")

	err := webhooks.Run(hook, ":"+strconv.FormatUint(uint64(port), 10), path)
	if err != nil {
		return fmt.Errorf("cannot listen for webhook: %v", err)
	}
	return nil
}

// Hook returns a github webhook that hands push events to a
func (a *Agent) Hook(secret string) *webhook.Webhook {
	hook := webhook.New(&webhook.Config{Secret: secret})
	hook.RegisterEvents(a.handlePush, webhook.PushEvent)
	return hook
}

func (a *Agent) handlePush(payload interface{}, header webhooks.Header) {
	pl, ok := payload.(webhook.PushPayload)
	if !ok {
		log.WithField("type", fmt.Sprintf("%T", payload)).Warn("ignoring unexpected payload")
		return
	}
	a.Push(pl.Repository.FullName, pl.Ref, pl.After)
}

// Push attempts a deployment when repo and ref are the watched ones.
// It reports whether an attempt was made.
func (a *Agent) Push(repo, ref, sha string) bool {
	entry := log.WithFields(log.Fields{
		"repo": repo,
		"ref":  ref,
		"sha":  sha,
	})
	if !a.watches(repo, ref) {
		entry.Debug("ignoring push")
		return false
	}

	// webhooks runs every handler in its own goroutine
	a.mu.Lock()
	defer a.mu.Unlock()

	entry.Info("push received, deploying")
	result := a.Trigger.Attempt(context.Background(), a.Request, a.Credentials)
	if result.Succeeded() {
		entry.WithFields(log.Fields{
			"id":  result.DeploymentID,
			"url": result.TargetURL,
		}).Info("deployment created")
	} else {
		entry.WithField("reason", result.Reason()).WithError(result.Failure).Error("deployment was not created")
	}
	if a.OnResult != nil {
		a.OnResult(result)
	}
	return true
}

func (a *Agent) watches(repo, ref string) bool {
	src := a.Request.GitSource
	if !strings.EqualFold(repo, src.Repo) {
		return false
	}
	return ref == src.Ref || ref == "refs/heads/"+src.Ref
}
