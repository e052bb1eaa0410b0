package hook

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/hookworks/git-slack-hook/pkg/config"
	"github.com/hookworks/git-slack-hook/pkg/git"
	"github.com/hookworks/git-slack-hook/pkg/slack"
)

// fakeSender records every payload it is asked to deliver.
type fakeSender struct {
	payloads []slack.Payload
	err      error
}

func (f *fakeSender) Send(_ context.Context, p slack.Payload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Token:   "tok",
		OrgName: "acme",
		Channel: "commits",
		Prefix:  "proj",
	}
}

func TestProcessBranchCreate(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{types: map[string]git.ObjectType{newID: git.ObjectCommit}}
	s := &fakeSender{}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	outcome, err := n.Process(context.TODO(), Event{OldID: zeroID, NewID: newID, RefName: "refs/heads/main"})
	is.NoErr(err)
	is.Equal(outcome, OutcomeSent)
	is.Equal(len(s.payloads), 1)
	is.Equal(s.payloads[0].Text, "proj alice created the branch main.")
	is.Equal(s.payloads[0].Channel, "#commits")
}

func TestProcessBranchDelete(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{types: map[string]git.ObjectType{oldID: git.ObjectCommit}}
	s := &fakeSender{}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	outcome, err := n.Process(context.TODO(), Event{OldID: oldID, NewID: zeroID, RefName: "refs/heads/old-feature"})
	is.NoErr(err)
	is.Equal(outcome, OutcomeSent)
	is.Equal(s.payloads[0].Text, "proj alice deleted the branch old-feature.")
}

func TestProcessBranchUpdate(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{
		types: map[string]git.ObjectType{newID: git.ObjectCommit},
		commits: []git.CommitInfo{
			{Hash: "abc1234def5678900000000000000000000abcde", Subject: "add feature", Author: "alice"},
			{Hash: "def5678abc1234000000000000000000000fedcb", Subject: "fix bug", Author: "bob"},
		},
	}
	s := &fakeSender{}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	outcome, err := n.Process(context.TODO(), Event{OldID: oldID, NewID: newID, RefName: "refs/heads/main"})
	is.NoErr(err)
	is.Equal(outcome, OutcomeSent)

	// Two log lines joined by the escaped newline sequence, no raw breaks.
	text := s.payloads[0].Text
	is.Equal(text, `[proj/main] abc1234: add feature - alice\n[proj/main] def5678: fix bug - bob`)
	is.True(!strings.Contains(text, "\n"))
}

func TestProcessTrackingBranchSuppressed(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{types: map[string]git.ObjectType{newID: git.ObjectCommit}}
	s := &fakeSender{}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	outcome, err := n.Process(context.TODO(), Event{OldID: oldID, NewID: newID, RefName: "refs/remotes/origin/x"})
	is.Equal(outcome, OutcomeSuppressed)
	is.True(err != nil)
	is.Equal(len(s.payloads), 0)
}

func TestProcessUnknownSuppressed(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{types: map[string]git.ObjectType{}}
	s := &fakeSender{}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	outcome, err := n.Process(context.TODO(), Event{OldID: zeroID, NewID: newID, RefName: "refs/notes/commits"})
	is.Equal(outcome, OutcomeSuppressed)
	is.True(err != nil)
	is.Equal(len(s.payloads), 0)
	// The diagnostic reuses the type resolved during classification.
	is.Equal(q.typeLookups, 1)
}

func TestProcessAnnotatedTagChannelOverride(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.TagChannel = "releases"
	q := &fakeQuery{types: map[string]git.ObjectType{newID: git.ObjectTag}}
	s := &fakeSender{}
	n := New(cfg, Identity{User: "alice"}, q, s)

	outcome, err := n.Process(context.TODO(), Event{OldID: zeroID, NewID: newID, RefName: "refs/tags/v1"})
	is.NoErr(err)
	is.Equal(outcome, OutcomeSent)
	is.Equal(s.payloads[0].Channel, "#releases")
	is.Equal(s.payloads[0].Text, "proj alice created the annotated tag v1.")
}

func TestProcessLightweightTagDefaultChannel(t *testing.T) {
	is := is.New(t)
	cfg := testConfig()
	cfg.TagChannel = "releases"
	q := &fakeQuery{types: map[string]git.ObjectType{newID: git.ObjectCommit}}
	s := &fakeSender{}
	n := New(cfg, Identity{User: "alice"}, q, s)

	_, err := n.Process(context.TODO(), Event{OldID: zeroID, NewID: newID, RefName: "refs/tags/v1"})
	is.NoErr(err)
	is.Equal(s.payloads[0].Channel, "#commits")
}

func TestProcessLogFailure(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{
		types:  map[string]git.ObjectType{newID: git.ObjectCommit},
		logErr: errors.New("boom"),
	}
	s := &fakeSender{}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	outcome, err := n.Process(context.TODO(), Event{OldID: oldID, NewID: newID, RefName: "refs/heads/main"})
	is.Equal(outcome, OutcomeFailed)
	is.True(err != nil)
	is.Equal(len(s.payloads), 0)
}

func TestRunProcessesAllEvents(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{types: map[string]git.ObjectType{newID: git.ObjectCommit}}
	s := &fakeSender{}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	input := strings.Join([]string{
		zeroID + " " + newID + " refs/heads/main",
		"malformed line",
		oldID + " " + newID + " refs/remotes/origin/x",
		zeroID + " " + newID + " refs/heads/other",
		"",
	}, "\n")

	err := n.Run(context.TODO(), strings.NewReader(input))
	is.NoErr(err)
	is.Equal(len(s.payloads), 2)
}

func TestRunAggregatesFailures(t *testing.T) {
	is := is.New(t)
	q := &fakeQuery{types: map[string]git.ObjectType{newID: git.ObjectCommit}}
	s := &fakeSender{err: errors.New("connection refused")}
	n := New(testConfig(), Identity{User: "alice"}, q, s)

	input := zeroID + " " + newID + " refs/heads/main\n"
	err := n.Run(context.TODO(), strings.NewReader(input))
	is.True(errors.Is(err, ErrDeliveryFailed))
}
