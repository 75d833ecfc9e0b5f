package aub

import "testing"

func TestValidateCommandEnvelope(t *testing.T) {
	cmd, err := NewCommand("playback.start", PlaybackStartBody{})
	if err != nil {
		t.Fatalf("new command: %v", err)
	}
	cmd.ID = "id"
	cmd.TS = 1
	cmd.From = "tester"
	if err := ValidateCommandEnvelope(cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCommandEnvelopeMissingFields(t *testing.T) {
	cmd := CommandEnvelope{}
	if err := ValidateCommandEnvelope(cmd); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTopics(t *testing.T) {
	if got := TopicCommands(BaseTopic, "aubade:clock:main"); got != "aubade/v1/node/aubade:clock:main/cmd" {
		t.Fatalf("unexpected topic: %s", got)
	}
	if got := TopicReply(BaseTopic, "cli-1"); got != "aubade/v1/reply/cli-1" {
		t.Fatalf("unexpected topic: %s", got)
	}
}
