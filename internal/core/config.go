package core

// Config carries resolved CLI settings.
type Config struct {
	Broker    string
	Identity  string
	TopicBase string
	// NodeID is the alarm clock node commands are sent to.
	NodeID string
}
