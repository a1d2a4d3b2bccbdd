package notify

// NoopSender drops notifications. Used when notifications are disabled or no
// helper program is available.
type NoopSender struct{}

// Send does nothing and always succeeds.
func (NoopSender) Send(title, body string) error {
	return nil
}
