package notify

import "github.com/battalert/battalert/pkg/notifier"

// Stub is used when the session bus is unavailable: the daemon keeps
// classifying and publishing, it just cannot put anything on screen.
type Stub struct {
	next notifier.Handle
}

var _ notifier.Channel = &Stub{}

// NewStub returns a channel that swallows everything.
func NewStub() *Stub { return &Stub{} }

func (s *Stub) Capabilities() (notifier.Capabilities, error) {
	return notifier.Capabilities{}, nil
}

func (s *Stub) Create(_, _ string, _ []string) notifier.Handle {
	s.next++
	return s.next
}

func (s *Stub) AttachActions(_ notifier.Handle, _ []notifier.Action) {}
func (s *Stub) AttachSoundHint(_ notifier.Handle, _ string)          {}
func (s *Stub) Show(_ notifier.Handle) error                         { return nil }
func (s *Stub) Clear(_ notifier.Handle)                              {}
func (s *Stub) SetClosedHandler(_ func(notifier.Handle))             {}
