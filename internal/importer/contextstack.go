package importer

import "github.com/vk/scenegridgo/internal/scene"

type execContext struct {
	builder  *scene.Builder
	settings scene.Settings
}

// contextStack tracks which execution context is active. Every change of
// the top is mirrored into setActive, with nil once the stack is empty.
type contextStack struct {
	entries   []execContext
	setActive func(*scene.Builder)
}

func (s *contextStack) push(b *scene.Builder, settings scene.Settings) {
	s.entries = append(s.entries, execContext{builder: b, settings: settings})
	s.setActive(b)
}

func (s *contextStack) pop() {
	if len(s.entries) == 0 {
		panic("importer: pop of an empty execution context stack")
	}
	s.entries[len(s.entries)-1] = execContext{}
	s.entries = s.entries[:len(s.entries)-1]

	if len(s.entries) == 0 {
		s.setActive(nil)
		return
	}
	s.setActive(s.entries[len(s.entries)-1].builder)
}

func (s *contextStack) top() (execContext, bool) {
	if len(s.entries) == 0 {
		return execContext{}, false
	}
	return s.entries[len(s.entries)-1], true
}
