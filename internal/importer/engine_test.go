package importer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/scenegridgo/internal/datapath"
	"github.com/vk/scenegridgo/internal/events"
	"github.com/vk/scenegridgo/internal/nodeid"
	"github.com/vk/scenegridgo/internal/scene"
)

// lineEngine runs a tiny line-oriented script language so the importer can
// be tested without the HCL engine:
//
//	import /abs/path    nested import into the same builder
//	import2 /abs/path   nested import into the engine's second builder
//	node name           adds a node
//	scale 2.5           sets the builder unit scale
//	probe label         records the visible data directories
//	fail message        returns an error
//	panic message       panics
type lineEngine struct {
	dirs   *datapath.Directories
	second *scene.Builder

	mu     sync.Mutex
	ran    []string
	probes map[string][]string
	bound  map[string][]string
}

func newLineEngine(dirs *datapath.Directories) *lineEngine {
	return &lineEngine{
		dirs:   dirs,
		second: scene.NewBuilder(scene.DefaultSettings()),
		probes: make(map[string][]string),
		bound:  make(map[string][]string),
	}
}

func (e *lineEngine) Execute(ctx context.Context, imp SceneImporter, script Script, bindings *Bindings) error {
	e.mu.Lock()
	e.ran = append(e.ran, script.Path)
	e.bound[script.Path] = bindings.Names()
	e.mu.Unlock()

	builder, err := bindings.Builder()
	if err != nil {
		return err
	}

	sc := bufio.NewScanner(bytes.NewReader(script.Source))
	for sc.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		switch cmd {
		case "", "//":
		case "import":
			if err := imp.ImportScene(ctx, arg, builder, bindings); err != nil {
				return err
			}
		case "import2":
			if err := imp.ImportScene(ctx, arg, e.second, bindings); err != nil {
				return err
			}
		case "node":
			if err := builder.AddNode(scene.Node{Address: *nodeid.MustParse(arg), Source: script.Path}); err != nil {
				return err
			}
		case "scale":
			f, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return err
			}
			s := builder.Settings()
			s.UnitScale = f
			builder.SetSettings(s)
		case "probe":
			e.mu.Lock()
			e.probes[arg] = e.dirs.List()
			e.mu.Unlock()
		case "fail":
			return errors.New(arg)
		case "panic":
			panic(arg)
		default:
			return fmt.Errorf("unknown command %q", cmd)
		}
	}
	return sc.Err()
}

// activeRecorder captures every active-builder change.
type activeRecorder struct {
	mu      sync.Mutex
	history []*scene.Builder
}

func (r *activeRecorder) set(b *scene.Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, b)
}

func (r *activeRecorder) last() *scene.Builder {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return nil
	}
	return r.history[len(r.history)-1]
}

// eventRecorder captures published events.
type eventRecorder struct {
	mu  sync.Mutex
	got []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, e)
}

func (r *eventRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, e := range r.got {
		out = append(out, fmt.Sprintf("%s %s", e.Kind, e.Path))
	}
	return out
}

// fixture bundles an importer wired to in-memory scripts.
type fixture struct {
	dirs    *datapath.Directories
	engine  *lineEngine
	active  *activeRecorder
	events  *eventRecorder
	imp     *Importer
	builder *scene.Builder
}

func newFixture(t *testing.T, files map[string]string, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		dirs:    datapath.NewDirectories(),
		active:  &activeRecorder{},
		events:  &eventRecorder{},
		builder: scene.NewBuilder(scene.DefaultSettings()),
	}
	f.engine = newLineEngine(f.dirs)

	read := func(path string) ([]byte, error) {
		src, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("open %s: no such file", path)
		}
		return []byte(src), nil
	}
	base := []Option{
		WithReader(read),
		WithActiveBuilderHook(f.active.set),
		WithPublisher(f.events),
	}
	f.imp = New(f.engine, f.dirs, append(base, opts...)...)
	return f
}

// run imports path with an explicit session and returns it for inspection.
func (f *fixture) run(t *testing.T, path string) (*Session, error) {
	t.Helper()
	sess := f.imp.NewSession()
	ctx := WithSession(context.Background(), sess)
	return sess, f.imp.ImportScene(ctx, path, f.builder, nil)
}

// requireClean asserts that nothing of an import session survived.
func (f *fixture) requireClean(t *testing.T, sess *Session) {
	t.Helper()
	require.True(t, sess.Empty(), "session state leaked: paths=%v dirs=%v depth=%d",
		sess.ActivePaths(), sess.Directories(), sess.Depth())
	require.Empty(t, f.dirs.List(), "data directories leaked")
	require.Nil(t, f.active.last(), "active builder not cleared")
}
