package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/guidexml/internal/builder"
	"github.com/dgallion1/guidexml/internal/config"
	"github.com/dgallion1/guidexml/internal/guidexml"
	"github.com/dgallion1/guidexml/internal/metrics"
)

var testDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConverter() *Converter {
	c := NewConverter(guidexml.NewTranslator(guidexml.WithLogger(discardLogger())), "1.0", false)
	c.now = func() time.Time { return testDate }
	return c
}

type observation struct {
	format  string
	outcome metrics.Outcome
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeRecorder) ObserveTranslation(format string, _ time.Duration, outcome metrics.Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{format, outcome})
}

func (f *fakeRecorder) observations() []observation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]observation(nil), f.obs...)
}

func TestConverter_Convert(t *testing.T) {
	res, err := testConverter().Convert("notes.txt", "", []byte("Hello world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := builder.Header + "<guide>\n" +
		"\t<title>notes</title>\n" +
		"\t<license />\n" +
		"\t<version>1.0</version>\n" +
		"\t<date>2024-05-01</date>\n" +
		"\t<chapter>\n\t\t<title>notes</title>\n" +
		"<section><title>notes</title><body><p>Hello world</p></body></section>" +
		"\t</chapter>\n" +
		"</guide>\n"
	if got := string(res.Guide); got != want {
		t.Errorf("unexpected guide:\n%s\nwant:\n%s", got, want)
	}
	if res.Records != 1 || res.Sections != 1 {
		t.Errorf("expected 1 record and 1 section, got %d and %d", res.Records, res.Sections)
	}
}

func TestConverter_TitleOverride(t *testing.T) {
	res, err := testConverter().Convert("a.md", "Handbook", []byte("# One\n\n## Two\n\ntext\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	guide := string(res.Guide)
	if !strings.Contains(guide, "\t<title>Handbook</title>\n") {
		t.Errorf("expected guide title override, got %q", guide)
	}
	if !strings.Contains(guide, "\t\t<title>One</title>\n") {
		t.Errorf("expected chapter titled after the first section, got %q", guide)
	}
	if res.Sections != 2 {
		t.Errorf("expected 2 sections counted, got %d", res.Sections)
	}
}

func TestConverter_UnsupportedFormat(t *testing.T) {
	if _, err := testConverter().Convert("image.png", "", []byte("x")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWorker_ProcessSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewWorker(testConverter(), NewJobStore(time.Hour), rec, discardLogger())
	job := NewJob("doc.md", "", []byte("# Title\n\nBody text.\n"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Fatalf("expected completed/done, got %s/%s (errors %v)", snap.Status, snap.Phase, snap.Progress.Errors)
	}
	guide, ok := job.Result()
	if !ok || !strings.Contains(string(guide), "<p>Body text.</p>") {
		t.Errorf("unexpected result %q", guide)
	}
	obs := rec.observations()
	if len(obs) != 1 || obs[0] != (observation{"md", metrics.OutcomeSuccess}) {
		t.Errorf("unexpected observations %v", obs)
	}
}

func TestWorker_ProcessParseFailure(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewWorker(testConverter(), nil, rec, discardLogger())
	job := NewJob("broken.xml", "", []byte("<document><section>"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Fatalf("expected failed/parsing, got %s/%s", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", snap.Progress.Errors)
	}
	if _, ok := job.Result(); ok {
		t.Error("failed job must not expose a result")
	}
	obs := rec.observations()
	if len(obs) != 1 || obs[0].outcome != metrics.OutcomeFailed {
		t.Errorf("unexpected observations %v", obs)
	}
}

func TestWorker_ProcessTranslateFailure(t *testing.T) {
	tr := guidexml.NewTranslator(guidexml.WithDefaultRoute("transition"), guidexml.WithLogger(discardLogger()))
	conv := NewConverter(tr, "1.0", false)
	w := NewWorker(conv, nil, nil, discardLogger())
	job := NewJob("rule.md", "", []byte("# T\n\n---\n"))

	w.Process(context.Background(), job)

	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "translating" {
		t.Fatalf("expected failed/translating, got %s/%s", snap.Status, snap.Phase)
	}
}

func TestWorker_ReusesCompletedResult(t *testing.T) {
	store := NewJobStore(time.Hour)
	w := NewWorker(testConverter(), store, nil, discardLogger())

	first := NewJob("same.txt", "", []byte("content"))
	store.Put(first)
	w.Process(context.Background(), first)

	second := NewJob("same.txt", "", []byte("content"))
	store.Put(second)
	w.Process(context.Background(), second)

	if snap := second.Snapshot(); snap.Status != StatusCompleted || snap.Phase != "cached" {
		t.Fatalf("expected completed/cached, got %s/%s", snap.Status, snap.Phase)
	}
	a, _ := first.Result()
	b, _ := second.Result()
	if string(a) != string(b) {
		t.Error("expected identical guides")
	}
}

func TestOrchestrator_SubmitAndComplete(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 10, JobTTL: time.Hour}
	rec := &fakeRecorder{}
	o := NewOrchestrator(cfg, testConverter(), rec, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	jobs := []*Job{
		NewJob("a.txt", "", []byte("alpha")),
		NewJob("b.md", "", []byte("# B\n\nbeta\n")),
		NewJob("c.csv", "", []byte("h\n1\n")),
	}
	for _, j := range jobs {
		if err := o.Submit(j); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for _, j := range jobs {
		for j.Snapshot().Status != StatusCompleted {
			if time.Now().After(deadline) {
				t.Fatalf("job %s did not complete: %+v", j.Filename, j.Snapshot())
			}
			time.Sleep(5 * time.Millisecond)
		}
		if o.GetJob(j.ID) != j {
			t.Errorf("expected job %s to be retrievable", j.ID)
		}
	}
	if o.JobCount() != 3 {
		t.Errorf("expected 3 tracked jobs, got %d", o.JobCount())
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, testConverter(), nil, discardLogger())
	// Not started: nothing drains the queue.

	if err := o.Submit(NewJob("a.txt", "", []byte("a"))); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	overflow := NewJob("b.txt", "", []byte("b"))
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := overflow.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %s/%s", snap.Status, snap.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}
