package fints_test

import (
	"errors"
	"sync"
	"testing"

	fints "github.com/reoring/fints"
)

type recordingObserver struct {
	mu      sync.Mutex
	keys    []fints.Key
	generic int
	failed  int
}

func (o *recordingObserver) SegmentParsed(k fints.Key, generic bool, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.keys = append(o.keys, k)
	if generic {
		o.generic++
	}
	if err != nil {
		o.failed++
	}
}

func newRegistry(t *testing.T, opts ...fints.RegistryOption) *fints.Registry {
	t.Helper()
	r := fints.NewRegistry(opts...)
	for _, s := range []*fints.Schema{hnhbk3, hirmg2, hnhbs1} {
		if err := r.Register(s); err != nil {
			t.Fatalf("register %s: %v", s.Name(), err)
		}
	}
	r.Freeze()
	return r
}

func TestDispatch_RegisteredAndFallback(t *testing.T) {
	r := newRegistry(t)
	if s := r.Dispatch(fints.Header{Type: "HIRMG", Number: 2, Version: 2}); s != hirmg2 {
		t.Fatalf("expected HIRMG2, got %v", s)
	}
	if s := r.Dispatch(fints.Header{Type: "HIRMG", Version: 3}); s != fints.GenericSchema() {
		t.Fatalf("unknown version must fall back, got %v", s)
	}
	if s := r.Dispatch(fints.Header{Type: "ZZZZ", Version: 99}); !s.Generic() {
		t.Fatalf("expected generic fallback, got %v", s)
	}
}

func TestParseSegment_FallbackRoundTripsVerbatim(t *testing.T) {
	r := newRegistry(t)
	groups := []fints.TokenGroup{{"ZZZZ", "5", "99", "3"}, {"a", "b"}, {""}, {"c", "", ""}, {""}}
	seg, err := r.ParseSegment(groups)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !seg.Schema().Generic() || seg.Type() != "ZZZZ" || seg.Version() != 99 {
		t.Fatalf("unexpected segment %s", seg)
	}
	if out := tokens(t, seg); !equalGroups(out, groups) {
		t.Fatalf("fallback must be verbatim:\n got %v\nwant %v", out, groups)
	}
}

func TestParseSegment_FallbackKeepsHeaderSpelling(t *testing.T) {
	r := newRegistry(t)
	for _, hdr := range []fints.TokenGroup{
		{"ZZZZ", "05", "99"},
		{"ZZZZ", "5", "099"},
		{"ZZZZ", "5", "99", ""},
		{"ZZZZ", "", "99", "007"},
	} {
		groups := []fints.TokenGroup{hdr, {"x"}}
		seg, err := r.ParseSegment(groups)
		if err != nil {
			t.Fatalf("parse %v: %v", hdr, err)
		}
		if out := tokens(t, seg); !equalGroups(out, groups) {
			t.Fatalf("header spelling lost:\n got %v\nwant %v", out, groups)
		}
		seg, err = fints.GenericSchema().Parse(groups)
		if err != nil {
			t.Fatalf("schema parse %v: %v", hdr, err)
		}
		if out := tokens(t, seg); !equalGroups(out, groups) {
			t.Fatalf("Schema.Parse lost header spelling:\n got %v\nwant %v", out, groups)
		}
	}

	seg, err := r.ParseSegment([]fints.TokenGroup{{"ZZZZ", "05", "99"}, {"x"}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []fints.TokenGroup{{"ZZZZ", "7", "99"}, {"x"}}
	if out := tokens(t, seg.WithNumber(7)); !equalGroups(out, want) {
		t.Fatalf("renumbered segment: got %v want %v", out, want)
	}
}

func TestWithFallback_OnlyGenericOrAbstract(t *testing.T) {
	r := newRegistry(t, fints.WithFallback(hirmg2), fints.WithFallback(nil))
	if s := r.Dispatch(fints.Header{Type: "ZZZZ", Version: 99}); s != fints.GenericSchema() {
		t.Fatalf("identified fallback must be ignored, got %v", s)
	}

	base := fints.MustSchema("Unknown", "", fints.A("value", fints.AN(fints.Optional())))
	r = newRegistry(t, fints.WithFallback(base))
	if s := r.Dispatch(fints.Header{Type: "ZZZZ", Version: 99}); s != base {
		t.Fatalf("abstract fallback not used, got %v", s)
	}
	seg, err := r.ParseSegment([]fints.TokenGroup{{"ZZZZ", "1", "99"}, {"abc"}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := seg.Fields().String("value"); got != "abc" {
		t.Fatalf("value: got %q", got)
	}
}

func TestParseSegment_TypedDispatch(t *testing.T) {
	obs := &recordingObserver{}
	r := newRegistry(t, fints.WithObserver(obs))
	seg, err := r.ParseSegment([]fints.TokenGroup{{"HIRMG", "2", "2"}, {"0010", "", "ok"}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if seg.Schema() != hirmg2 || seg.Fields().Len("responses") != 1 {
		t.Fatalf("unexpected segment %s", seg)
	}
	if _, err := r.ParseSegment([]fints.TokenGroup{{"ZZZZ", "1", "1"}}); err != nil {
		t.Fatalf("fallback parse: %v", err)
	}
	if _, err := r.ParseSegment([]fints.TokenGroup{{"HIRMG", "x", "2"}}); err == nil {
		t.Fatalf("expected header error")
	}
	if len(obs.keys) != 3 || obs.generic != 1 || obs.failed != 1 {
		t.Fatalf("observer saw keys=%v generic=%d failed=%d", obs.keys, obs.generic, obs.failed)
	}
	if _, err := r.ParseSegment(nil); err == nil {
		t.Fatalf("expected error for empty segment")
	}
}

func TestRegister_ConflictIsAnError(t *testing.T) {
	r := fints.NewRegistry()
	if err := r.Register(hirmg2); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(hirmg2); err != nil {
		t.Fatalf("re-registering the same schema must be a no-op: %v", err)
	}
	other := fints.MustSchema("HIRMG2", "other", fints.A("x", fints.AN()))
	err := r.Register(other)
	var ce *fints.RegistrationConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected RegistrationConflictError, got %v", err)
	}
	if ce.Key.String() != "HIRMG2" {
		t.Fatalf("unexpected key %v", ce.Key)
	}
	if s, _ := r.Lookup(fints.Key{Type: "HIRMG", Version: 2}); s != hirmg2 {
		t.Fatalf("first registration must win")
	}
}

func TestRegister_AbstractAndFrozen(t *testing.T) {
	r := fints.NewRegistry()
	abstract := fints.MustSchema("ParameterSegment", "")
	var de *fints.SchemaDefinitionError
	if err := r.Register(abstract); !errors.As(err, &de) {
		t.Fatalf("expected SchemaDefinitionError, got %v", err)
	}
	if err := r.Register(nil); !errors.As(err, &de) {
		t.Fatalf("expected SchemaDefinitionError for nil, got %v", err)
	}
	r.Freeze()
	if !r.Frozen() {
		t.Fatalf("expected frozen")
	}
	if err := r.Register(hnhbs1); !errors.Is(err, fints.ErrRegistryFrozen) {
		t.Fatalf("expected ErrRegistryFrozen, got %v", err)
	}
}

func TestRegistry_SchemasSorted(t *testing.T) {
	r := fints.NewRegistry()
	r.MustRegister(hnhbs1, hirmg2, hnhbk3, fints.MustSchema("HIRMG3", ""))
	got := r.Schemas()
	want := []string{"HIRMG2", "HIRMG3", "HNHBK3", "HNHBS1"}
	if len(got) != len(want) {
		t.Fatalf("unexpected schemas %v", got)
	}
	for i := range want {
		if got[i].Name() != want[i] {
			t.Fatalf("order mismatch at %d: %s", i, got[i].Name())
		}
	}
}

func TestRegistry_ConcurrentDispatchAfterFreeze(t *testing.T) {
	r := newRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if r.Dispatch(fints.Header{Type: "HNHBK", Version: 3}) != hnhbk3 {
					t.Errorf("dispatch mismatch")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDefaultRegistry(t *testing.T) {
	s := fints.MustSchema("HKDEF1", "", fints.A("x", fints.AN()))
	if err := fints.Register(s); err != nil {
		t.Fatalf("register: %v", err)
	}
	if fints.Dispatch(fints.Header{Type: "HKDEF", Version: 1}) != s {
		t.Fatalf("default registry dispatch failed")
	}
	seg, err := fints.ParseSegment([]fints.TokenGroup{{"HKDEF", "1", "1"}, {"v"}})
	if err != nil || seg.Fields().String("x") != "v" {
		t.Fatalf("default parse err=%v", err)
	}
	if fints.Default().Frozen() {
		t.Fatalf("default registry starts unfrozen")
	}
}
