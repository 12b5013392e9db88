package logger

import (
	"bytes"
	"encoding/json"
	stdlog "log"
	"testing"
)

func TestInit_BaseFieldsAndLevel(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	log := Init(Options{Level: "warn", Output: &buf, Service: "carehome-cms", Env: "test"})
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "shown" || line["service"] != "carehome-cms" || line["env"] != "test" {
		t.Fatalf("unexpected line: %v", line)
	}
}

func TestInit_OnlyFirstCallWins(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	global := Get()
	global.Info().Msg("hello")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("second Init must not replace the logger")
	}
}

func TestGetBeforeInitPanics(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("Get before Init should panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"debug": "debug", "WARNING": "warn", "bogus": "info", "": "info", "trace": "trace"}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNew_LeavesGlobalUntouched(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	local := New(Options{Output: &buf})
	local.Info().Msg("local")
	if buf.Len() == 0 {
		t.Fatalf("New logger wrote nothing")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("New must not initialise the global logger")
		}
	}()
	Get()
}

func TestComponent_TagsLines(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	Init(Options{Output: &buf})
	comp := Component("scheduler")
	comp.Info().Msg("tick")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if line["component"] != "scheduler" {
		t.Fatalf("missing component: %v", line)
	}
}

func TestInit_RoutesStandardLog(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	Init(Options{Output: &buf})
	stdlog.Print("from the standard library")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["source"] != "stdlog" {
		t.Fatalf("stdlog output not routed: %v", line)
	}
}
