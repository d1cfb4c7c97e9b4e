package services_test

import (
	"errors"
	"strings"
	"testing"

	"karaparty/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "playlist", "insert", "rejected", base)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"playlist", "insert", "rejected"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestErrorHintByMarker(t *testing.T) {
	cfgErr := services.Wrap(services.ErrConfiguration, "playlist", "token", "missing", nil)
	if hint := services.ErrorHint(cfgErr); !strings.Contains(hint, "configuration") {
		t.Fatalf("unexpected hint for configuration error: %q", hint)
	}
	transient := services.Wrap(services.ErrTransient, "playlist", "insert", "", errors.New("reset"))
	if hint := services.ErrorHint(transient); !strings.Contains(hint, "next cycle") {
		t.Fatalf("unexpected hint for transient error: %q", hint)
	}
	if hint := services.ErrorHint(nil); hint != "" {
		t.Fatalf("expected empty hint for nil, got %q", hint)
	}
}
