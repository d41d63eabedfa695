package netmon

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/audit"
)

func newRecorder(t *testing.T) (*audit.Logger, *[]audit.Event) {
	t.Helper()
	var events []audit.Event
	l := audit.New()
	l.Init(&audit.Options{
		Path: filepath.Join(t.TempDir(), "audit.log"),
		Sink: func(ev audit.Event) { events = append(events, ev) },
	})
	t.Cleanup(l.Close)
	return l, &events
}

func TestCheckAllowlist(t *testing.T) {
	log, _ := newRecorder(t)
	m := New(log)
	if err := m.Install(&Options{
		AllowedDomains:       []string{"api.telegram.org", "*.whatsapp.net"},
		ExtraAllowedSuffixes: []string{".openai.com"},
		Enforce:              true,
		Base:                 http.DefaultTransport,
	}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	defer m.Uninstall()

	tests := []struct {
		host string
		want bool
	}{
		{"api.telegram.org", true},
		{"api.telegram.org:443", true},
		{"API.Telegram.Org", true},
		{"files.api.telegram.org", true},
		{"telegram.org", false},
		{"evil-api.telegram.org.attacker.com", false},
		{"whatsapp.net", true},
		{"e1.whatsapp.net", true},
		{"api.openai.com", true},
		{"openai.com", true},
		{"notopenai.com", false},
		{"openai.com.attacker.com", false},
		{"example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.Check(tt.host); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestObserveOnlyMode(t *testing.T) {
	log, events := newRecorder(t)
	m := New(log)
	if err := m.Install(&Options{
		AllowedDomains: []string{"api.telegram.org"},
		Enforce:        false,
		Base:           http.DefaultTransport,
	}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	defer m.Uninstall()

	if !m.Check("example.com") {
		t.Error("observe-only monitor refused a request")
	}
	if len(*events) != 1 || (*events)[0].Type != audit.EventBlockedNetwork {
		t.Fatalf("events = %+v, want one blocked_network", *events)
	}
	if (*events)[0].Detail["enforced"] != false {
		t.Error("blocked_network event should record enforced=false")
	}
}

func TestLogAllowed(t *testing.T) {
	log, events := newRecorder(t)
	m := New(log)
	if err := m.Install(&Options{
		AllowedDomains: []string{"api.telegram.org"},
		LogAllowed:     true,
		Enforce:        true,
		Base:           http.DefaultTransport,
	}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	defer m.Uninstall()

	m.Check("api.telegram.org")
	if len(*events) != 1 || (*events)[0].Type != audit.EventAllowedNetwork {
		t.Fatalf("events = %+v, want one allowed_network", *events)
	}
	if (*events)[0].Detail["registeredDomain"] != "telegram.org" {
		t.Errorf("registeredDomain = %v, want telegram.org", (*events)[0].Detail["registeredDomain"])
	}
}

func TestDefaultTransportPatch(t *testing.T) {
	orig := http.DefaultTransport
	m := New(nil)
	if err := m.Install(&Options{AllowedDomains: []string{"example.com"}, Enforce: true}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if http.DefaultTransport == orig {
		t.Error("Install did not replace the default transport")
	}
	if !m.IsActive() {
		t.Error("IsActive() = false after Install")
	}

	m.Uninstall()
	if http.DefaultTransport != orig {
		t.Error("Uninstall did not restore the default transport")
	}
	if m.IsActive() {
		t.Error("IsActive() = true after Uninstall")
	}
	m.Uninstall() // second call must be safe
}

func TestInactiveMonitorAllowsEverything(t *testing.T) {
	m := New(nil)
	if !m.Check("anything.example.com") {
		t.Error("inactive monitor refused a request")
	}
}
