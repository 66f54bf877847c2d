package validation

import (
	"net"
	"strings"
	"testing"
)

func TestNewEndpointValidator(t *testing.T) {
	v := NewEndpointValidator()
	if v.AllowLocalhost || v.AllowPrivateIPs {
		t.Error("Expected secure defaults to block localhost and private IPs")
	}
	if v.MaxLength != 2048 {
		t.Errorf("Expected MaxLength 2048, got %d", v.MaxLength)
	}

	p := NewPermissiveEndpointValidator()
	if !p.AllowLocalhost || !p.AllowPrivateIPs {
		t.Error("Expected permissive validator to allow localhost and private IPs")
	}
}

func TestValidateAndNormalize(t *testing.T) {
	v := NewEndpointValidator()

	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
		errorMsg    string
	}{
		{name: "pixabay base", input: "https://pixabay.com", expected: "https://pixabay.com"},
		{name: "adds https", input: "pixabay.com", expected: "https://pixabay.com"},
		{name: "trims whitespace", input: "  https://pixabay.com/  ", expected: "https://pixabay.com/"},
		{name: "keeps query", input: "https://www.flickr.com/services/feeds/photos_public.gne?tags=cats", expected: "https://www.flickr.com/services/feeds/photos_public.gne?tags=cats"},
		{name: "empty", input: "", shouldError: true, errorMsg: "cannot be empty"},
		{name: "too long", input: "https://pixabay.com/" + strings.Repeat("a", 2100), shouldError: true, errorMsg: "too long"},
		{name: "html characters", input: "https://pixabay.com/<script>", shouldError: true, errorMsg: "invalid characters"},
		{name: "ftp scheme", input: "ftp://pixabay.com", shouldError: true, errorMsg: "http or https"},
		{name: "localhost", input: "http://localhost:8080", shouldError: true, errorMsg: "localhost"},
		{name: "loopback ip", input: "http://127.0.0.1", shouldError: true, errorMsg: "localhost"},
		{name: "private ip", input: "http://192.168.1.10", shouldError: true, errorMsg: "private IP"},
		{name: "unspecified ip", input: "http://0.0.0.0", shouldError: true, errorMsg: "suspicious"},
		{name: "traversal", input: "https://pixabay.com/../etc", shouldError: true, errorMsg: "traversal"},
		{name: "script in query", input: "https://pixabay.com/api/?q=javascript:alert(1)", shouldError: true, errorMsg: "suspicious query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("Expected error for %q, got %q", tt.input, got)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValidateAndNormalizePermissive(t *testing.T) {
	v := NewPermissiveEndpointValidator()

	for _, input := range []string{"http://localhost:8080", "http://127.0.0.1:9000/api/", "http://10.0.0.5"} {
		if _, err := v.ValidateAndNormalize(input); err != nil {
			t.Errorf("Expected %q to be allowed, got %v", input, err)
		}
	}
}

func TestValidateTemplate(t *testing.T) {
	v := NewEndpointValidator()

	if err := v.ValidateTemplate("https://www.flickr.com/services/feeds/photos_public.gne?tags={query}", "{query}"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	err := v.ValidateTemplate("https://www.flickr.com/services/feeds/photos_public.gne", "{query}")
	if err == nil || !strings.Contains(err.Error(), "{query}") {
		t.Errorf("Expected missing placeholder error, got %v", err)
	}

	if err := v.ValidateTemplate("http://localhost/feed?q={query}", "{query}"); err == nil {
		t.Error("Expected localhost template to be rejected")
	}
}

func TestIsLocalhost(t *testing.T) {
	for host, want := range map[string]bool{
		"localhost":     true,
		"127.0.0.1":     true,
		"::1":           true,
		"app.localhost": true,
		"pixabay.com":   false,
		"localhostx":    false,
	} {
		if got := isLocalhost(host); got != want {
			t.Errorf("isLocalhost(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	for ip, want := range map[string]bool{
		"10.1.2.3":    true,
		"172.16.0.1":  true,
		"172.32.0.1":  false,
		"192.168.0.1": true,
		"169.254.1.1": true,
		"127.0.0.1":   true,
		"8.8.8.8":     false,
		"fd00::1":     true,
		"fe80::1":     true,
		"2001:db8::1": false,
	} {
		if got := isPrivateIP(net.ParseIP(ip)); got != want {
			t.Errorf("isPrivateIP(%q) = %v, want %v", ip, got, want)
		}
	}
}

func TestIsSuspiciousHostname(t *testing.T) {
	for host, want := range map[string]bool{
		"0.0.0.0":                       true,
		"255.255.255.255":               true,
		"localhost.com":                 true,
		"pixabay.com":                   false,
		"example.com":                   false,
		"192.168.1.1":                   false,
		"deadbeef.cafebabe.abcdef.0123": true,
	} {
		if got := isSuspiciousHostname(host); got != want {
			t.Errorf("isSuspiciousHostname(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestIsHexString(t *testing.T) {
	if !isHexString("DeadBeef09") {
		t.Error("Expected hex string")
	}
	if isHexString("xyz") {
		t.Error("Expected non-hex string")
	}
}
