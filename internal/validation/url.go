package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// EndpointValidator validates the API base URL and feed URL templates.
type EndpointValidator struct {
	AllowLocalhost  bool
	AllowPrivateIPs bool
	MaxLength       int
}

// NewEndpointValidator creates a validator that rejects local and private
// hosts.
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		MaxLength:       2048,
	}
}

// NewPermissiveEndpointValidator creates a validator for local development
// and test servers.
func NewPermissiveEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// ValidateAndNormalize validates an endpoint URL and returns the normalized
// version. A missing scheme defaults to https.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}
	if err := validatePath(parsed); err != nil {
		return "", err
	}

	return parsed.String(), nil
}

// ValidateTemplate checks a feed URL template. The template must contain the
// placeholder where the escaped query is substituted.
func (v *EndpointValidator) ValidateTemplate(template, placeholder string) error {
	if !strings.Contains(template, placeholder) {
		return fmt.Errorf("feed URL template must contain %s", placeholder)
	}
	_, err := v.ValidateAndNormalize(strings.ReplaceAll(template, placeholder, "query"))
	return err
}

func (v *EndpointValidator) validateHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}
	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	if isSuspiciousHostname(hostname) {
		return fmt.Errorf("suspicious hostname detected")
	}
	return nil
}

func validatePath(parsed *url.URL) error {
	if strings.Contains(parsed.Path, "..") {
		return fmt.Errorf("directory traversal patterns not allowed in URL path")
	}
	raw := strings.ToLower(parsed.RawQuery)
	if strings.Contains(raw, "<script") || strings.Contains(raw, "javascript:") {
		return fmt.Errorf("suspicious query parameters detected")
	}
	return nil
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}

// isPrivateIP reports RFC 1918, unique local, link-local and loopback
// addresses.
func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}

func isSuspiciousHostname(hostname string) bool {
	hostname = strings.ToLower(hostname)
	switch hostname {
	case "localhost.com", "0.0.0.0", "255.255.255.255":
		return true
	}

	// Dotted hex labels are a common obfuscation; real IPs are fine.
	if len(hostname) > 8 && strings.Count(hostname, ".") == 3 && net.ParseIP(hostname) == nil {
		for _, part := range strings.Split(hostname, ".") {
			if len(part) > 6 && !isHexString(part) {
				return false
			}
		}
		return true
	}
	return false
}

func isHexString(s string) bool {
	for _, char := range s {
		if !((char >= '0' && char <= '9') || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')) {
			return false
		}
	}
	return true
}
