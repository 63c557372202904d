// Package detector evaluates free text against a fixed registry of
// sensitive-data detectors. Evaluation is pure: the registry is static
// and Evaluate has no side effects.
package detector

import (
	"regexp"

	"github.com/good-yellow-bee/docsentry/internal/models"
)

// maskToken replaces the middle of every matched sample before it
// leaves this package. Raw matches must never reach alert metadata
// or logs.
const maskToken = "****"

// maxSamples is the number of redacted samples kept per finding.
const maxSamples = 2

// Detector is one sensitive-data pattern.
type Detector struct {
	Key         string
	DisplayName string
	Severity    models.Severity
	Pattern     *regexp.Regexp
}

// Finding is the result of one detector matching a text value.
type Finding struct {
	Detector    string          `json:"detector"`
	DisplayName string          `json:"display_name"`
	Severity    models.Severity `json:"severity"`
	Count       int             `json:"count"`
	Samples     []string        `json:"samples"`
}

// registry is the fixed, ordered detector set. Evaluation and finding
// order follow registration order.
var registry = []Detector{
	{
		Key:         "credit_card",
		DisplayName: "Credit Card Number",
		Severity:    models.SeverityHigh,
		Pattern:     regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`),
	},
	{
		Key:         "email",
		DisplayName: "Email Address",
		Severity:    models.SeverityMedium,
		Pattern:     regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`),
	},
	{
		Key:         "phone",
		DisplayName: "Phone Number",
		Severity:    models.SeverityMedium,
		Pattern:     regexp.MustCompile(`\(?\d{3}\)?[-. ]\d{3}[-. ]\d{4}\b`),
	},
	{
		Key:         "password",
		DisplayName: "Password Assignment",
		Severity:    models.SeverityCritical,
		Pattern:     regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[=:]\s*\S+`),
	},
	{
		Key:         "api_key",
		DisplayName: "API Key or Token",
		Severity:    models.SeverityCritical,
		Pattern:     regexp.MustCompile(`(?i)\b(?:api[-_]?key|access[-_]?token|auth[-_]?token|secret[-_]?key)\s*[=:]\s*['"]?[A-Za-z0-9_\-.=+/]{8,}['"]?`),
	},
	{
		Key:         "aws_access_key",
		DisplayName: "AWS Access Key",
		Severity:    models.SeverityCritical,
		Pattern:     regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`),
	},
	{
		Key:         "private_key",
		DisplayName: "Private Key Material",
		Severity:    models.SeverityCritical,
		Pattern:     regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
	},
}

// Detectors returns the registered detectors in evaluation order.
func Detectors() []Detector {
	out := make([]Detector, len(registry))
	copy(out, registry)
	return out
}

// Evaluate runs every registered detector over text and returns one
// finding per detector that matched at least once, in registration
// order. Empty input yields no findings.
func Evaluate(text string) []Finding {
	if text == "" {
		return nil
	}

	var findings []Finding
	for _, d := range registry {
		matches := d.Pattern.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}

		samples := make([]string, 0, maxSamples)
		for _, m := range matches {
			if len(samples) == maxSamples {
				break
			}
			samples = append(samples, Redact(m))
		}

		findings = append(findings, Finding{
			Detector:    d.Key,
			DisplayName: d.DisplayName,
			Severity:    d.Severity,
			Count:       len(matches),
			Samples:     samples,
		})
	}
	return findings
}

// Redact masks a matched value, keeping the first 4 and last 2
// characters. Values too short to keep both edges are fully masked.
func Redact(s string) string {
	if len(s) < 6 {
		return maskToken
	}
	return s[:4] + maskToken + s[len(s)-2:]
}
