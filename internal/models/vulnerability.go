package models

import (
	"strings"
	"time"
)

// ReportMediaType is the media type Harbor uses as the key of the native
// vulnerability report inside an artifact's vulnerabilities addition.
const ReportMediaType = "application/vnd.security.vulnerability.report; version=1.1"

// Vulnerability represents a single security vulnerability found by the scanner.
type Vulnerability struct {
	ID          string   `json:"id"`       // e.g., CVE-2023-1234
	Package     string   `json:"package"`  // affected package name
	Version     string   `json:"version"`  // installed version
	FixVersion  string   `json:"fix_version,omitempty"`
	Severity    string   `json:"severity"` // e.g., Critical, High, Medium, Low, Unknown
	Description string   `json:"description,omitempty"`
	Links       []string `json:"links,omitempty"` // Links to advisories, etc.

	PreferredCVSS *CVSSDetails `json:"preferred_cvss,omitempty"`
}

// CVSSDetails holds the scores the scanner prefers for a vulnerability.
type CVSSDetails struct {
	ScoreV3  *float64 `json:"score_v3,omitempty"`
	ScoreV2  *float64 `json:"score_v2,omitempty"`
	VectorV3 string   `json:"vector_v3,omitempty"`
	VectorV2 string   `json:"vector_v2,omitempty"`
}

// Scanner identifies the scanner that produced a report.
type Scanner struct {
	Name    string `json:"name"`
	Vendor  string `json:"vendor"`
	Version string `json:"version"`
}

// VulnerabilityReport holds the results of a vulnerability scan for one artifact.
type VulnerabilityReport struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	Scanner         *Scanner        `json:"scanner,omitempty"`
	Severity        string          `json:"severity"` // highest severity found
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// IDs returns the identifiers of every vulnerability in the report, in report order.
func (r *VulnerabilityReport) IDs() []string {
	ids := make([]string, 0, len(r.Vulnerabilities))
	for _, v := range r.Vulnerabilities {
		ids = append(ids, v.ID)
	}
	return ids
}

// VulnerabilityReports is the body of an artifact's vulnerabilities addition,
// keyed by report media type. A key whose value is JSON null decodes to nil.
type VulnerabilityReports map[string]*VulnerabilityReport

// Lookup returns the report stored under mediaType. Missing keys and null
// reports are both reported as absent.
func (r VulnerabilityReports) Lookup(mediaType string) (*VulnerabilityReport, bool) {
	report, ok := r[mediaType]
	if !ok || report == nil {
		return nil, false
	}
	return report, true
}

// JoinedIDs returns the vulnerability identifiers joined with ", ".
func (r *VulnerabilityReport) JoinedIDs() string {
	return strings.Join(r.IDs(), ", ")
}
