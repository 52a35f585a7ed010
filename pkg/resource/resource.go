// Package resource defines the data model shared by fetchers, stores and the
// sync orchestrator: the Subject that owns links, the persisted Resource link
// itself, and the transient Triple produced by a fetch step.
package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// Subject is a handle to an application record that owns resources.
// The record itself lives in the host application.
type Subject struct {
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`
}

// NewSubject creates a subject handle.
func NewSubject(subjectType, id string) Subject {
	return Subject{Type: subjectType, ID: id}
}

// String returns "type:id".
func (s Subject) String() string {
	return s.Type + ":" + s.ID
}

// Validate checks that both parts of the handle are set.
func (s Subject) Validate() error {
	if strings.TrimSpace(s.Type) == "" {
		return errors.NewValidationError("subject.type", s.Type, "cannot be empty")
	}
	if strings.TrimSpace(s.ID) == "" {
		return errors.NewValidationError("subject.id", s.ID, "cannot be empty")
	}
	return nil
}

// ParseSubject parses the "type:id" form produced by String.
func ParseSubject(s string) (Subject, error) {
	subjectType, id, ok := strings.Cut(s, ":")
	subject := Subject{Type: subjectType, ID: id}
	if !ok {
		return subject, errors.NewValidationError("subject", s, `expected "type:id"`)
	}
	return subject, subject.Validate()
}

// Resource is one external-identity link attached to exactly one subject.
// For a given subject there is at most one resource per provider.
type Resource struct {
	ID          string          `json:"id" yaml:"id"`
	SubjectType string          `json:"subject_type" yaml:"subject_type"`
	SubjectID   string          `json:"subject_id" yaml:"subject_id"`
	Provider    string          `json:"provider" yaml:"provider"`
	ProviderID  string          `json:"provider_id" yaml:"provider_id"`
	URL         string          `json:"url" yaml:"url"`
	FullJSON    json.RawMessage `json:"full_json,omitempty" yaml:"-"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"updated_at"`
}

// Subject returns the owning subject handle.
func (r Resource) Subject() Subject {
	return Subject{Type: r.SubjectType, ID: r.SubjectID}
}

// Triple returns the link part of the resource.
func (r Resource) Triple() Triple {
	return Triple{Provider: r.Provider, ProviderID: r.ProviderID, URL: r.URL, FullJSON: r.FullJSON}
}

// Triple is the transient {provider, provider_id, url} unit produced by a
// fetch step before it is reconciled into a Resource.
type Triple struct {
	Provider   string          `json:"provider" yaml:"provider"`
	ProviderID string          `json:"provider_id" yaml:"provider_id"`
	URL        string          `json:"url" yaml:"url"`
	FullJSON   json.RawMessage `json:"full_json,omitempty" yaml:"-"`
}

// String implements fmt.Stringer.
func (t Triple) String() string {
	return fmt.Sprintf("%s:%s", t.Provider, t.ProviderID)
}

// EncodeJSON serializes v as compact UTF-8 JSON without HTML escaping, so
// payloads round-trip byte-for-byte through the stores.
func EncodeJSON(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.WrapParse("json", "full_json", err)
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
