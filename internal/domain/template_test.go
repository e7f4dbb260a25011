package domain

import (
	"encoding/json"
	"testing"
)

func TestEmailTemplateValidate(t *testing.T) {
	valid := func() *EmailTemplate {
		return &EmailTemplate{
			OrganizationID: "org-1",
			Name:           "Welcome",
			Subject:        "Hello",
			BeeEditorJSON:  json.RawMessage(`{"page":{}}`),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*EmailTemplate)
		wantErr bool
	}{
		{"valid", func(*EmailTemplate) {}, false},
		{"missing org", func(t *EmailTemplate) { t.OrganizationID = "" }, true},
		{"missing name", func(t *EmailTemplate) { t.Name = "" }, true},
		{"missing subject", func(t *EmailTemplate) { t.Subject = "" }, true},
		{"missing json", func(t *EmailTemplate) { t.BeeEditorJSON = nil }, true},
		{"invalid json", func(t *EmailTemplate) { t.BeeEditorJSON = json.RawMessage(`{`) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := valid()
			tt.mutate(tmpl)
			err := tmpl.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
