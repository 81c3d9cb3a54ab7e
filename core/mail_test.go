package core

import (
	"net/mail"
	"strings"
	"testing"
	"time"
)

// Rendering depends on the _base layouts being present in the embedded FS;
// without them every templated message comes out empty and is never sent.
func TestEmailMessageRender(t *testing.T) {
	conf := &Config{TestMode: true, FrontendBaseURL: "http://localhost:3000"}

	msg := &EmailMessage{
		To:           []mail.Address{{Name: "Mai Moyo", Address: "mai@test.zw"}},
		Subject:      "School fees reminder",
		TemplateName: "fee_reminder",
		TemplateData: struct {
			ParentName  string
			StudentName string
			FeeType     string
			Outstanding float64
			DueDate     time.Time
		}{
			ParentName:  "Mai Moyo",
			StudentName: "Tinashe Moyo",
			FeeType:     "Tuition",
			Outstanding: 200,
			DueDate:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	if err := msg.Render(conf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !msg.HasContent() {
		t.Fatal("Render() produced no content")
	}

	for _, want := range []string{"Mai Moyo", "Tinashe Moyo", "$200.00", "1 October 2026", "The Educ8 Team"} {
		if !strings.Contains(msg.TextContent, want) {
			t.Errorf("TextContent missing %q:\n%s", want, msg.TextContent)
		}
	}
	for _, want := range []string{"$200.00", "The Educ8 Team", conf.FrontendBaseURL + "/fees"} {
		if !strings.Contains(msg.HTMLContent, want) {
			t.Errorf("HTMLContent missing %q", want)
		}
	}
}

func TestEmailMessageRenderPlainBody(t *testing.T) {
	conf := &Config{TestMode: true}

	msg := &EmailMessage{
		To:      []mail.Address{{Address: "admin@test.zw"}},
		Subject: "hi",
		BodyStr: "plain content",
	}
	if err := msg.Render(conf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if msg.TextContent != "plain content" {
		t.Errorf("TextContent = %q, want %q", msg.TextContent, "plain content")
	}
	if msg.HTMLContent != "" {
		t.Errorf("HTMLContent = %q, want empty", msg.HTMLContent)
	}
}
