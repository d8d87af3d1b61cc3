package mailer

import (
	"strings"
	"testing"
)

func TestSendBeautifulEmail_RequiresRecipient(t *testing.T) {
	client := NewClient(&Config{Host: "localhost", Port: 587, From: "no-reply@teamboard.local"}, nil)
	if err := client.SendBeautifulEmail("", "subject", "<p>hi</p>"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}

func TestWrapLayout(t *testing.T) {
	content := "<h2>Card moved</h2>"
	html := wrapLayout(content)

	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Fatalf("layout missing doctype: %q", html[:40])
	}
	if !strings.Contains(html, content) {
		t.Fatal("layout does not embed the content")
	}
	if !strings.Contains(html, "board automation") {
		t.Fatal("layout missing footer note")
	}
}
