package cli

import (
	"strings"
	"testing"
)

func TestRenderCardID_Untokenized(t *testing.T) {
	if got := RenderCardID(""); !strings.Contains(got, "(no token)") {
		t.Errorf("RenderCardID(\"\") = %q, want placeholder", got)
	}
	if got := RenderCardID("tokn_test_1"); !strings.Contains(got, "tokn_test_1") {
		t.Errorf("RenderCardID = %q, want the id", got)
	}
}

func TestRenderMaskedNumber(t *testing.T) {
	if got := RenderMaskedNumber("4242"); got != "•••• 4242" {
		t.Errorf("RenderMaskedNumber = %q", got)
	}
}

func TestRenderHolder_Blank(t *testing.T) {
	if got := RenderHolder("  "); !strings.Contains(got, "(no name)") {
		t.Errorf("RenderHolder(blank) = %q, want placeholder", got)
	}
}

func TestRenderAmount(t *testing.T) {
	if got := RenderAmount(2003, "thb"); !strings.Contains(got, "20.03 THB") {
		t.Errorf("RenderAmount = %q", got)
	}
}

func TestLabelValue_AlignsLabel(t *testing.T) {
	got := LabelValue("ID", "x", 8)
	if !strings.HasSuffix(got, " x") || !strings.Contains(got, "ID:") {
		t.Errorf("LabelValue = %q", got)
	}
}
