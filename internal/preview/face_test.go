package preview

import (
	"strings"
	"testing"

	"github.com/amterp/wallet/internal/model"
)

func TestFaceOf_Empty(t *testing.T) {
	f := FaceOf(model.Card{CardColor: "#FFF07C"})

	if f.Holder != (Segment{Text: "JOHN DOE", Dimmed: true}) {
		t.Errorf("Holder = %+v", f.Holder)
	}
	for i, b := range f.Blocks {
		if b != (Segment{Text: MaskedBlock, Dimmed: true}) {
			t.Errorf("Blocks[%d] = %+v", i, b)
		}
	}
	if f.Expiry != (Segment{Text: "MM / YY", Dimmed: true}) {
		t.Errorf("Expiry = %+v", f.Expiry)
	}
	if f.CVC != (Segment{Text: "CVC", Dimmed: true}) {
		t.Errorf("CVC = %+v", f.CVC)
	}
	if f.Background != "#FFF07C" {
		t.Errorf("Background = %q", f.Background)
	}
}

func TestFaceOf_NumberBlocks(t *testing.T) {
	tests := []struct {
		number     string
		wantDimmed [4]bool
		wantLast   string
	}{
		{"", [4]bool{true, true, true, true}, MaskedBlock},
		{"424", [4]bool{true, true, true, true}, MaskedBlock},
		{"4242", [4]bool{false, true, true, true}, MaskedBlock},
		{"42424242", [4]bool{false, false, true, true}, MaskedBlock},
		{"424242424242", [4]bool{false, false, false, true}, MaskedBlock},
		{"424242424242424", [4]bool{false, false, false, true}, MaskedBlock},
		{"4242424242421234", [4]bool{false, false, false, false}, "1234"},
	}
	for _, tt := range tests {
		f := FaceOf(model.Card{Number: tt.number})
		for i, b := range f.Blocks {
			if b.Dimmed != tt.wantDimmed[i] {
				t.Errorf("number %q block %d dimmed = %v, want %v", tt.number, i, b.Dimmed, tt.wantDimmed[i])
			}
			if i < 3 && b.Text != MaskedBlock {
				t.Errorf("number %q block %d = %q, want masked", tt.number, i, b.Text)
			}
		}
		if f.Blocks[3].Text != tt.wantLast {
			t.Errorf("number %q last block = %q, want %q", tt.number, f.Blocks[3].Text, tt.wantLast)
		}
	}
}

func TestFaceOf_Filled(t *testing.T) {
	f := FaceOf(model.Card{
		HolderName:  "jane doe",
		Number:      "4242424242424242",
		ExpiryMonth: "12",
		ExpiryYear:  "",
		CVC:         "123",
		CardColor:   "#7EE8FA",
	})

	if f.Holder != (Segment{Text: "JANE DOE"}) {
		t.Errorf("Holder = %+v", f.Holder)
	}
	// Month entered, year pending: the line is not dimmed, year shows its placeholder
	if f.Expiry != (Segment{Text: "12 / YY"}) {
		t.Errorf("Expiry = %+v", f.Expiry)
	}
	if f.CVC != (Segment{Text: "123"}) {
		t.Errorf("CVC = %+v", f.CVC)
	}
	if got := f.NumberLine(); got != "●●●● ●●●● ●●●● 4242" {
		t.Errorf("NumberLine = %q", got)
	}
}

func TestRender_ContainsFaceText(t *testing.T) {
	out := Render(FaceOf(model.Card{
		HolderName:  "JANE DOE",
		Number:      "4242424242424242",
		ExpiryMonth: "12",
		ExpiryYear:  "30",
		CVC:         "123",
		CardColor:   "#7EE8FA",
	}), DefaultWidth)

	for _, want := range []string{"JANE DOE", "4242", "12 / 30", "123", MaskedBlock} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered card missing %q:\n%s", want, out)
		}
	}
}

func TestRender_NarrowWidthStillFits(t *testing.T) {
	out := Render(FaceOf(model.Card{Number: "4242424242424242"}), 1)
	if !strings.Contains(out, "4242") {
		t.Errorf("narrow render lost the number:\n%s", out)
	}
}

func TestFace_Redacted(t *testing.T) {
	f := FaceOf(model.Card{HolderName: "JANE", CVC: "123"}).Redacted()
	if f.CVC.Text != "●●●" || f.CVC.Dimmed {
		t.Errorf("CVC = %+v, want masked and not dimmed", f.CVC)
	}
	if f.Holder.Text != "JANE" {
		t.Errorf("Holder = %q, only the security code should change", f.Holder.Text)
	}

	empty := FaceOf(model.Card{}).Redacted()
	if empty.CVC.Text != PlaceholderCVC || !empty.CVC.Dimmed {
		t.Errorf("empty CVC = %+v, want dimmed placeholder", empty.CVC)
	}
}
