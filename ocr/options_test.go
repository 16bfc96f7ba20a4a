package ocr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTesseractOptions(t *testing.T) {
	in := Input{}
	WithTesseractPSM(6)(&in)
	WithTesseractWhitelist("0123456789")(&in)
	want := map[string]string{VarPageSegMode: "6", VarWhitelist: "0123456789"}
	if diff := cmp.Diff(want, in.Metadata); diff != "" {
		t.Fatalf("metadata (-want +got):\n%s", diff)
	}
}

func TestTesseractDefaults(t *testing.T) {
	in := Input{}
	WithTesseractDefaults()(&in)
	if in.Metadata[VarPageSegMode] != "1" || len(in.Languages) != 1 || in.Languages[0] != "eng" {
		t.Fatalf("unexpected defaults: %+v", in)
	}

	in = Input{Languages: []string{"deu"}}
	WithTesseractPSM(4)(&in)
	WithTesseractDefaults()(&in)
	if in.Languages[0] != "deu" || in.Metadata[VarPageSegMode] != "4" {
		t.Fatalf("explicit settings overridden: %+v", in)
	}
}
