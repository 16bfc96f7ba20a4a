package ocr

import "strconv"

// Tesseract variables understood by the tesseract engine's Metadata.
const (
	VarPageSegMode = "tessedit_pageseg_mode"
	VarWhitelist   = "tessedit_char_whitelist"
)

func setVar(in *Input, key, val string) {
	if in.Metadata == nil {
		in.Metadata = make(map[string]string)
	}
	in.Metadata[key] = val
}

// WithTesseractPSM sets the page segmentation mode.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) { setVar(in, VarPageSegMode, strconv.Itoa(mode)) }
}

// WithTesseractWhitelist restricts recognition to chars.
func WithTesseractWhitelist(chars string) InputOption {
	return func(in *Input) { setVar(in, VarWhitelist, chars) }
}

// WithTesseractDefaults applies the settings the image backend uses for
// single-image documents: automatic page segmentation with OSD, English
// unless languages were given.
func WithTesseractDefaults() InputOption {
	return func(in *Input) {
		if _, ok := in.Metadata[VarPageSegMode]; !ok {
			WithTesseractPSM(1)(in)
		}
		if len(in.Languages) == 0 {
			in.Languages = []string{"eng"}
		}
	}
}
