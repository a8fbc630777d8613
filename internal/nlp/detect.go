package nlp

import "github.com/abadojack/whatlanggo"

var supportedLangs = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Rus: "ru",
	whatlanggo.Swe: "sv",
	whatlanggo.Nob: "no",
	whatlanggo.Hun: "hu",
}

// Detector picks the pipeline language for a text.
type Detector struct {
	defaultLang string
	options     whatlanggo.Options
}

// NewDetector restricts detection to the languages the pipeline supports.
func NewDetector(defaultLang string) *Detector {
	if _, ok := snowballNames[defaultLang]; !ok {
		defaultLang = "en"
	}
	whitelist := make(map[whatlanggo.Lang]bool, len(supportedLangs))
	for l := range supportedLangs {
		whitelist[l] = true
	}
	return &Detector{
		defaultLang: defaultLang,
		options:     whatlanggo.Options{Whitelist: whitelist},
	}
}

// Detect returns an ISO 639-1 code. Unreliable results fall back to the default.
func (d *Detector) Detect(text string) string {
	info := whatlanggo.DetectWithOptions(text, d.options)
	if !info.IsReliable() {
		return d.defaultLang
	}
	if code, ok := supportedLangs[info.Lang]; ok {
		return code
	}
	return d.defaultLang
}
