package ocr

import "strings"

// tesseractLanguages maps short language codes, including the PaddleOCR
// names callers already use, to Tesseract traineddata names.
var tesseractLanguages = map[string]string{
	"en":          "eng",
	"de":          "deu",
	"german":      "deu",
	"fr":          "fra",
	"french":      "fra",
	"es":          "spa",
	"it":          "ita",
	"pt":          "por",
	"nl":          "nld",
	"sv":          "swe",
	"da":          "dan",
	"no":          "nor",
	"fi":          "fin",
	"pl":          "pol",
	"cs":          "ces",
	"tr":          "tur",
	"ru":          "rus",
	"uk":          "ukr",
	"ar":          "ara",
	"fa":          "fas",
	"hi":          "hin",
	"id":          "ind",
	"vi":          "vie",
	"th":          "tha",
	"ja":          "jpn",
	"japan":       "jpn",
	"ko":          "kor",
	"korean":      "kor",
	"ch":          "chi_sim",
	"zh":          "chi_sim",
	"chinese_cht": "chi_tra",
}

// TesseractLanguage converts a caller language code into a Tesseract one.
// Codes joined with '+' are converted one by one. Unknown codes, including
// codes that already are Tesseract names, pass through unchanged.
func TesseractLanguage(lang string) string {
	lang = NormalizeLanguage(lang)
	parts := strings.Split(lang, "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if mapped, ok := tesseractLanguages[strings.ToLower(p)]; ok {
			p = mapped
		}
		parts[i] = p
	}
	return strings.Join(parts, "+")
}
