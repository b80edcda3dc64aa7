package core

// Language is an entry of the supported-language list shown to clients.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages is informational; requests are never validated against it.
var Languages = []Language{
	{Code: AutoDetect, Name: "Auto detect"},
	{Code: "en", Name: "English"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "fr", Name: "French"},
}

// LanguageName returns the display name for code, or code itself when unknown.
func LanguageName(code string) string {
	for _, lang := range Languages {
		if lang.Code == code {
			return lang.Name
		}
	}
	return code
}
