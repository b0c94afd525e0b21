package models

// Language — язык интерфейса.
type Language struct {
	ISO  string `json:"iso"`
	Name string `json:"name"`
}

// Translation — одна строка перевода.
type Translation struct {
	LanguageISO string `json:"language_iso"`
	Key         string `json:"key"`
	Text        string `json:"text"`
}
