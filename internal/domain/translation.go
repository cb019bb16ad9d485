package domain

import "time"

// Translation es una entrada del historial de un usuario.
type Translation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	CreatedAt      time.Time `json:"createdAt"`
}
