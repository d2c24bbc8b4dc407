package model

import "time"

// Subject is the topic a visitor picks on the contact form
type Subject string

const (
	SubjectProductQuestion Subject = "consulta_producto"
	SubjectQuote           Subject = "cotizacion"
	SubjectWarranty        Subject = "garantia"
	SubjectShipping        Subject = "envio"
	SubjectSupport         Subject = "soporte"
	SubjectOther           Subject = "otro"
)

// SubjectChoices lists contact subjects in form order
var SubjectChoices = []Choice{
	{string(SubjectProductQuestion), "Consulta sobre Productos"},
	{string(SubjectQuote), "Solicitar Cotización"},
	{string(SubjectWarranty), "Temas de Garantía"},
	{string(SubjectShipping), "Información de Envío"},
	{string(SubjectSupport), "Soporte Técnico"},
	{string(SubjectOther), "Otro"},
}

// Valid reports whether s is a known subject
func (s Subject) Valid() bool {
	return hasChoice(SubjectChoices, string(s))
}

// Label returns the display label of the subject
func (s Subject) Label() string {
	return choiceLabel(SubjectChoices, string(s))
}

// ContactMessage is a message left through the contact form
type ContactMessage struct {
	ID         uint       `json:"id" gorm:"primarykey"`
	Name       string     `json:"name" gorm:"type:varchar(100);not null"`
	Email      string     `json:"email" gorm:"type:varchar(254);not null"`
	Phone      string     `json:"phone" gorm:"type:varchar(30)"`
	City       string     `json:"city" gorm:"type:varchar(100)"`
	Subject    Subject    `json:"subject" gorm:"type:varchar(30);index;not null"`
	Message    string     `json:"message" gorm:"type:text;not null"`
	Consent    bool       `json:"consent"`
	Resolved   bool       `json:"resolved" gorm:"index"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Resolve marks the message handled at the given instant
func (m *ContactMessage) Resolve(at time.Time) {
	m.Resolved = true
	m.ResolvedAt = &at
}
