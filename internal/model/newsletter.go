package model

import "time"

// NewsletterSubscription is one mailing list entry
type NewsletterSubscription struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Email        string    `json:"email" gorm:"type:varchar(254);uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"type:varchar(100)"`
	Active       bool      `json:"active" gorm:"index"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"autoCreateTime"`
}

// Tables lists every entity migrated at startup
var Tables = []interface{}{
	&Category{},
	&Brand{},
	&Product{},
	&ImageRendition{},
	&Testimonial{},
	&ContactMessage{},
	&NewsletterSubscription{},
}
