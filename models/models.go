package models

import "github.com/google/uuid"

// All returns every persisted entity, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserAddress{},
		&UserPermission{},
		&NewsletterMember{},
		&Newsletter{},
		&Client{},
		&Portfolio{},
		&Contact{},
		&GuestVisit{},
	}
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
