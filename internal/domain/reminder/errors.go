package reminder

import "errors"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidChannel   = errors.New("preferred channel must be one of IN_APP, SMS, EMAIL, WHATSAPP")
	ErrNoPhone          = errors.New("customer has no phone number")
	ErrNoEmail          = errors.New("customer has no email address")
	ErrUnknownChannel   = errors.New("unknown channel")
)
