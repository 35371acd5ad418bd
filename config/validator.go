package config

// Validator is implemented by every module config.
type Validator interface {
	Validate() error
}

// ValidateAll stops at the first failing validator.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
