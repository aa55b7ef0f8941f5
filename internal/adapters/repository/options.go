package repository

import "github.com/google/uuid"

// Option configures an in-memory store.
type Option func(*settings)

type settings struct {
	newID func() string
}

func defaults() settings {
	return settings{newID: uuid.NewString}
}

func apply(opts []Option) settings {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithIDGenerator replaces the UUID generator used for records stored without an ID.
func WithIDGenerator(gen func() string) Option {
	return func(s *settings) {
		if gen != nil {
			s.newID = gen
		}
	}
}
