package dataset

import "github.com/okian/recap/pkg/logger"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger replaces the loader's logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithExtension changes the file extension datasets are looked up with.
func WithExtension(ext string) Option {
	return func(ld *Loader) {
		if ext != "" {
			ld.ext = ext
		}
	}
}
