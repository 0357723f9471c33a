package gen

import (
	"errors"

	"go.uber.org/zap"
)

// Option configures code generation.
type Option func(*Config) error

// WithRootTypeName sets the name of the root aggregate type.
func WithRootTypeName(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("RootTypeName", nil, "root type name cannot be empty")
		}
		if !isIdent(name) {
			return NewConfigError("RootTypeName", name, "root type name must be a valid identifier")
		}
		c.RootTypeName = name
		return nil
	}
}

// WithReferenceUnions toggles "id | Type" unions for relationship fields.
func WithReferenceUnions(enabled bool) Option {
	return func(c *Config) error {
		c.UseReferenceUnions = enabled
		return nil
	}
}

// WithRequiredFields toggles the optional marker on nullable fields.
// When enabled, every field is emitted as required.
func WithRequiredFields(enabled bool) Option {
	return func(c *Config) error {
		c.MakeFieldsRequired = enabled
		return nil
	}
}

// WithSystemFields toggles merging of built-in system fields.
func WithSystemFields(enabled bool) Option {
	return func(c *Config) error {
		c.IncludeSystemFields = enabled
		return nil
	}
}

// WithSystemEntities toggles listing system entities in the root type.
func WithSystemEntities(enabled bool) Option {
	return func(c *Config) error {
		c.ExportSystemEntities = enabled
		return nil
	}
}

// WithSystemFallbackRelations toggles the catalog's built-in relations.
func WithSystemFallbackRelations(enabled bool) Option {
	return func(c *Config) error {
		c.ResolveSystemFallbackRelations = enabled
		return nil
	}
}

// WithNotes toggles emitting field notes as doc comments.
func WithNotes(enabled bool) Option {
	return func(c *Config) error {
		c.AnnotateWithNotes = enabled
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of the generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithTarget sets the output file path.
func WithTarget(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("Target", nil, "target path cannot be empty")
		}
		c.Target = path
		return nil
	}
}

// WithConventions sets the naming conventions. Unset values fall back
// to DefaultConventions.
func WithConventions(conv *Conventions) Option {
	return func(c *Config) error {
		if conv == nil {
			return NewConfigError("Conventions", nil, "conventions cannot be nil")
		}
		c.Conventions = conv
		return nil
	}
}

// WithCatalog sets the system-entity catalog.
func WithCatalog(cat *Catalog) Option {
	return func(c *Config) error {
		if cat == nil {
			return NewConfigError("Catalog", nil, "catalog cannot be nil")
		}
		c.Catalog = cat
		return nil
	}
}

// WithLogger sets the logger used for resolution warnings.
func WithLogger(log *zap.Logger) Option {
	return func(c *Config) error {
		if log == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = log
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
