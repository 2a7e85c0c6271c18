package platform

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// ModelPlatform is a platform name that normalizes itself while it is decoded.
// Decoding runs before struct validation, so validators only ever see canonical names.
type ModelPlatform string

// NewModelPlatform normalizes a raw platform name.
func NewModelPlatform(raw string) ModelPlatform {
	return ModelPlatform(Normalize(raw))
}

// String returns the canonical platform name.
func (modelPlatform ModelPlatform) String() string {
	return string(modelPlatform)
}

// UnmarshalJSON decodes a JSON string and normalizes it. A JSON null leaves the value untouched.
func (modelPlatform *ModelPlatform) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	var raw string
	if decodeError := json.Unmarshal(data, &raw); decodeError != nil {
		return decodeError
	}
	*modelPlatform = NewModelPlatform(raw)
	return nil
}

// UnmarshalText normalizes text input such as flags or environment values.
func (modelPlatform *ModelPlatform) UnmarshalText(text []byte) error {
	*modelPlatform = NewModelPlatform(string(text))
	return nil
}

// OptionalModelPlatform is the nullable variant of ModelPlatform. The zero value is absent.
type OptionalModelPlatform struct {
	platform ModelPlatform
	present  bool
}

// SomeModelPlatform returns a present, normalized platform.
func SomeModelPlatform(raw string) OptionalModelPlatform {
	return OptionalModelPlatform{platform: NewModelPlatform(raw), present: true}
}

// NoModelPlatform returns an absent platform.
func NoModelPlatform() OptionalModelPlatform {
	return OptionalModelPlatform{}
}

// OptionalModelPlatformFromPointer converts a nullable string, normalizing it when present.
func OptionalModelPlatformFromPointer(raw *string) OptionalModelPlatform {
	normalized := NormalizeOptional(raw)
	if normalized == nil {
		return NoModelPlatform()
	}
	return OptionalModelPlatform{platform: ModelPlatform(*normalized), present: true}
}

// Get returns the platform and whether it is present.
func (optionalPlatform OptionalModelPlatform) Get() (ModelPlatform, bool) {
	return optionalPlatform.platform, optionalPlatform.present
}

// IsPresent reports whether a platform value was supplied.
func (optionalPlatform OptionalModelPlatform) IsPresent() bool {
	return optionalPlatform.present
}

// Pointer returns the canonical name or nil when absent.
func (optionalPlatform OptionalModelPlatform) Pointer() *string {
	if !optionalPlatform.present {
		return nil
	}
	value := string(optionalPlatform.platform)
	return &value
}

// UnmarshalJSON treats null as absent and normalizes strings.
func (optionalPlatform *OptionalModelPlatform) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*optionalPlatform = NoModelPlatform()
		return nil
	}
	var raw string
	if decodeError := json.Unmarshal(data, &raw); decodeError != nil {
		return decodeError
	}
	*optionalPlatform = SomeModelPlatform(raw)
	return nil
}

// MarshalJSON emits null when absent.
func (optionalPlatform OptionalModelPlatform) MarshalJSON() ([]byte, error) {
	if !optionalPlatform.present {
		return jsonNull, nil
	}
	return json.Marshal(string(optionalPlatform.platform))
}

// UnmarshalText marks the platform present and normalizes it.
func (optionalPlatform *OptionalModelPlatform) UnmarshalText(text []byte) error {
	*optionalPlatform = SomeModelPlatform(string(text))
	return nil
}
