package service

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
)

// Property types a schema may declare.
var propertyTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"array":   true,
	"object":  true,
	"null":    true,
}

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	colorHexPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	durationPattern = regexp.MustCompile(`^P(?:\d+Y)?(?:\d+M)?(?:\d+W)?(?:\d+D)?(?:T(?:\d+H)?(?:\d+M)?(?:\d+(?:\.\d+)?S)?)?$`)
)

// String format validators. A format outside this set is a malformed
// schema definition.
var formatValidators = map[string]func(string) bool{
	"date-time": func(v string) bool {
		_, err := time.Parse(time.RFC3339, v)
		return err == nil
	},
	"date": func(v string) bool {
		_, err := time.Parse("2006-01-02", v)
		return err == nil
	},
	"time": func(v string) bool {
		_, err := time.Parse("15:04:05", v)
		return err == nil
	},
	"duration": func(v string) bool {
		return v != "P" && durationPattern.MatchString(v)
	},
	"email":     func(v string) bool { return emailPattern.MatchString(v) },
	"idn-email": func(v string) bool { return emailPattern.MatchString(v) },
	"uuid": func(v string) bool {
		_, err := uuid.Parse(v)
		return err == nil
	},
	"hostname":     func(v string) bool { return hostnamePattern.MatchString(v) },
	"idn-hostname": func(v string) bool { return hostnamePattern.MatchString(v) },
	"ipv4": func(v string) bool {
		ip := net.ParseIP(v)
		return ip != nil && ip.To4() != nil
	},
	"ipv6": func(v string) bool {
		ip := net.ParseIP(v)
		return ip != nil && ip.To4() == nil
	},
	"uri": func(v string) bool {
		_, err := url.ParseRequestURI(v)
		return err == nil
	},
	"uri-reference": func(v string) bool {
		_, err := url.Parse(v)
		return err == nil
	},
	"url": func(v string) bool {
		parsed, err := url.Parse(v)
		return err == nil && parsed.Scheme != "" && parsed.Host != ""
	},
	"color":     func(v string) bool { return colorHexPattern.MatchString(v) },
	"color-hex": func(v string) bool { return colorHexPattern.MatchString(v) },
	"regex": func(v string) bool {
		_, err := regexp.Compile(v)
		return err == nil
	},
}

// Validator checks schema definitions for well-formedness and object
// payloads for conformance. Both levels accumulate every violation into
// one ValidationError instead of failing on the first.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDefinition checks that the schema's own rules are well
// formed. Returns nil when the definition is sound.
func (v *Validator) ValidateDefinition(schema *entity.Schema) error {
	issues := &exception.ValidationError{}
	properties, err := schema.PropertyMap()
	if err != nil {
		issues.Add("properties", "invalid property definitions: %v", err)
		return issues
	}
	for name, property := range properties {
		v.validateProperty(property, name, issues)
	}
	if issues.Empty() {
		return nil
	}
	return issues
}

func (v *Validator) validateProperty(property *entity.Property, path string, issues *exception.ValidationError) {
	if property == nil {
		issues.Add(path, "property definition is empty")
		return
	}
	if !propertyTypes[property.Type] {
		issues.Add(path, "unknown type %q", property.Type)
	}
	if property.Format != "" {
		if _, known := formatValidators[property.Format]; !known {
			issues.Add(path, "unknown format %q", property.Format)
		}
	}
	if property.Enum != nil && len(property.Enum) == 0 {
		issues.Add(path, "enum must not be empty")
	}
	if property.Minimum != nil && property.Maximum != nil && *property.Minimum > *property.Maximum {
		issues.Add(path, "minimum %v exceeds maximum %v", *property.Minimum, *property.Maximum)
	}
	if property.MinLength != nil && property.MaxLength != nil && *property.MinLength > *property.MaxLength {
		issues.Add(path, "minLength %d exceeds maxLength %d", *property.MinLength, *property.MaxLength)
	}
	if property.Pattern != "" {
		if _, err := regexp.Compile(property.Pattern); err != nil {
			issues.Add(path, "invalid pattern: %v", err)
		}
	}
	if property.Items != nil {
		v.validateProperty(property.Items, path+".items", issues)
	}
	for name, nested := range property.Properties {
		v.validateProperty(nested, path+"."+name, issues)
	}
}

// ValidateObject checks a payload against its schema, accumulating all
// violations. Returns nil when the payload conforms.
func (v *Validator) ValidateObject(payload map[string]interface{}, schema *entity.Schema) *exception.ValidationError {
	issues := &exception.ValidationError{}
	properties, err := schema.PropertyMap()
	if err != nil {
		issues.Add("properties", "invalid property definitions: %v", err)
		return issues
	}
	v.checkObject(payload, properties, schema.RequiredFields(), "", issues)
	if issues.Empty() {
		return nil
	}
	return issues
}

func (v *Validator) checkObject(payload map[string]interface{}, properties map[string]*entity.Property, required []string, path string, issues *exception.ValidationError) {
	for _, name := range required {
		value, present := payload[name]
		if !present || value == nil {
			issues.Add(join(path, name), "required field is missing")
		}
	}
	for name, property := range properties {
		value, present := payload[name]
		if !present || value == nil || property == nil {
			continue
		}
		v.checkValue(value, property, join(path, name), issues)
	}
}

func (v *Validator) checkValue(value interface{}, property *entity.Property, path string, issues *exception.ValidationError) {
	switch property.Type {
	case "string":
		typed, ok := value.(string)
		if !ok {
			issues.Add(path, "expected string, got %T", value)
			return
		}
		v.checkString(typed, property, path, issues)
	case "number":
		typed, ok := numeric(value)
		if !ok {
			issues.Add(path, "expected number, got %T", value)
			return
		}
		v.checkRange(typed, property, path, issues)
	case "integer":
		typed, ok := numeric(value)
		if !ok || typed != float64(int64(typed)) {
			issues.Add(path, "expected integer, got %v", value)
			return
		}
		v.checkRange(typed, property, path, issues)
	case "boolean":
		if _, ok := value.(bool); !ok {
			issues.Add(path, "expected boolean, got %T", value)
		}
	case "array":
		typed, ok := value.([]interface{})
		if !ok {
			issues.Add(path, "expected array, got %T", value)
			return
		}
		if property.Items != nil {
			for idx, item := range typed {
				if item == nil {
					continue
				}
				v.checkValue(item, property.Items, fmt.Sprintf("%s[%d]", path, idx), issues)
			}
		}
	case "object":
		typed, ok := value.(map[string]interface{})
		if !ok {
			issues.Add(path, "expected object, got %T", value)
			return
		}
		v.checkObject(typed, property.Properties, property.Required, path, issues)
	case "null":
		if value != nil {
			issues.Add(path, "expected null, got %T", value)
		}
	}
	if len(property.Enum) > 0 {
		v.checkEnum(value, property, path, issues)
	}
}

func (v *Validator) checkString(value string, property *entity.Property, path string, issues *exception.ValidationError) {
	if property.Format != "" {
		if validate, known := formatValidators[property.Format]; known && !validate(value) {
			issues.Add(path, "value does not match format %q", property.Format)
		}
	}
	if property.MinLength != nil && len(value) < *property.MinLength {
		issues.Add(path, "length %d is below minLength %d", len(value), *property.MinLength)
	}
	if property.MaxLength != nil && len(value) > *property.MaxLength {
		issues.Add(path, "length %d exceeds maxLength %d", len(value), *property.MaxLength)
	}
	if property.Pattern != "" {
		if matcher, err := regexp.Compile(property.Pattern); err == nil && !matcher.MatchString(value) {
			issues.Add(path, "value does not match pattern %q", property.Pattern)
		}
	}
}

func (v *Validator) checkRange(value float64, property *entity.Property, path string, issues *exception.ValidationError) {
	if property.Minimum != nil && value < *property.Minimum {
		issues.Add(path, "value %v is below minimum %v", value, *property.Minimum)
	}
	if property.Maximum != nil && value > *property.Maximum {
		issues.Add(path, "value %v exceeds maximum %v", value, *property.Maximum)
	}
}

func (v *Validator) checkEnum(value interface{}, property *entity.Property, path string, issues *exception.ValidationError) {
	for _, allowed := range property.Enum {
		if fmt.Sprint(allowed) == fmt.Sprint(value) {
			return
		}
	}
	issues.Add(path, "value %v is not in the allowed set", value)
}

func numeric(value interface{}) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	}
	return 0, false
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
