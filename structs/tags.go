package structs

import (
	"reflect"
	"strconv"
	"strings"
)

// TagName is the struct tag read by the extractor.
const TagName = "factory"

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key used in built instances and overrides.
// Priority: factory:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if ft := sf.Tag.Get(TagName); ft != "" {
		if strings.TrimSpace(ft) == "-" {
			return "-"
		}
		for _, p := range strings.Split(ft, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if i == 0 {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// tagOptions are the field-level settings of a factory tag, e.g.
//
//	`factory:"min=1,max=9,optional"`
//	`factory:"kind=email,required"`
//	`factory:"enum=red|green|blue"`
//	`factory:"size=1:3"`
type tagOptions struct {
	kind     string
	enum     []string
	min, max *float64
	minLen   *int
	maxLen   *int
	size     *[2]int
	optional bool
	required bool
	ignore   bool
}

func parseTag(sf reflect.StructField) (tagOptions, error) {
	var o tagOptions
	raw := sf.Tag.Get(TagName)
	if raw == "" {
		return o, nil
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		key, val, _ := strings.Cut(p, "=")
		var err error
		switch key {
		case "", "name", "-":
		case "optional":
			o.optional = true
		case "required":
			o.required = true
		case "ignore":
			o.ignore = true
		case "kind":
			o.kind = val
		case "enum":
			o.enum = strings.Split(val, "|")
		case "min":
			o.min, err = parseFloat(val)
		case "max":
			o.max, err = parseFloat(val)
		case "minlen":
			o.minLen, err = parseInt(val)
		case "maxlen":
			o.maxLen, err = parseInt(val)
		case "size":
			lo, hi, ok := strings.Cut(val, ":")
			if !ok {
				hi = lo
			}
			var a, b *int
			if a, err = parseInt(lo); err == nil {
				if b, err = parseInt(hi); err == nil {
					o.size = &[2]int{*a, *b}
				}
			}
		default:
			return o, &TagError{Field: sf.Name, Option: p}
		}
		if err != nil {
			return o, &TagError{Field: sf.Name, Option: p, Cause: err}
		}
	}
	return o, nil
}

func parseFloat(s string) (*float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseInt(s string) (*int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// TagError reports an unknown or malformed factory tag option.
type TagError struct {
	Field  string
	Option string
	Cause  error
}

func (e *TagError) Error() string {
	if e.Cause != nil {
		return "structs: field " + e.Field + ": bad tag option " + strconv.Quote(e.Option) + ": " + e.Cause.Error()
	}
	return "structs: field " + e.Field + ": unknown tag option " + strconv.Quote(e.Option)
}

func (e *TagError) Unwrap() error { return e.Cause }
