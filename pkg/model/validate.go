package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag = "notblank"
	kindTag     = "kind"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names (name, type, youtubeLink) instead of Go names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation(kindTag, func(fl validator.FieldLevel) bool {
		return Kind(fl.Field().String()).IsValid()
	})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, kindTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case kindTag:
		return fmt.Sprintf("unknown entity type %q", fe.Value())
	default:
		return ""
	}
}

// ValidationIssue describes one problem found in a decoded entity tree.
// Issues are informational: the entity stays in the tree.
type ValidationIssue struct {
	Path    string `json:"path"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks every entity in the forest and returns the issues found,
// in tree order. Malformed records are reported even when their decoded
// fields pass validation.
func Validate(forest []*Entity) []ValidationIssue {
	var issues []ValidationIssue
	for i, root := range forest {
		if root == nil {
			continue
		}
		prefix := fmt.Sprintf("[%d]", i)
		if err := validate.Struct(root); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range verrs {
					issues = append(issues, ValidationIssue{
						Path:    prefix + trimNamespace(fe.Namespace()),
						Field:   fe.Field(),
						Message: fe.Translate(translator),
					})
				}
			}
		}
		issues = append(issues, malformedIssues(root, prefix, 0)...)
	}
	return issues
}

// trimNamespace drops the leading struct name ("Entity.children[0].name"
// becomes ".children[0].name").
func trimNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i:]
	}
	return ns
}

const maxValidateDepth = 64

func malformedIssues(e *Entity, path string, depth int) []ValidationIssue {
	if e == nil || depth > maxValidateDepth {
		return nil
	}
	var issues []ValidationIssue
	if e.Malformed {
		issues = append(issues, ValidationIssue{
			Path:    path,
			Message: fmt.Sprintf("malformed record %q", e.Label()),
		})
	}
	for i, child := range e.Children {
		issues = append(issues, malformedIssues(child, fmt.Sprintf("%s.children[%d]", path, i), depth+1)...)
	}
	return issues
}
