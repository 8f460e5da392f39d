package validate

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var validate *validator.Validate

var translator ut.Translator

// basicEmail is deliberately loose: something@something.tld with no spaces.
var basicEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func init() {

	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return basicEmail.MatchString(fl.Field().String())
	})
	validate.RegisterTranslation("basic_email", translator,
		func(ut ut.Translator) error {
			return ut.Add("basic_email", "Invalid email format", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("basic_email")
			return t
		},
	)
}

// FieldErrors maps a field's JSON name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+fe[k])
	}
	return strings.Join(msgs, "; ")
}

// Fields lets weberr attach every violation to the response log.
func (fe FieldErrors) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(fe))
	for k, v := range fe {
		out["field_"+k] = v
	}
	return out
}

// CheckFields reports every violation at once, keyed by field. Messages
// from the msgs map override the translated default for that field.
func CheckFields(val any, msgs map[string]string) FieldErrors {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	fe := make(FieldErrors)
	verrors, ok := err.(validator.ValidationErrors)
	if !ok {
		fe["_"] = err.Error()
		return fe
	}

	for _, v := range verrors {
		field := v.Field()
		if _, seen := fe[field]; seen {
			continue
		}
		if m, ok := msgs[field+"."+v.Tag()]; ok {
			fe[field] = m
			continue
		}
		fe[field] = v.Translate(translator)
	}
	return fe
}
