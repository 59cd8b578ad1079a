package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/model"
)

var (
	trans    ut.Translator
	validate *govalidator.Validate
	once     sync.Once
)

// Normalizer is implemented by payloads that trim or coerce their fields
// before validation.
type Normalizer interface {
	Normalize()
}

// Messenger is implemented by payloads that override the default English
// message for a "field.tag" pair.
type Messenger interface {
	Messages() map[string]string
}

// Partial is implemented by partial-update payloads; an empty one is rejected.
type Partial interface {
	Empty() bool
}

// Setup registers the validator with English translations on Gin's binding engine.
// Safe to call more than once.
func Setup() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			v = govalidator.New()
			v.SetTagName("binding")
		}

		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		validate = v
	})
}

// TranslateErrors turns a validation error into field name → message.
// msgs overrides the translation for "field.tag" keys. Errors that are not
// validation errors land under "body" with a fixed message.
func TranslateErrors(err error, msgs map[string]string) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if _, seen := fields[fe.Field()]; seen {
				continue
			}
			if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
				fields[fe.Field()] = m
				continue
			}
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields[typeErr.Field] = typeMessage(typeErr.Field, typeErr.Type, msgs)
		return fields
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		fields["body"] = MsgMalformedBody
		return fields
	}

	fields["body"] = MsgBodyNotObject
	return fields
}

const (
	MsgMalformedBody = "Malformed JSON body"
	MsgBodyNotObject = "Request body must be a JSON object"
)

// Bind decodes the JSON body into dst, normalizes it and validates every
// constraint in one pass. Unknown fields are ignored. A field with the wrong
// JSON type is reported alongside the constraint failures of the others.
// The returned error is an *apperr.Error of KindValidation.
func Bind(c *gin.Context, dst any) error {
	Setup()

	var msgs map[string]string
	if m, ok := dst.(Messenger); ok {
		msgs = m.Messages()
	}

	var typeFields map[string]string
	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return apperr.Validation(MsgMalformedBody, "body")
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, dst); err != nil {
				var typeErr *json.UnmarshalTypeError
				if !errors.As(err, &typeErr) || typeErr.Field == "" {
					return apperr.ValidationFields(TranslateErrors(err, msgs))
				}
				typeFields = fieldTypeErrors(body, dst, msgs)
				if len(typeFields) == 0 {
					typeFields = TranslateErrors(err, msgs)
				}
			}
		}
	}

	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}

	if p, ok := dst.(Partial); ok && p.Empty() && len(typeFields) == 0 {
		return apperr.Validation(model.MsgEmptyUpdate, "body")
	}

	fields := make(map[string]string, len(typeFields))
	if err := validate.Struct(dst); err != nil {
		for field, msg := range TranslateErrors(err, msgs) {
			fields[field] = msg
		}
	}
	// the type message wins over whatever the zero value tripped
	for field, msg := range typeFields {
		fields[field] = msg
	}

	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}

// fieldTypeErrors re-checks every top-level member of body against the
// struct field it targets and reports each one with the wrong JSON type.
func fieldTypeErrors(body []byte, dst any, msgs map[string]string) map[string]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	t := reflect.TypeOf(dst)
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil
	}
	t = t.Elem()

	fields := make(map[string]string)
	for key, val := range raw {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := jsonName(f)
			if name == "" || !strings.EqualFold(name, key) {
				continue
			}
			var typeErr *json.UnmarshalTypeError
			if err := json.Unmarshal(val, reflect.New(f.Type).Interface()); errors.As(err, &typeErr) {
				fields[name] = typeMessage(name, f.Type, msgs)
			}
			break
		}
	}
	return fields
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func typeMessage(field string, t reflect.Type, msgs map[string]string) string {
	if m, ok := msgs[field+".type"]; ok {
		return m
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kind := "valid value"
	if t != nil {
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			kind = "number"
		case reflect.String:
			kind = "string"
		case reflect.Bool:
			kind = "boolean"
		}
	}
	return field + " must be a " + kind
}

// BindID parses the named route parameter as a positive id that fits the
// INTEGER key columns.
func BindID(c *gin.Context, param string) (int, error) {
	Setup()

	id, err := strconv.Atoi(c.Param(param))
	if err != nil {
		return 0, apperr.Validation(model.MsgInvalidID, param)
	}
	if err := validate.Var(id, "required,gt=0,lte="+strconv.Itoa(model.MaxID)); err != nil {
		return 0, apperr.Validation(model.MsgInvalidID, param)
	}
	return id, nil
}
