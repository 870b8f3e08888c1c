package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"worksheet-quiz/internal/domain"
)

// Document is one raw worksheet file handed over by a file source. Err is set
// when the source failed to read it.
type Document struct {
	Name string
	Data []byte
	Err  error
}

// IsWorksheetFile reports whether a file name should be treated as a worksheet document.
func IsWorksheetFile(name string) bool {
	return strings.EqualFold(path.Ext(name), ".json")
}

// FilterDocuments drops documents whose names are not .json files.
func FilterDocuments(docs []Document) []Document {
	kept := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if IsWorksheetFile(doc.Name) {
			kept = append(kept, doc)
		}
	}
	return kept
}

// textValue accepts either a JSON string or a JSON number.
type textValue string

func (t *textValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = textValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = textValue(n.String())
	return nil
}

type worksheetDocument struct {
	Code        textValue          `json:"code" validate:"required,worksheet_code"`
	Title       textValue          `json:"title" validate:"required"`
	Subject     textValue          `json:"subject" validate:"required"`
	Level       textValue          `json:"level" validate:"required"`
	Topic       textValue          `json:"topic"`
	Difficulty  textValue          `json:"difficulty"`
	Description textValue          `json:"description"`
	Author      textValue          `json:"author"`
	Created     textValue          `json:"created"`
	Questions   []questionDocument `json:"questions" validate:"required,min=1"`
}

type questionDocument struct {
	ID            textValue `json:"id" validate:"required"`
	Question      textValue `json:"question" validate:"required"`
	Options       []string  `json:"options" validate:"required,len=4"`
	CorrectAnswer *int      `json:"correctAnswer" validate:"required,min=0,max=3"`
	Points        *float64  `json:"points" validate:"required,gt=0"`
}

var codePattern = regexp.MustCompile(`^\d{6}$`)

var documentValidator = newDocumentValidator()

func newDocumentValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("worksheet_code", func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	})
	return v
}

// ParseDocument decodes and validates one worksheet document. Malformed text
// yields a *domain.ParseError, schema violations a *domain.ValidationError.
func ParseDocument(name string, raw []byte) (domain.Worksheet, error) {
	var doc worksheetDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "document"
			}
			return domain.Worksheet{}, &domain.ValidationError{
				Document: name,
				Field:    field,
				Reason:   fmt.Sprintf("must be %s, not %s", describeKind(typeErr.Type), typeErr.Value),
			}
		}
		return domain.Worksheet{}, &domain.ParseError{Document: name, Err: err}
	}

	if err := documentValidator.Struct(doc); err != nil {
		return domain.Worksheet{}, validationError(name, 0, "", err)
	}
	for i, q := range doc.Questions {
		if err := documentValidator.Struct(q); err != nil {
			return domain.Worksheet{}, validationError(name, i+1, string(q.ID), err)
		}
	}

	return doc.worksheet(), nil
}

func (d worksheetDocument) worksheet() domain.Worksheet {
	ws := domain.Worksheet{
		Code:        string(d.Code),
		Title:       string(d.Title),
		Subject:     string(d.Subject),
		Level:       string(d.Level),
		Topic:       string(d.Topic),
		Difficulty:  string(d.Difficulty),
		Description: string(d.Description),
		Author:      string(d.Author),
		Created:     string(d.Created),
		Questions:   make([]domain.Question, 0, len(d.Questions)),
	}
	for _, q := range d.Questions {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		ws.Questions = append(ws.Questions, domain.Question{
			ID:            string(q.ID),
			Question:      string(q.Question),
			Options:       options,
			CorrectAnswer: *q.CorrectAnswer,
			Points:        *q.Points,
		})
	}
	return ws
}

func validationError(document string, question int, questionID string, err error) error {
	verr := &domain.ValidationError{
		Document:   document,
		Question:   question,
		QuestionID: questionID,
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		verr.Field = "document"
		verr.Reason = err.Error()
		return verr
	}
	fe := fieldErrs[0]
	verr.Field = fe.Field()
	verr.Reason = describeRule(fe)
	return verr
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "worksheet_code":
		return "must be exactly 6 digits"
	case "len":
		return "must have exactly " + fe.Param() + " entries"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " entry"
		}
		return "must be between 0 and 3"
	case "max":
		return "must be between 0 and 3"
	case "gt":
		return "must be positive"
	default:
		return "failed " + fe.Tag()
	}
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "a different type"
	}
	switch t.Kind() {
	case reflect.Slice:
		return "a list"
	case reflect.Struct:
		return "an object"
	case reflect.Int, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	default:
		return strconv.Quote(t.String())
	}
}
