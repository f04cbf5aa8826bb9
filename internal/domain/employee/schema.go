package employee

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"hrrecords/internal/platform/i18n"
)

// FormInput is an employee record as collected by a form: every scalar
// arrives as text, dates included.
type FormInput struct {
	Name              string              `json:"name" validate:"required,text"`
	NickName          string              `json:"nickName" validate:"required,text"`
	Profession        string              `json:"profession" validate:"required,text"`
	BirthDate         string              `json:"birthDate" validate:"required,isodate"`
	NationalID        string              `json:"nationalId" validate:"required,text"`
	MaritalStatus     string              `json:"maritalStatus" validate:"required,enum=maritalStatus"`
	ResidenceLocation string              `json:"residenceLocation" validate:"required,text"`
	HiringDate        string              `json:"hiringDate" validate:"required,isodate"`
	HiringType        string              `json:"hiringType" validate:"required,enum=hiringType"`
	Email             string              `json:"email" validate:"omitempty,email"`
	Administration    string              `json:"administration" validate:"required,enum=administration"`
	ActualWork        string              `json:"actualWork" validate:"required,text"`
	PhoneNumber       string              `json:"phoneNumber" validate:"required,text"`
	Notes             string              `json:"notes" validate:"text"`
	Relationships     []RelationshipInput `json:"relationships" validate:"dive"`
}

type RelationshipInput struct {
	RelationshipType  string `json:"relationshipType" validate:"required,enum=relationshipType"`
	Name              string `json:"name" validate:"required,text"`
	NationalID        string `json:"nationalId" validate:"required,text"`
	BirthDate         string `json:"birthDate" validate:"required,isodate"`
	BirthPlace        string `json:"birthPlace" validate:"text"`
	Profession        string `json:"profession" validate:"text"`
	SpouseName        string `json:"spouseName" validate:"text"`
	ResidenceLocation string `json:"residenceLocation" validate:"required,text"`
	Notes             string `json:"notes" validate:"text"`
}

// Blank reports whether every field of the row is empty.
func (r RelationshipInput) Blank() bool {
	return strings.TrimSpace(r.RelationshipType+r.Name+r.NationalID+r.BirthDate+
		r.BirthPlace+r.Profession+r.SpouseName+r.ResidenceLocation+r.Notes) == ""
}

// Schema is the single set of acceptance rules for an employee with its
// relationships. It is safe for concurrent use.
type Schema struct {
	validate *validator.Validate
	trans    map[string]ut.Translator
}

func NewSchema() *Schema {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("text", func(fl validator.FieldLevel) bool {
		return storableText(fl.Field().String())
	})
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		_, ok := i18n.Canonical(fl.Param(), fl.Field().String())
		return ok
	})

	uni := ut.New(ar.New(), ar.New(), en.New())
	s := &Schema{validate: v, trans: make(map[string]ut.Translator, 2)}
	for _, lang := range i18n.Supported {
		trans, _ := uni.GetTranslator(lang)
		registerTranslations(v, trans, lang)
		s.trans[lang] = trans
	}
	return s
}

var translatedTags = map[string]string{
	"required": i18n.MsgRequired,
	"email":    i18n.MsgEmail,
	"isodate":  i18n.MsgDate,
	"enum":     i18n.MsgEnum,
	"text":     i18n.MsgText,
}

func registerTranslations(v *validator.Validate, trans ut.Translator, lang string) {
	for tag, code := range translatedTags {
		tag, code := tag, code
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error {
				return t.Add(tag, i18n.Template(lang, code), true)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				label := i18n.FieldLabel(fe.Field(), lang, inRelationship(fe.Namespace()))
				msg, err := t.T(tag, label, strings.Join(i18n.Tokens(fe.Param()), ", "))
				if err != nil {
					return i18n.T(lang, i18n.MsgInvalidData)
				}
				return msg
			})
	}
}

// Validate checks in against every rule and returns the normalized payload.
// Rule failures come back as a *ValidationError; nothing panics.
func (s *Schema) Validate(in FormInput, lang string) (Payload, error) {
	if lang != i18n.English {
		lang = i18n.Arabic
	}
	in = in.trimmed()

	var issues []FieldIssue
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Payload{}, &ValidationError{Issues: []FieldIssue{{Message: i18n.T(lang, i18n.MsgInvalidData)}}}
		}
		for _, fe := range verrs {
			issues = append(issues, FieldIssue{Field: fieldPath(fe.Namespace()), Message: fe.Translate(s.trans[lang])})
		}
	}
	issues = append(issues, uniqueParentIssues(in.Relationships, lang)...)
	if len(issues) > 0 {
		return Payload{}, &ValidationError{Issues: issues}
	}
	return in.payload(), nil
}

// storableText rejects what a Postgres text column refuses: invalid UTF-8
// and NUL bytes.
func storableText(value string) bool {
	return utf8.ValidString(value) && !strings.ContainsRune(value, 0)
}

func uniqueParentIssues(rows []RelationshipInput, lang string) []FieldIssue {
	seen := map[RelationshipType]bool{}
	var issues []FieldIssue
	for i, row := range rows {
		token, ok := i18n.Canonical(i18n.GroupRelationshipType, row.RelationshipType)
		if !ok {
			continue
		}
		kind := RelationshipType(token)
		if !kind.Unique() {
			continue
		}
		if seen[kind] {
			issues = append(issues, FieldIssue{
				Field:   relationshipField(i, "relationshipType"),
				Message: i18n.T(lang, i18n.MsgDuplicateParent, i18n.Label(i18n.GroupRelationshipType, token, lang)),
			})
			continue
		}
		seen[kind] = true
	}
	return issues
}

func (in FormInput) trimmed() FormInput {
	out := FormInput{
		Name:              strings.TrimSpace(in.Name),
		NickName:          strings.TrimSpace(in.NickName),
		Profession:        strings.TrimSpace(in.Profession),
		BirthDate:         strings.TrimSpace(in.BirthDate),
		NationalID:        strings.TrimSpace(in.NationalID),
		MaritalStatus:     strings.TrimSpace(in.MaritalStatus),
		ResidenceLocation: strings.TrimSpace(in.ResidenceLocation),
		HiringDate:        strings.TrimSpace(in.HiringDate),
		HiringType:        strings.TrimSpace(in.HiringType),
		Email:             strings.TrimSpace(in.Email),
		Administration:    strings.TrimSpace(in.Administration),
		ActualWork:        strings.TrimSpace(in.ActualWork),
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		Notes:             strings.TrimSpace(in.Notes),
	}
	if len(in.Relationships) > 0 {
		out.Relationships = make([]RelationshipInput, len(in.Relationships))
		for i, r := range in.Relationships {
			out.Relationships[i] = RelationshipInput{
				RelationshipType:  strings.TrimSpace(r.RelationshipType),
				Name:              strings.TrimSpace(r.Name),
				NationalID:        strings.TrimSpace(r.NationalID),
				BirthDate:         strings.TrimSpace(r.BirthDate),
				BirthPlace:        strings.TrimSpace(r.BirthPlace),
				Profession:        strings.TrimSpace(r.Profession),
				SpouseName:        strings.TrimSpace(r.SpouseName),
				ResidenceLocation: strings.TrimSpace(r.ResidenceLocation),
				Notes:             strings.TrimSpace(r.Notes),
			}
		}
	}
	return out
}

// payload converts an already validated input.
func (in FormInput) payload() Payload {
	birth, _ := parseDate(in.BirthDate)
	hired, _ := parseDate(in.HiringDate)
	marital, _ := i18n.Canonical(i18n.GroupMaritalStatus, in.MaritalStatus)
	hiring, _ := i18n.Canonical(i18n.GroupHiringType, in.HiringType)
	admin, _ := i18n.Canonical(i18n.GroupAdministration, in.Administration)

	p := Payload{
		Name:              in.Name,
		NickName:          in.NickName,
		Profession:        in.Profession,
		BirthDate:         birth,
		NationalID:        in.NationalID,
		MaritalStatus:     MaritalStatus(marital),
		ResidenceLocation: in.ResidenceLocation,
		HiringDate:        hired,
		HiringType:        HiringType(hiring),
		Email:             optional(in.Email),
		Administration:    Administration(admin),
		ActualWork:        in.ActualWork,
		PhoneNumber:       in.PhoneNumber,
		Notes:             optional(in.Notes),
		Relationships:     make([]RelationshipPayload, 0, len(in.Relationships)),
	}
	for _, r := range in.Relationships {
		born, _ := parseDate(r.BirthDate)
		kind, _ := i18n.Canonical(i18n.GroupRelationshipType, r.RelationshipType)
		p.Relationships = append(p.Relationships, RelationshipPayload{
			RelationshipType:  RelationshipType(kind),
			Name:              r.Name,
			NationalID:        r.NationalID,
			BirthDate:         born,
			BirthPlace:        optional(r.BirthPlace),
			Profession:        optional(r.Profession),
			SpouseName:        optional(r.SpouseName),
			ResidenceLocation: r.ResidenceLocation,
			Notes:             optional(r.Notes),
		})
	}
	return p
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and keeps the
// calendar date only.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, value)
		if tsErr != nil {
			return time.Time{}, err
		}
		t = ts
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// fieldPath drops the root struct name validator puts in front of the path.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func inRelationship(namespace string) bool {
	return strings.Contains(namespace, "relationships[")
}

func relationshipField(index int, field string) string {
	return "relationships[" + strconv.Itoa(index) + "]." + field
}
