package usecase

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// DefaultPhoneRegion é usada quando o telefone vem sem código do país.
var DefaultPhoneRegion = "BR"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return isValidPhoneNumber(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register phone validation: %v", err))
	}

	return &Validator{v: v}
}

var defaultValidator = NewValidator()

// Struct valida as tags `validate` e devolve um erro por campo.
func (val *Validator) Struct(s any) []ValidationError {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: messageFor(fe.Tag(), fe.Param())})
	}
	return out
}

// Var valida um valor solto; usado nos patches parciais.
func (val *Validator) Var(field string, value any, tag string) *ValidationError {
	err := val.v.Var(value, tag)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &ValidationError{Field: field, Message: messageFor(verrs[0].Tag(), verrs[0].Param())}
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

func messageFor(tag, param string) string {
	switch tag {
	case "required", "required_without":
		return "is required"
	case "email":
		return "is invalid"
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		return "must be at least " + param
	case "max":
		return "must not exceed " + param
	case "gte":
		return "must be greater than or equal to " + param
	default:
		return "failed on " + tag
	}
}

func isValidPhoneNumber(phone string) bool {
	if strings.TrimSpace(phone) == "" {
		return false
	}
	parsed, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}

// NormalizePhone devolve o telefone em E.164; se não for válido, só remove
// espaços das pontas.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

const (
	leadStatusOneOf     = "oneof=new contacted qualified converted lost"
	saleStatusOneOf     = "oneof=Pending Completed Cancelled"
	customerStatusOneOf = "oneof=Active Inactive"
	taskPriorityOneOf   = "oneof=low medium high"
	taskStatusOneOf     = "oneof=todo in-progress completed overdue"
)

type fieldChecks struct {
	val  *Validator
	errs []ValidationError
}

func (c *fieldChecks) check(field string, value any, tag string) {
	if e := c.val.Var(field, value, tag); e != nil {
		c.errs = append(c.errs, *e)
	}
}

func ValidateLeadPatch(p entity.LeadPatch) []ValidationError {
	c := fieldChecks{val: defaultValidator}
	if p.Name != nil {
		c.check("name", strings.TrimSpace(*p.Name), "required,min=2,max=200")
	}
	if p.Email != nil {
		c.check("email", *p.Email, "required,email")
	}
	if p.Phone != nil && *p.Phone != "" {
		c.check("phone", *p.Phone, "phone")
	}
	if p.Status != nil {
		c.check("status", string(*p.Status), leadStatusOneOf)
	}
	if p.Score != nil {
		c.check("score", *p.Score, "min=0,max=100")
	}
	if p.Value != nil {
		c.check("value", int64(*p.Value), "min=0")
	}
	return c.errs
}

func ValidateSalePatch(p entity.SalePatch) []ValidationError {
	c := fieldChecks{val: defaultValidator}
	if p.Customer != nil {
		c.check("customer", strings.TrimSpace(*p.Customer), "required")
	}
	if p.Product != nil {
		c.check("product", strings.TrimSpace(*p.Product), "required")
	}
	if p.Amount != nil {
		c.check("amount", int64(*p.Amount), "min=0")
	}
	if p.Status != nil {
		c.check("status", string(*p.Status), saleStatusOneOf)
	}
	return c.errs
}

func ValidateCustomerPatch(p entity.CustomerPatch) []ValidationError {
	c := fieldChecks{val: defaultValidator}
	if p.Name != nil {
		c.check("name", strings.TrimSpace(*p.Name), "required,min=2,max=200")
	}
	if p.Email != nil {
		c.check("email", *p.Email, "required,email")
	}
	if p.Phone != nil && *p.Phone != "" {
		c.check("phone", *p.Phone, "phone")
	}
	if p.Status != nil {
		c.check("status", string(*p.Status), customerStatusOneOf)
	}
	return c.errs
}

func ValidateTaskPatch(p entity.TaskPatch) []ValidationError {
	c := fieldChecks{val: defaultValidator}
	if p.Title != nil {
		c.check("title", strings.TrimSpace(*p.Title), "required,max=200")
	}
	if p.Priority != nil {
		c.check("priority", string(*p.Priority), taskPriorityOneOf)
	}
	if p.Status != nil {
		c.check("status", string(*p.Status), taskStatusOneOf)
	}
	if p.EstimatedHours != nil {
		c.check("estimated_hours", *p.EstimatedHours, "gte=0")
	}
	if p.ActualHours != nil {
		c.check("actual_hours", *p.ActualHours, "gte=0")
	}
	return c.errs
}
