package form

import (
	"context"
	"errors"

	"hrrecords/internal/domain/employee"
	"hrrecords/internal/platform/i18n"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ListPath is where a successful submit sends the user.
const ListPath = "/employees"

// State is what the form renders. It never carries domain data other than
// the saved employee.
type State struct {
	Status      Status             `json:"status"`
	Code        string             `json:"code,omitempty"`
	FieldErrors map[string]string  `json:"fieldErrors,omitempty"`
	Message     string             `json:"message,omitempty"`
	Redirect    string             `json:"redirect,omitempty"`
	Employee    *employee.Employee `json:"employee,omitempty"`
}

// Submitter is the repository side of a submit.
type Submitter interface {
	Validate(in employee.FormInput, lang string) (employee.Payload, error)
	Create(ctx context.Context, actor employee.Actor, in employee.FormInput, lang string) (employee.Employee, error)
	Update(ctx context.Context, actor employee.Actor, id string, in employee.FormInput, lang string) (employee.Employee, error)
}

type Controller struct {
	Submitter Submitter
}

func NewController(submitter Submitter) *Controller {
	return &Controller{Submitter: submitter}
}

func Idle() State {
	return State{Status: StatusIdle}
}

func Submitting() State {
	return State{Status: StatusSubmitting}
}

// DefaultInput is the blank create form.
func DefaultInput() employee.FormInput {
	return employee.FormInput{
		MaritalStatus: string(employee.MaritalSingle),
		HiringType:    string(employee.HiringFullTime),
		Relationships: []employee.RelationshipInput{},
	}
}

// Check runs the shared schema without touching storage, as a form does
// before submitting.
func (c *Controller) Check(in employee.FormInput, lang string) State {
	if _, err := c.Submitter.Validate(in, lang); err != nil {
		return failure(err, ModeCreate, lang)
	}
	return Idle()
}

func (c *Controller) Submit(ctx context.Context, actor employee.Actor, mode Mode, id string, in employee.FormInput, lang string) State {
	var (
		emp employee.Employee
		err error
	)
	if mode == ModeEdit {
		emp, err = c.Submitter.Update(ctx, actor, id, in, lang)
	} else {
		emp, err = c.Submitter.Create(ctx, actor, in, lang)
	}
	if err != nil {
		return failure(err, mode, lang)
	}

	msg := i18n.MsgEmployeeCreated
	if mode == ModeEdit {
		msg = i18n.MsgEmployeeUpdated
	}
	return State{
		Status:   StatusSucceeded,
		Message:  i18n.T(lang, msg),
		Redirect: ListPath,
		Employee: &emp,
	}
}

func failure(err error, mode Mode, lang string) State {
	var verr *employee.ValidationError
	switch {
	case errors.As(err, &verr):
		return State{Status: StatusFailed, Code: i18n.MsgInvalidData, FieldErrors: verr.Fields(), Message: i18n.T(lang, i18n.MsgInvalidData)}
	case errors.Is(err, employee.ErrNotFound):
		return State{Status: StatusFailed, Code: i18n.MsgEmployeeNotFound, Message: i18n.T(lang, i18n.MsgEmployeeNotFound)}
	}
	code := i18n.MsgCreateFailed
	if mode == ModeEdit {
		code = i18n.MsgUpdateFailed
	}
	return State{Status: StatusFailed, Code: code, Message: i18n.T(lang, code)}
}
