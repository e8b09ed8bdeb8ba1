package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Edit   func(EditArgs) (Result, error)
	Status func(StatusArgs) (Result, error)
	Delete func(DeleteArgs) (Result, error)
	Filter func(FilterArgs) (Result, error)
	Remind func() (Result, error)
	Notify func(NotifyArgs) (Result, error)
	Window func(WindowArgs) (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, missing("edit")
		}
		return handlers.Edit(*cmd.Edit)
	case TypeStatus:
		if handlers.Status == nil {
			return Result{}, missing("status")
		}
		return handlers.Status(*cmd.Status)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing("delete")
		}
		return handlers.Delete(*cmd.Delete)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing("filter")
		}
		return handlers.Filter(*cmd.Filter)
	case TypeRemind:
		if handlers.Remind == nil {
			return Result{}, missing("remind")
		}
		return handlers.Remind()
	case TypeNotify:
		if handlers.Notify == nil {
			return Result{}, missing("notify")
		}
		return handlers.Notify(*cmd.Notify)
	case TypeWindow:
		if handlers.Window == nil {
			return Result{}, missing("window")
		}
		return handlers.Window(*cmd.Window)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
