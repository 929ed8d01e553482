package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Done   func(TaskRefArgs) (Result, error)
	Undone func(TaskRefArgs) (Result, error)
	Remove func(TaskRefArgs) (Result, error)
	Due    func(DueArgs) (Result, error)
	Sort   func(SortArgs) (Result, error)
	Filter func(FilterArgs) (Result, error)
	Show   func(TaskRefArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missingHandler("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missingHandler("done")
		}
		return handlers.Done(*cmd.Done)
	case TypeUndone:
		if handlers.Undone == nil {
			return Result{}, missingHandler("undone")
		}
		return handlers.Undone(*cmd.Undone)
	case TypeRemove:
		if handlers.Remove == nil {
			return Result{}, missingHandler("rm")
		}
		return handlers.Remove(*cmd.Remove)
	case TypeDue:
		if handlers.Due == nil {
			return Result{}, missingHandler("due")
		}
		return handlers.Due(*cmd.Due)
	case TypeSort:
		if handlers.Sort == nil {
			return Result{}, missingHandler("sort")
		}
		return handlers.Sort(*cmd.Sort)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missingHandler("filter")
		}
		return handlers.Filter(*cmd.Filter)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missingHandler("show")
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missingHandler(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}
