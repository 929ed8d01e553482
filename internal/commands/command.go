package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeUndone Type = "undone"
	TypeRemove Type = "rm"
	TypeDue    Type = "due"
	TypeSort   Type = "sort"
	TypeFilter Type = "filter"
	TypeShow   Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

type TaskRefArgs struct {
	ID int64
}

type DueArgs struct {
	ID   int64
	When string
}

type SortArgs struct {
	Key       string
	Ascending bool
}

type FilterArgs struct {
	Value string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *TaskRefArgs
	Undone *TaskRefArgs
	Remove *TaskRefArgs
	Due    *DueArgs
	Sort   *SortArgs
	Filter *FilterArgs
	Show   *TaskRefArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		if len(args) == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add needs a title"}
		}
		return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: strings.Join(args, " ")}}, nil
	case TypeDone:
		ref, err := parseTaskRef("done", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeDone, Raw: raw, Done: ref}, nil
	case TypeUndone:
		ref, err := parseTaskRef("undone", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeUndone, Raw: raw, Undone: ref}, nil
	case TypeRemove:
		ref, err := parseTaskRef("rm", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeRemove, Raw: raw, Remove: ref}, nil
	case TypeDue:
		if len(args) < 2 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "due needs a task id and a time"}
		}
		id, err := parseID("due", args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeDue, Raw: raw, Due: &DueArgs{ID: id, When: strings.Join(args[1:], " ")}}, nil
	case TypeSort:
		if len(args) == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort needs a key (title, created, completed)"}
		}
		ascending := true
		if len(args) > 1 {
			switch strings.ToLower(args[1]) {
			case "asc":
				ascending = true
			case "desc":
				ascending = false
			default:
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown sort direction: %s", args[1])}
			}
		}
		return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Key: strings.ToLower(args[0]), Ascending: ascending}}, nil
	case TypeFilter:
		if len(args) == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter needs a value (all, done, pending)"}
		}
		return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Value: strings.ToLower(args[0])}}, nil
	case TypeShow:
		ref, err := parseTaskRef("show", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeShow, Raw: raw, Show: ref}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command: %s", head)}
	}
}

func parseTaskRef(verb string, args []string) (*TaskRefArgs, error) {
	if len(args) == 0 {
		return nil, &CommandError{Code: ErrCodeInvalidArgument, Message: verb + " needs a task id"}
	}
	id, err := parseID(verb, args[0])
	if err != nil {
		return nil, err
	}
	return &TaskRefArgs{ID: id}, nil
}

func parseID(verb, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: %q is not a task id", verb, raw)}
	}
	return id, nil
}
