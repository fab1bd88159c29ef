package tasks

import "github.com/adanyl0v/go-task-tracker/internal/models"

type Action string

const (
	ActionRead      Action = "read"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionSetStatus Action = "set_status"
	ActionDelete    Action = "delete"
)

// Decision is the outcome of Evaluate. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Evaluate decides whether identity may perform action on task.
//
// Editable fields and deletion belong to the assigner, the status belongs
// to the assignee. Reading and creating only require an authenticated
// caller, so task may be nil for those actions.
func Evaluate(identity models.Identity, action Action, task *models.Task) Decision {
	if identity.ID <= 0 {
		return deny("caller is not authenticated")
	}

	switch action {
	case ActionRead, ActionCreate:
		return allow()
	case ActionUpdate, ActionDelete, ActionSetStatus:
		if task == nil {
			return deny("task is unknown")
		}
	default:
		return deny("unknown action " + string(action))
	}

	switch action {
	case ActionUpdate:
		if task.AssignerID == identity.ID {
			return allow()
		}
		return deny("only the assigner can edit this task")
	case ActionDelete:
		if task.AssignerID == identity.ID {
			return allow()
		}
		return deny("only the assigner can delete this task")
	default:
		if task.AssigneeID == identity.ID {
			return allow()
		}
		return deny("only the assignee can change the status of this task")
	}
}
