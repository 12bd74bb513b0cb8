package domain

const (
	CommandStart       = "start"
	CommandHelp        = "help"
	CommandSetTrigger  = "settrigger"
	CommandDelTrigger  = "deltrigger"
	CommandListTrigger = "triggers"
	CommandPending     = "pending"
	CommandCancel      = "cancel"
)

const (
	SetTriggerUsage = "/settrigger #trigger | immediate response | delayed response | delay in seconds"
	SetTriggerRules = "Exactly 4 fields separated by |. Responses must not contain |."
)
