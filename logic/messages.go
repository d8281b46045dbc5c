package logic

// 回复给聊天用户的固定文案
const (
	MsgUsersAllowed = "Users allowed to execute jobs: "
	MsgNoUsers      = "No users are currently allowed to execute jobs. Ask an admin to add you to the " + RunnersGroup + " group"

	MsgProjectsNone   = "No projects found"
	MsgJobsNone       = "No jobs found"
	MsgExecutionsNone = "No executions found"

	MsgRunUnauthorized   = "You aren't authorized to run jobs"
	MsgRunSuccess        = "Execution %s is running"
	MsgRunAverage        = " (average duration %.1fs)"
	MsgRunConflict       = "Job is already running and only allows one execution at a time"
	MsgTokenUnauthorized = "API token is unauthorized or lacks runAs permission; check the apitoken.aclpolicy"
	MsgStillRunning      = "Execution %s is still running (%ds elapsed, average %ds)"

	MsgJobNotFound       = "Can't find an alias or project and job"
	MsgExecutionNotFound = "Execution not found"
	MsgOutputUnavailable = "Unable to fetch output for execution %s"
	MsgServerUnavailable = "Rundeck server did not answer"

	MsgAliasNone        = "No aliases have been registered yet"
	MsgAliasList        = "Alias = [Project] - Job"
	MsgAliasRegistered  = "Alias registered"
	MsgAliasExists      = "Alias already exists"
	MsgAliasFormat      = "Format is bad, see help for more info"
	MsgAliasForgotten   = "Alias removed"
	MsgAliasNotExists   = "Alias not found"
	MsgAliasUnavailable = "Alias storage is unavailable, try again later"

	MsgUnknownCommand = "Unknown command, see help for more info"
)
