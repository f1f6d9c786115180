package notify

import (
	"strings"

	"discord-ecs-control/internal/models"
)

const unknown = "UNKNOWN"

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

// BuildMessage renders a task state change for the channel. Missing fields
// are shown as UNKNOWN rather than dropped.
func BuildMessage(label string, event models.TaskStateChangeEvent) string {
	d := event.Detail
	status := orUnknown(d.LastStatus)
	group := orUnknown(d.Group)
	task := orUnknown(d.TaskArn)

	var lines []string
	switch status {
	case models.StatusRunning:
		lines = []string{
			"✅ " + label + " task is RUNNING",
			"- group: " + group,
			"- task: " + task,
			"- cluster: " + orUnknown(d.ClusterArn),
		}
	case models.StatusStopped:
		lines = []string{
			"🛑 " + label + " task is STOPPED",
			"- group: " + group,
			"- task: " + task,
			"- desired: " + orUnknown(d.DesiredStatus),
			"- stopCode: " + orUnknown(d.StopCode),
			"- reason: " + orUnknown(d.StoppedReason),
		}
	default:
		lines = []string{
			"ℹ️ ECS task state changed",
			"- lastStatus: " + status,
			"- desiredStatus: " + orUnknown(d.DesiredStatus),
			"- group: " + group,
			"- task: " + task,
		}
	}
	return strings.Join(lines, "\n")
}
