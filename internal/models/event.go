package models

// DetailTypeTaskStateChange is the EventBridge detail-type of ECS task
// state changes.
const DetailTypeTaskStateChange = "ECS Task State Change"

const (
	StatusRunning = "RUNNING"
	StatusStopped = "STOPPED"
)

type TaskStateChangeEvent struct {
	DetailType string          `json:"detail-type"`
	Source     string          `json:"source,omitempty"`
	Detail     TaskStateDetail `json:"detail"`
}

type TaskStateDetail struct {
	LastStatus    string `json:"lastStatus"`
	DesiredStatus string `json:"desiredStatus"`
	Group         string `json:"group"`
	TaskArn       string `json:"taskArn"`
	ClusterArn    string `json:"clusterArn"`
	StoppedReason string `json:"stoppedReason"`
	StopCode      string `json:"stopCode"`
}

type NotifyResult struct {
	OK      bool `json:"ok,omitempty"`
	Ignored bool `json:"ignored,omitempty"`
}
