package model

type Notification struct {
	App     string `json:"app"`
	Message string `json:"message"`
}
